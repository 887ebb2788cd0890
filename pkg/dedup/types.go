// Package dedup implements the Deduplication Engine (C11): grouping
// Active EnrichedEvents that describe the same real-world incident,
// merging each group into a canonical DeduplicatedEvent, and
// persisting the result.
package dedup

import "time"

// Candidate is one Active EnrichedEvent joined with its owning
// RawEvent's provenance fields, the unit the engine groups over.
type Candidate struct {
	EnrichedID string
	RawID      string

	Title              string
	Description        string
	Summary            string
	EventType          string
	Severity           string
	EventDate          *time.Time
	RecordsAffected    *int64
	VictimOrganization string
	VictimIndustry     string
	AttackingEntity    string
	AttackMethod       string
	IsAustralianEvent  bool
	IsSpecificEvent    bool
	ConfidenceScore    float64
	RelevanceScore     float64

	PrimaryEntity string // pre-extracted entity hint, if the pipeline recorded one

	SourceURL      string
	SourceType     string
	DiscoveredAt   time.Time
}

// Group is a set of Candidates judged to describe the same incident.
type Group struct {
	Members []Candidate
}

// Merged is the canonical record formed from a Group, plus the
// per-member contribution records the store needs.
type Merged struct {
	Master   Candidate
	Others   []Candidate

	Title                      string
	Description                string
	VictimOrganizationName     string
	VictimOrganizationIndustry string
	AttackingEntityName        string
	AttackMethod               string
	EventType                  string
	Severity                   string
	EventDate                  *time.Time
	RecordsAffected            *int64
	IsAustralianEvent          bool
	IsSpecificEvent            bool
	ConfidenceScore            float64
	AustralianRelevanceScore   float64
	TotalDataSources           int
	ContributingRawEvents      int
	ContributingEnrichedEvents int
	SimilarityScore            float64

	// SourcesByURL is the union of contributing sources keyed by URL.
	SourcesByURL map[string]Candidate
}
