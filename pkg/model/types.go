// Package model defines the canonical entities shared across the
// discovery, enrichment, and deduplication stages of the pipeline:
// RawEvent, EnrichedEvent, DeduplicatedEvent, Entity, and the mapping
// tables that relate them.
package model

import "time"

// RawEvent is an immutable discovery record produced by a collector.
// (source_type, source_url, title) is unique; collectors must check
// before insert. A RawEvent is mutated only to record processing
// status, never deleted.
type RawEvent struct {
	RawID                  string
	SourceType             SourceType
	SourceEventID          string
	Title                  string
	Description            string
	Content                string // full text, optional until Content Acquisition runs
	EventDate              *time.Time
	SourceURL              string
	SourceMetadata         map[string]any
	DiscoveredAt           time.Time
	IsProcessed            bool
	ProcessingAttemptedAt  *time.Time
	ProcessingError        string
}

// Key returns the (source_type, source_url, title) uniqueness key used
// by collectors to suppress duplicate inserts.
func (e *RawEvent) Key() string {
	return string(e.SourceType) + "\x00" + e.SourceURL + "\x00" + e.Title
}

// EnrichedEvent is a structured incident derived from exactly one
// RawEvent. It exists only if the owning RawEvent passed all pipeline
// stages with a final decision other than REJECT, or was created under
// a manual override.
type EnrichedEvent struct {
	EnrichedID                string
	RawID                     string
	Title                     string
	Description               string
	Summary                   string
	EventType                 string
	Severity                  Severity
	EventDate                 *time.Time
	RecordsAffected           *int64
	IsAustralianEvent         bool
	IsSpecificEvent           bool
	ConfidenceScore           float64
	AustralianRelevanceScore  float64
	PerplexityValidated       bool
	PerplexityEnrichmentData  map[string]any
	AttackingEntityName       string
	AttackMethod              string
	VictimOrganizationName    string
	VictimOrganizationIndustry string
	Status                    EventStatus
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// DeduplicatedEvent is the canonical record for one real-world incident,
// formed by merging one or more EnrichedEvents that IsSimilar judged
// to describe the same occurrence.
type DeduplicatedEvent struct {
	DedupID                     string
	MasterEnrichedID            string
	Title                       string
	Description                 string
	Summary                     string
	EventType                   string
	Severity                    Severity
	EventDate                   *time.Time
	RecordsAffected             *int64
	VictimOrganizationName      string
	VictimOrganizationIndustry  string
	AttackingEntityName         string
	AttackMethod                string
	IsAustralianEvent           bool
	IsSpecificEvent             bool
	ConfidenceScore             float64
	AustralianRelevanceScore    float64
	TotalDataSources            int
	ContributingRawEvents       int
	ContributingEnrichedEvents  int
	SimilarityScore             float64
	DeduplicationMethod         string
	Status                      EventStatus
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

// Entity is a named organization, person, or threat actor referenced by
// one or more incidents.
type Entity struct {
	EntityID              string
	EntityName            string
	EntityType            EntityType
	Industry              string
	Turnover              string
	EmployeeCount         *int64
	IsAustralian          bool
	HeadquartersLocation  string
	WebsiteURL            string
	ConfidenceScore       float64
}

// EventDeduplicationMap traces one RawEvent/EnrichedEvent pair into the
// DeduplicatedEvent it contributed to.
type EventDeduplicationMap struct {
	RawID             string
	EnrichedID        string
	DedupID           string
	ContributionType  ContributionType
	SimilarityToMaster float64
	Weight            float64
}

// DeduplicatedEventSources is the consolidated, URL-deduplicated list of
// sources backing a DeduplicatedEvent.
type DeduplicatedEventSources struct {
	DedupID         string
	SourceURL       string
	SourceType      SourceType
	CredibilityScore float64
	ContentSnippet  string
	DiscoveredAt    time.Time
}

// EnrichedEventEntities relates an EnrichedEvent to the entities it
// mentions, with a relationship type and extraction confidence.
type EnrichedEventEntities struct {
	EnrichedID       string
	EntityID         string
	RelationshipType RelationshipType
	Confidence       float64
}

// ProcessingLog records one stage's outcome for one RawEvent, used for
// operational visibility and retry bookkeeping.
type ProcessingLog struct {
	LogID      string
	RawID      string
	Stage      ProcessingStage
	Status     string
	ResultBlob string // compact JSON
	Error      string
	DurationMS int64
	CreatedAt  time.Time
}

// MonthProcessed is the idempotency ledger for month-by-month backfills.
type MonthProcessed struct {
	Year        int
	Month       int
	IsProcessed bool
	Stats       map[string]any
}

// EnrichmentAuditTrail is the single per-run record of what every stage
// of the enrichment pipeline did to one RawEvent. Exactly one row is
// written per pipeline run, regardless of the final decision.
type EnrichmentAuditTrail struct {
	AuditID          string
	RawID            string
	EnrichedID       string // empty if the run ended in REJECT
	ExtractionBlob   string // compact JSON: raw LLM extraction output
	FactCheckBlob    string // compact JSON: per-dimension fact-check scores
	ValidationBlob   string // compact JSON: validator findings and overrides
	ConfidenceBlob   string // compact JSON: weighted score + penalties applied
	FinalDecision    Decision
	FinalConfidence  float64
	StartedAt        time.Time
	CompletedAt      time.Time
}
