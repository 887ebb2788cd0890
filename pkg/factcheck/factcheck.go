// Package factcheck implements Stage 3 (Fact-Checking, C7) of the
// enrichment pipeline: up to four targeted verifications against an
// external search-grounded reasoning capability.
package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
)

// Weights for the overall_verification_confidence weighted average
// (spec §4.4 Stage 3): organization 0.4, incident 0.4, attacker 0.1,
// records 0.1.
const (
	weightOrganization = 0.4
	weightIncident     = 0.4
	weightAttacker      = 0.1
	weightRecords       = 0.1
)

// recordTolerance is the +/-20% band within which a corroborated
// record count is considered verified.
const recordTolerance = 0.20

// CheckKind identifies which of the four fact-check questions a Check
// answers.
type CheckKind string

const (
	CheckOrganization CheckKind = "organization_existence"
	CheckIncident     CheckKind = "incident_occurrence"
	CheckAttacker     CheckKind = "attacker_attribution"
	CheckRecords      CheckKind = "record_count_corroboration"
)

// Check is the result of one verification.
type Check struct {
	Kind       CheckKind
	Verified   bool
	Confidence float64
	Details    string
	Sources    []string
}

// Result is the Stage 3 output.
type Result struct {
	ChecksPerformed               int
	ChecksPassed                  int
	ChecksFailed                  int
	Checks                        []Check
	OverallVerificationConfidence float64
}

// Input bundles the Stage 2 fields fact-checking needs.
type Input struct {
	VictimOrganization string
	HasVictim          bool
	EventDate          *time.Time
	HasEventDate        bool
	AttackerName        string // "" or "Unknown" skips the attacker check
	RecordsAffected     *int64
}

// FactChecker runs the four verifications described in spec §4.4
// Stage 3, via an injected search-grounded LLM.
type FactChecker struct {
	llm     capability.SearchGroundedLLM
	retrier func(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewFactChecker returns a FactChecker backed by llm. retry wraps each
// verification call with C2 retry/circuit-breaker semantics; pass a
// pass-through function to disable retries in tests.
func NewFactChecker(llm capability.SearchGroundedLLM, retry func(ctx context.Context, fn func(ctx context.Context) error) error) *FactChecker {
	if retry == nil {
		retry = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &FactChecker{llm: llm, retrier: retry}
}

// wireVerdict mirrors the JSON shape the search-grounded LLM returns.
// ReportedRecordsAffected is only populated for the record-count
// corroboration check: the count the search found reported, which
// runCheck compares against the extracted count itself rather than
// trusting the LLM's own Verified flag for that check kind.
type wireVerdict struct {
	Verified                bool     `json:"verified"`
	Confidence              float64  `json:"confidence"`
	Details                 string   `json:"details"`
	Sources                 []string `json:"sources"`
	ReportedRecordsAffected *int64   `json:"reported_records_affected"`
}

// Verify runs every applicable check for in and computes the weighted
// overall verification confidence.
func (f *FactChecker) Verify(ctx context.Context, in Input) *Result {
	result := &Result{}

	type planned struct {
		kind            CheckKind
		weight          float64
		prompt          string
		apply           bool
		expectedRecords *int64 // only set for CheckRecords
	}

	plans := []planned{
		{
			kind:   CheckOrganization,
			weight: weightOrganization,
			prompt: fmt.Sprintf("Is %q a real, specific organization?", in.VictimOrganization),
			apply:  in.HasVictim,
		},
		{
			kind:   CheckIncident,
			weight: weightIncident,
			prompt: fmt.Sprintf("Did %q suffer a cyber incident on/around %s?", in.VictimOrganization, eventDateStr(in.EventDate)),
			apply:  in.HasVictim && in.HasEventDate,
		},
		{
			kind:   CheckAttacker,
			weight: weightAttacker,
			prompt: fmt.Sprintf("Has threat actor %q been credibly linked to an attack on %q?", in.AttackerName, in.VictimOrganization),
			apply:  in.AttackerName != "" && in.AttackerName != "Unknown",
		},
		{
			kind:            CheckRecords,
			weight:          weightRecords,
			prompt:          fmt.Sprintf("How many records were affected in the %s incident? We extracted approximately %d.", in.VictimOrganization, recordsOrZero(in.RecordsAffected)),
			apply:           in.RecordsAffected != nil,
			expectedRecords: in.RecordsAffected,
		},
	}

	// Weighted average: a passed check contributes confidence*weight;
	// a failed check contributes the spec's 0.5*(1-confidence)*weight
	// penalty term instead. Both are normalised by the total weight of
	// checks actually performed.
	var weightedScore, totalWeight float64
	for _, p := range plans {
		if !p.apply {
			continue
		}
		check := f.runCheck(ctx, p.kind, p.prompt, p.expectedRecords)
		result.Checks = append(result.Checks, check)
		result.ChecksPerformed++
		totalWeight += p.weight

		if check.Verified {
			result.ChecksPassed++
			weightedScore += check.Confidence * p.weight
		} else {
			result.ChecksFailed++
			weightedScore += 0.5 * (1 - check.Confidence) * p.weight
		}
	}

	if totalWeight > 0 {
		result.OverallVerificationConfidence = clamp01(weightedScore / totalWeight)
	}

	return result
}

// runCheck issues one verification prompt and turns the response into
// a Check. expectedRecords is non-nil only for CheckRecords, in which
// case the ±20% tolerance comparison (spec §4.4 Stage 3 item 4) is
// computed here against the LLM's self-reported count rather than
// trusting the LLM's own Verified flag for that check.
func (f *FactChecker) runCheck(ctx context.Context, kind CheckKind, prompt string, expectedRecords *int64) Check {
	var raw string
	err := f.retrier(ctx, func(ctx context.Context) error {
		var callErr error
		raw, callErr = f.llm.Answer(ctx, prompt)
		return callErr
	})
	if err != nil {
		slog.Warn("fact-check call failed, recording unverified", "kind", kind, "error", err)
		return Check{Kind: kind, Verified: false, Confidence: 0, Details: err.Error()}
	}

	var w wireVerdict
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		slog.Warn("fact-check response was not valid JSON, recording unverified", "kind", kind, "error", err)
		return Check{Kind: kind, Verified: false, Confidence: 0, Details: "unparsable response"}
	}

	verified := w.Verified
	details := w.Details
	if kind == CheckRecords && expectedRecords != nil {
		if w.ReportedRecordsAffected == nil {
			verified = false
			details = "no record count reported to corroborate against"
		} else {
			verified = WithinTolerance(*expectedRecords, *w.ReportedRecordsAffected)
			details = fmt.Sprintf("expected %d, reported %d: %s", *expectedRecords, *w.ReportedRecordsAffected, details)
		}
	}

	return Check{Kind: kind, Verified: verified, Confidence: clamp01(w.Confidence), Details: details, Sources: w.Sources}
}

func eventDateStr(t *time.Time) string {
	if t == nil {
		return "an unspecified date"
	}
	return t.Format("2006-01-02")
}

func recordsOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// WithinTolerance reports whether reported is within recordTolerance
// of expected. runCheck uses it to decide the record-count
// corroboration check from the count the search-grounded LLM reports.
func WithinTolerance(expected, reported int64) bool {
	if expected == 0 {
		return false
	}
	diff := math.Abs(float64(reported-expected)) / float64(expected)
	return diff <= recordTolerance
}
