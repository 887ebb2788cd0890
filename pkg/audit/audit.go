// Package audit implements Stage "C10" of the enrichment pipeline:
// building and persisting the single EnrichmentAuditTrail row every
// pipeline run writes, regardless of its final decision.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/confidence"
	"github.com/colinpriest/austcyberevents/pkg/content"
	"github.com/colinpriest/austcyberevents/pkg/extraction"
	"github.com/colinpriest/austcyberevents/pkg/factcheck"
	"github.com/colinpriest/austcyberevents/pkg/model"
	"github.com/colinpriest/austcyberevents/pkg/validation"
)

// Inserter is the narrow store dependency this package needs.
type Inserter interface {
	Insert(ctx context.Context, a *model.EnrichmentAuditTrail) (string, error)
}

// Store builds and persists EnrichmentAuditTrail rows.
type Store struct {
	store Inserter
}

// NewStore returns a Store backed by store.
func NewStore(store Inserter) *Store {
	return &Store{store: store}
}

// Run bundles everything one pipeline run produced, whichever stages
// it reached. A run that short-circuited early (e.g. content
// acquisition failed) leaves the later fields nil/zero-valued.
type Run struct {
	RawID      string
	EnrichedID string // empty unless the run ended Active

	Content    *content.Result
	Extraction *extraction.Result
	FactCheck  *factcheck.Result
	Validation *validation.Result
	Decision   *confidence.Decision

	// StageError, if non-empty, names the stage that threw along with
	// its error message, recorded verbatim per spec §4.4.5.
	StageName  string
	StageError string

	StartedAt   time.Time
	CompletedAt time.Time
}

// stage1Blob is the Stage 1 (Content Acquisition) audit payload.
type stage1Blob struct {
	ExtractionMethod string `json:"extraction_method,omitempty"`
	ContentLength    int    `json:"content_length,omitempty"`
	Success          bool   `json:"extraction_success"`
	LastError        string `json:"last_error,omitempty"`
}

// stage2Blob is the Stage 2 (Primary Extraction) audit payload: the
// extracted victim, confidence, specificity, Australian relevance,
// token count, and the full sub-objects, per spec §4.4.5.
type stage2Blob struct {
	Sentinel            bool                         `json:"sentinel"`
	Victim              extraction.Victim             `json:"victim"`
	Attacker            extraction.Attacker           `json:"attacker"`
	Incident            extraction.Incident           `json:"incident"`
	AustralianRelevance extraction.AustralianRelevance `json:"australian_relevance"`
	Specificity         extraction.Specificity        `json:"specificity"`
	MultiVictim         extraction.MultiVictim        `json:"multi_victim"`
	OverallConfidence   float64                       `json:"overall_confidence"`
	InputTokens         int                           `json:"input_tokens,omitempty"`
	OutputTokens        int                           `json:"output_tokens,omitempty"`
	Error               string                        `json:"error,omitempty"`
}

// stage3Blob is the Stage 3 (Fact-Checking) audit payload.
type stage3Blob struct {
	ChecksPerformed               int               `json:"checks_performed"`
	ChecksPassed                  int               `json:"checks_passed"`
	ChecksFailed                  int               `json:"checks_failed"`
	Checks                        []factcheck.Check `json:"checks"`
	OverallVerificationConfidence float64           `json:"overall_verification_confidence"`
}

// stage4Blob is the Stage 4 (Validation) audit payload.
type stage4Blob struct {
	Errors               []string              `json:"errors,omitempty"`
	Warnings             []string              `json:"warnings,omitempty"`
	Overrides            []validation.Override `json:"overrides,omitempty"`
	IsValid              bool                  `json:"is_valid"`
	ValidationConfidence float64               `json:"validation_confidence"`
}

// stage5Blob is the Stage 5 (Confidence Aggregation) audit payload.
type stage5Blob struct {
	BaseScore       float64                         `json:"base_score"`
	FinalConfidence float64                         `json:"final_confidence"`
	Penalties       []confidence.PenaltyApplication `json:"penalties,omitempty"`
	Decision        model.Decision                  `json:"decision"`
	StageError      string                          `json:"stage_error,omitempty"`
	FailedStage     string                          `json:"failed_stage,omitempty"`
}

// Record builds the per-stage blobs from run and persists one
// EnrichmentAuditTrail row. Invariant I3: callers must invoke this
// exactly once per pipeline run.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	a := &model.EnrichmentAuditTrail{
		RawID:           run.RawID,
		EnrichedID:      run.EnrichedID,
		ExtractionBlob:  marshalOrEmpty(stage2BlobFor(run.Extraction)),
		FactCheckBlob:   marshalOrEmpty(stage3BlobFor(run.FactCheck)),
		ValidationBlob:  marshalOrEmpty(stage4BlobFor(run.Validation)),
		ConfidenceBlob:  marshalOrEmpty(stage5BlobFor(run)),
		FinalConfidence: finalConfidence(run.Decision),
		FinalDecision:   finalDecision(run.Decision),
		StartedAt:       run.StartedAt,
		CompletedAt:     run.CompletedAt,
	}

	// Stage 1 rides inside the extraction blob's sibling rather than a
	// separate column — spec §4.4.5 groups "extraction method and
	// content length" under the audit row without a dedicated column,
	// so fold it into the confidence blob alongside the stage-error
	// fields, keeping the schema's four-blob shape intact.
	if run.Content != nil {
		lastErr := ""
		if run.Content.LastError != nil {
			lastErr = run.Content.LastError.Error()
		}
		s1, _ := json.Marshal(stage1Blob{
			ExtractionMethod: run.Content.ExtractionMethod,
			ContentLength:    run.Content.ContentLength,
			Success:          run.Content.ExtractionSuccess,
			LastError:        lastErr,
		})
		a.ConfidenceBlob = mergeStage1Into(a.ConfidenceBlob, string(s1))
	}

	return s.store.Insert(ctx, a)
}

func stage2BlobFor(r *extraction.Result) *stage2Blob {
	if r == nil {
		return nil
	}
	return &stage2Blob{
		Sentinel:            r.Sentinel,
		Victim:              r.Victim,
		Attacker:            r.Attacker,
		Incident:            r.Incident,
		AustralianRelevance: r.AustralianRelevance,
		Specificity:         r.Specificity,
		MultiVictim:         r.MultiVictim,
		OverallConfidence:   r.OverallConfidence,
		InputTokens:         r.InputTokens,
		OutputTokens:        r.OutputTokens,
		Error:               r.Error,
	}
}

func stage3BlobFor(r *factcheck.Result) *stage3Blob {
	if r == nil {
		return nil
	}
	return &stage3Blob{
		ChecksPerformed:               r.ChecksPerformed,
		ChecksPassed:                  r.ChecksPassed,
		ChecksFailed:                  r.ChecksFailed,
		Checks:                        r.Checks,
		OverallVerificationConfidence: r.OverallVerificationConfidence,
	}
}

func stage4BlobFor(r *validation.Result) *stage4Blob {
	if r == nil {
		return nil
	}
	return &stage4Blob{
		Errors:               r.Errors,
		Warnings:             r.Warnings,
		Overrides:            r.Overrides,
		IsValid:              r.IsValid,
		ValidationConfidence: r.ValidationConfidence,
	}
}

func stage5BlobFor(run Run) *stage5Blob {
	b := &stage5Blob{StageError: run.StageError, FailedStage: run.StageName}
	if run.Decision != nil {
		b.BaseScore = run.Decision.BaseScore
		b.FinalConfidence = run.Decision.FinalConfidence
		b.Penalties = run.Decision.Penalties
		b.Decision = run.Decision.Decision
	}
	return b
}

func finalConfidence(d *confidence.Decision) float64 {
	if d == nil {
		return 0
	}
	return d.FinalConfidence
}

func finalDecision(d *confidence.Decision) model.Decision {
	if d == nil {
		return model.DecisionReject
	}
	return d.Decision
}

func marshalOrEmpty(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// mergeStage1Into folds the Stage 1 blob's fields into an
// already-marshalled confidence blob, so content-acquisition
// visibility survives without adding a sixth database column.
func mergeStage1Into(confidenceBlobJSON, stage1JSON string) string {
	if confidenceBlobJSON == "" {
		return stage1JSON
	}
	var merged map[string]any
	if err := json.Unmarshal([]byte(confidenceBlobJSON), &merged); err != nil {
		return confidenceBlobJSON
	}
	var s1 map[string]any
	if err := json.Unmarshal([]byte(stage1JSON), &s1); err != nil {
		return confidenceBlobJSON
	}
	merged["content_acquisition"] = s1
	out, err := json.Marshal(merged)
	if err != nil {
		return confidenceBlobJSON
	}
	return string(out)
}
