package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinpriest/austcyberevents/pkg/confidence"
	"github.com/colinpriest/austcyberevents/pkg/content"
	"github.com/colinpriest/austcyberevents/pkg/extraction"
	"github.com/colinpriest/austcyberevents/pkg/factcheck"
	"github.com/colinpriest/austcyberevents/pkg/model"
	"github.com/colinpriest/austcyberevents/pkg/validation"
)

type captureInserter struct {
	captured *model.EnrichmentAuditTrail
}

func (c *captureInserter) Insert(ctx context.Context, a *model.EnrichmentAuditTrail) (string, error) {
	a.AuditID = "audit-1"
	c.captured = a
	return a.AuditID, nil
}

func TestRecordBuildsBlobsForACompleteRun(t *testing.T) {
	ins := &captureInserter{}
	s := NewStore(ins)

	start := time.Now().UTC().Add(-time.Second)
	end := time.Now().UTC()

	run := Run{
		RawID:      "raw-1",
		EnrichedID: "enriched-1",
		Content: &content.Result{
			ExtractionMethod:  "news_article_parser",
			ContentLength:     1200,
			ExtractionSuccess: true,
		},
		Extraction: &extraction.Result{
			Victim:            extraction.Victim{OrganizationName: "iiNet"},
			OverallConfidence: 0.9,
		},
		FactCheck: &factcheck.Result{
			ChecksPerformed:               2,
			ChecksPassed:                  2,
			OverallVerificationConfidence: 0.95,
		},
		Validation: &validation.Result{
			IsValid:              true,
			ValidationConfidence: 1.0,
		},
		Decision: &confidence.Decision{
			BaseScore:       0.9,
			FinalConfidence: 0.9,
			Decision:        model.DecisionAutoAccept,
		},
		StartedAt:   start,
		CompletedAt: end,
	}

	id, err := s.Record(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "audit-1", id)

	require.NotNil(t, ins.captured)
	assert.Equal(t, "raw-1", ins.captured.RawID)
	assert.Equal(t, "enriched-1", ins.captured.EnrichedID)
	assert.Equal(t, model.DecisionAutoAccept, ins.captured.FinalDecision)
	assert.InDelta(t, 0.9, ins.captured.FinalConfidence, 1e-9)

	var extractionBlob map[string]any
	require.NoError(t, json.Unmarshal([]byte(ins.captured.ExtractionBlob), &extractionBlob))
	victim := extractionBlob["victim"].(map[string]any)
	assert.Equal(t, "iiNet", victim["OrganizationName"])

	var confidenceBlob map[string]any
	require.NoError(t, json.Unmarshal([]byte(ins.captured.ConfidenceBlob), &confidenceBlob))
	contentAcquisition := confidenceBlob["content_acquisition"].(map[string]any)
	assert.Equal(t, "news_article_parser", contentAcquisition["extraction_method"])
	assert.Equal(t, float64(1200), contentAcquisition["content_length"])
}

func TestRecordHandlesMissingStagesOnShortCircuitedRun(t *testing.T) {
	ins := &captureInserter{}
	s := NewStore(ins)

	run := Run{
		RawID: "raw-2",
		Content: &content.Result{
			ExtractionSuccess: false,
			LastError:         errors.New("no extractor reached 100 words"),
		},
		StageName:   "content_acquisition",
		StageError:  "no extractor reached 100 words",
		StartedAt:   time.Now().UTC(),
		CompletedAt: time.Now().UTC(),
	}

	id, err := s.Record(context.Background(), run)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.NotNil(t, ins.captured)
	assert.Equal(t, model.DecisionReject, ins.captured.FinalDecision)
	assert.Equal(t, 0.0, ins.captured.FinalConfidence)
	assert.Empty(t, ins.captured.EnrichedID)

	var confidenceBlob map[string]any
	require.NoError(t, json.Unmarshal([]byte(ins.captured.ConfidenceBlob), &confidenceBlob))
	assert.Equal(t, "content_acquisition", confidenceBlob["failed_stage"])
}
