package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinpriest/austcyberevents/pkg/audit"
	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/confidence"
	"github.com/colinpriest/austcyberevents/pkg/content"
	"github.com/colinpriest/austcyberevents/pkg/extraction"
	"github.com/colinpriest/austcyberevents/pkg/factcheck"
	"github.com/colinpriest/austcyberevents/pkg/model"
)

// --- stub capability implementations (Stage 1) ---

type stubArticleParser struct {
	text string
	err  error
}

func (s stubArticleParser) Parse(ctx context.Context, url string) (*capability.ArticleParse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &capability.ArticleParse{Text: s.text}, nil
}

type stubExtractor struct{ err error }

func (s stubExtractor) Extract(html string) (string, error) { return "", s.err }

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (*capability.HTTPResponse, error) {
	return &capability.HTTPResponse{Status: 200, Body: []byte("<html></html>")}, nil
}

type stubPDF struct{}

func (stubPDF) Extract(data []byte) (string, error) { return "", errors.New("not a pdf") }

type stubBrowser struct{}

func (stubBrowser) Render(ctx context.Context, url string, timeout time.Duration) (string, error) {
	return "", errors.New("no js runtime")
}

// --- stub capability implementations (Stage 2/3) ---

type stubLLM struct {
	response string
	err      error
}

func (s stubLLM) Complete(ctx context.Context, systemPrompt, userPrompt, jsonSchema string) (string, error) {
	return s.response, s.err
}

type stubSearchLLM struct{ response string }

func (s stubSearchLLM) Answer(ctx context.Context, prompt string) (string, error) {
	return s.response, nil
}

// --- stub stores ---

type stubRawEventStore struct {
	processed     bool
	processingErr string
}

func (s *stubRawEventStore) MarkProcessed(ctx context.Context, rawID string, processed bool, processingErr string) error {
	s.processed = processed
	s.processingErr = processingErr
	return nil
}

type stubEnrichedEventStore struct {
	inserted *model.EnrichedEvent
}

func (s *stubEnrichedEventStore) Insert(ctx context.Context, e *model.EnrichedEvent) (string, error) {
	e.EnrichedID = "enriched-1"
	s.inserted = e
	return e.EnrichedID, nil
}

type stubProcessingLog struct{ entries []*model.ProcessingLog }

func (s *stubProcessingLog) Append(ctx context.Context, log *model.ProcessingLog) error {
	s.entries = append(s.entries, log)
	return nil
}

type stubAuditInserter struct{ captured *model.EnrichmentAuditTrail }

func (s *stubAuditInserter) Insert(ctx context.Context, a *model.EnrichmentAuditTrail) (string, error) {
	a.AuditID = "audit-1"
	s.captured = a
	return a.AuditID, nil
}

type noDuplicates struct{}

func (noDuplicates) ActiveEventExists(ctx context.Context, victim string, eventDate *time.Time) (bool, error) {
	return false, nil
}

func wordsText(n int, seed string) string {
	words := make([]string, n)
	for i := range words {
		words[i] = seed
	}
	return strings.Join(words, " ")
}

func buildPipeline(articleText string, articleErr error, llmResponse string, llmErr error, searchResponse string) (*Pipeline, *stubRawEventStore, *stubEnrichedEventStore, *stubAuditInserter) {
	acquirer := content.NewAcquirer(
		stubFetcher{},
		stubArticleParser{text: articleText, err: articleErr},
		stubExtractor{err: errors.New("no main content")},
		stubExtractor{err: errors.New("no dom match")},
		stubPDF{},
		stubBrowser{},
		5*time.Second,
	)
	extractor := extraction.NewExtractor(stubLLM{response: llmResponse, err: llmErr}, "test-model")
	fc := factcheck.NewFactChecker(stubSearchLLM{response: searchResponse}, nil)
	aggregator := confidence.NewAggregator()

	rawStore := &stubRawEventStore{}
	enrichedStore := &stubEnrichedEventStore{}
	logStore := &stubProcessingLog{}
	auditIns := &stubAuditInserter{}
	auditStore := audit.NewStore(auditIns)

	fixedNow := func() time.Time { return time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC) }

	p := New(acquirer, extractor, fc, aggregator, noDuplicates{}, rawStore, enrichedStore, logStore, auditStore, fixedNow)
	return p, rawStore, enrichedStore, auditIns
}

const wellFormedExtraction = `{
	"victim": {"organization_name": "iiNet", "industry": "Information Technology", "is_australian": true},
	"attacker": {"name": "Unknown", "method": "ransomware"},
	"incident": {"event_type": "data breach", "severity": "High", "event_date": "2025-08-12", "records_affected": 280000, "description": "d", "summary": "s"},
	"australian_relevance": {"score": 0.95, "reasoning": "r"},
	"specificity": {"is_specific_incident": true, "reasoning": "r"},
	"multi_victim": {"is_multi_victim": false, "other_victims": []},
	"overall_confidence": 0.9
}`

func TestPipelineRunAutoAcceptsAStrongArticle(t *testing.T) {
	p, rawStore, enrichedStore, auditIns := buildPipeline(
		wordsText(300, "breach"), nil,
		wellFormedExtraction, nil,
		`{"verified": true, "confidence": 0.95}`,
	)

	raw := &model.RawEvent{RawID: "raw-1", Title: "iiNet Data Breach Exposes 280,000 Customers", SourceURL: "https://example.com/iinet"}
	outcome := p.Run(context.Background(), raw, false)

	require.NoError(t, outcome.Err)
	assert.Equal(t, model.DecisionAutoAccept, outcome.Decision)
	assert.Equal(t, "enriched-1", outcome.EnrichedID)

	require.NotNil(t, enrichedStore.inserted)
	assert.Equal(t, "iiNet", enrichedStore.inserted.VictimOrganizationName)
	assert.Equal(t, model.StatusActive, enrichedStore.inserted.Status)

	assert.True(t, rawStore.processed)
	assert.Empty(t, rawStore.processingErr)

	require.NotNil(t, auditIns.captured)
	assert.Equal(t, "enriched-1", auditIns.captured.EnrichedID)
	assert.Equal(t, model.DecisionAutoAccept, auditIns.captured.FinalDecision)
}

func TestPipelineRunShortCircuitsToRejectOnContentFailure(t *testing.T) {
	p, rawStore, enrichedStore, auditIns := buildPipeline(
		"", errors.New("404 not found"),
		wellFormedExtraction, nil,
		`{"verified": true, "confidence": 0.9}`,
	)

	raw := &model.RawEvent{RawID: "raw-2", Title: "t", SourceURL: "https://example.com/missing"}
	outcome := p.Run(context.Background(), raw, false)

	assert.Equal(t, model.DecisionReject, outcome.Decision)
	assert.Nil(t, enrichedStore.inserted)
	assert.True(t, rawStore.processed)
	assert.NotEmpty(t, rawStore.processingErr)

	require.NotNil(t, auditIns.captured)
	assert.Empty(t, auditIns.captured.EnrichedID)
	assert.Equal(t, model.DecisionReject, auditIns.captured.FinalDecision)
}

func TestPipelineRunRejectsOnLowConfidenceWithoutShortCircuiting(t *testing.T) {
	weakExtraction := `{
		"victim": {"organization_name": "Small Regional Co"},
		"attacker": {"name": "Unknown"},
		"incident": {"severity": "Low"},
		"australian_relevance": {"score": 0.1},
		"specificity": {"is_specific_incident": false},
		"multi_victim": {"is_multi_victim": false},
		"overall_confidence": 0.3
	}`

	p, rawStore, enrichedStore, _ := buildPipeline(
		wordsText(300, "breach"), nil,
		weakExtraction, nil,
		`{"verified": false, "confidence": 0.1}`,
	)

	raw := &model.RawEvent{RawID: "raw-3", Title: "Small Regional Co breach", SourceURL: "https://example.com/small"}
	outcome := p.Run(context.Background(), raw, false)

	assert.Equal(t, model.DecisionReject, outcome.Decision)
	assert.Nil(t, enrichedStore.inserted)
	assert.True(t, rawStore.processed)
}

func TestPipelineRunRejectsNonAustralianEventDespiteHighConfidence(t *testing.T) {
	// Victim.IsAustralian is false even though every other signal is
	// strong enough to otherwise clear the AUTO_ACCEPT threshold - the
	// §3 invariant must reject the insert regardless of confidence.
	notAustralianExtraction := `{
		"victim": {"organization_name": "Acme Corp", "industry": "Retail", "is_australian": false},
		"attacker": {"name": "Unknown", "method": "ransomware"},
		"incident": {"event_type": "data breach", "severity": "High", "event_date": "2025-08-12", "records_affected": 280000, "description": "d", "summary": "s"},
		"australian_relevance": {"score": 0.9, "reasoning": "r"},
		"specificity": {"is_specific_incident": true, "reasoning": "r"},
		"multi_victim": {"is_multi_victim": false, "other_victims": []},
		"overall_confidence": 0.9
	}`

	p, rawStore, enrichedStore, auditIns := buildPipeline(
		wordsText(300, "breach"), nil,
		notAustralianExtraction, nil,
		`{"verified": true, "confidence": 0.95}`,
	)

	raw := &model.RawEvent{RawID: "raw-5", Title: "Acme Corp breach", SourceURL: "https://example.com/acme"}
	outcome := p.Run(context.Background(), raw, false)

	assert.Equal(t, model.DecisionReject, outcome.Decision)
	assert.Nil(t, enrichedStore.inserted)
	assert.True(t, rawStore.processed)
	assert.NotEmpty(t, rawStore.processingErr)

	require.NotNil(t, auditIns.captured)
	assert.Empty(t, auditIns.captured.EnrichedID)
	assert.Equal(t, model.DecisionReject, auditIns.captured.FinalDecision)
}

func TestPipelineRunRejectsNonSpecificEventDespiteHighConfidence(t *testing.T) {
	nonSpecificExtraction := `{
		"victim": {"organization_name": "Acme Corp", "industry": "Retail", "is_australian": true},
		"attacker": {"name": "Unknown", "method": "ransomware"},
		"incident": {"event_type": "data breach", "severity": "High", "event_date": "2025-08-12", "records_affected": 280000, "description": "d", "summary": "s"},
		"australian_relevance": {"score": 0.9, "reasoning": "r"},
		"specificity": {"is_specific_incident": false, "reasoning": "r"},
		"multi_victim": {"is_multi_victim": false, "other_victims": []},
		"overall_confidence": 0.9
	}`

	p, rawStore, enrichedStore, _ := buildPipeline(
		wordsText(300, "breach"), nil,
		nonSpecificExtraction, nil,
		`{"verified": true, "confidence": 0.95}`,
	)

	raw := &model.RawEvent{RawID: "raw-6", Title: "Acme Corp breach", SourceURL: "https://example.com/acme2"}
	outcome := p.Run(context.Background(), raw, false)

	assert.Equal(t, model.DecisionReject, outcome.Decision)
	assert.Nil(t, enrichedStore.inserted)
	assert.True(t, rawStore.processed)
}

func TestPipelineRunContinuesAfterExtractionSentinelToReject(t *testing.T) {
	p, rawStore, enrichedStore, _ := buildPipeline(
		wordsText(300, "breach"), nil,
		"not json", nil,
		`{"verified": false, "confidence": 0}`,
	)

	raw := &model.RawEvent{RawID: "raw-4", Title: "t", SourceURL: "https://example.com/bad-json"}
	outcome := p.Run(context.Background(), raw, false)

	assert.Equal(t, model.DecisionReject, outcome.Decision)
	assert.Nil(t, enrichedStore.inserted)
	assert.True(t, rawStore.processed)
}
