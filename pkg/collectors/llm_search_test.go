package collectors

import (
	"context"
	"testing"
)

type stubReasoning struct {
	response string
	err      error
}

func (s *stubReasoning) Complete(ctx context.Context, systemPrompt, userPrompt, jsonSchema string) (string, error) {
	return s.response, s.err
}

func TestLLMSearchCollectorValidateConfigRequiresReasoning(t *testing.T) {
	c := NewLLMSearchCollector(nil, testDecorator(), testLimiter())
	if c.ValidateConfig() {
		t.Fatal("expected ValidateConfig to fail with nil reasoning client")
	}
}

func TestLLMSearchCollectorParsesIncidentsAndAppliesGate(t *testing.T) {
	reasoning := &stubReasoning{response: `{
		"incidents": [
			{"title": "Retailer hit by ransomware attack", "description": "Systems were encrypted in a ransomware incident.", "url": "https://example.com/a", "event_date": "2026-07-01"},
			{"title": "Council fun run postponed", "description": "Weather forced a delay."}
		]
	}`}
	c := NewLLMSearchCollector(reasoning, testDecorator(), testLimiter())

	hits, err := c.Collect(context.Background(), dateRange(30, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit to survive the discovery gate, got %d", len(hits))
	}
	if hits[0].EventDate == nil {
		t.Fatal("expected event date to be parsed")
	}
}

func TestLLMSearchCollectorReturnsNoErrorOnUnparsableJSON(t *testing.T) {
	reasoning := &stubReasoning{response: "not json"}
	c := NewLLMSearchCollector(reasoning, testDecorator(), testLimiter())

	hits, err := c.Collect(context.Background(), dateRange(30, 0))
	if err != nil {
		t.Fatalf("expected no error for unparsable response, got %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestLLMSearchCollectorPropagatesCompletionError(t *testing.T) {
	reasoning := &stubReasoning{err: nonRetryableErr}
	c := NewLLMSearchCollector(reasoning, testDecorator(), testLimiter())

	_, err := c.Collect(context.Background(), dateRange(30, 0))
	if err == nil {
		t.Fatal("expected error to propagate")
	}
}
