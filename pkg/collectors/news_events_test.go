package collectors

import (
	"context"
	"testing"

	"github.com/colinpriest/austcyberevents/pkg/capability"
)

type stubNewsEventsQuery struct {
	hits []capability.RawHit
	err  error
}

func (s *stubNewsEventsQuery) Query(ctx context.Context, dateRange capability.DateRange, keywords, exclusions []string, countryFilter string) ([]capability.RawHit, error) {
	return s.hits, s.err
}

func TestNewsEventsCollectorValidateConfigRequiresQuery(t *testing.T) {
	c := NewNewsEventsCollector(nil, testDecorator(), testLimiter())
	if c.ValidateConfig() {
		t.Fatal("expected ValidateConfig to fail with nil query")
	}
}

func TestNewsEventsCollectorFiltersByDiscoveryGate(t *testing.T) {
	query := &stubNewsEventsQuery{hits: []capability.RawHit{
		{SourceEventID: "1", Title: "Company X suffers ransomware attack", Description: "Operations halted after ransomware incident.", EventCode: "1833"},
		{SourceEventID: "2", Title: "Local fair opens this weekend", Description: "Families enjoyed the rides."},
	}}
	c := NewNewsEventsCollector(query, testDecorator(), testLimiter())

	hits, err := c.Collect(context.Background(), dateRange(30, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit to survive the discovery gate, got %d", len(hits))
	}
	if hits[0].Metadata["incident_type"] != "Ransomware" {
		t.Fatalf("expected incident_type Ransomware, got %v", hits[0].Metadata["incident_type"])
	}
}

func TestNewsEventsCollectorDropsHitsBelowCorroborationFloor(t *testing.T) {
	query := &stubNewsEventsQuery{hits: []capability.RawHit{
		{
			SourceEventID: "1", Title: "Data breach hits retailer", Description: "Customer records exposed in breach.",
			Metadata: map[string]any{"source_count": 0},
		},
	}}
	c := NewNewsEventsCollector(query, testDecorator(), testLimiter())

	hits, err := c.Collect(context.Background(), dateRange(30, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected 0 hits below the corroboration floor, got %d", len(hits))
	}
}

func TestNewsEventsCollectorPropagatesQueryError(t *testing.T) {
	query := &stubNewsEventsQuery{err: nonRetryableErr}
	c := NewNewsEventsCollector(query, testDecorator(), testLimiter())

	_, err := c.Collect(context.Background(), dateRange(30, 0))
	if err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestNewsEventsCollectorSourceInfo(t *testing.T) {
	c := NewNewsEventsCollector(&stubNewsEventsQuery{}, testDecorator(), testLimiter())
	info := c.SourceInfo()
	if info.SourceType != "NewsEvents" || info.RateLimitKey != "news-events" {
		t.Fatalf("unexpected source info: %+v", info)
	}
}
