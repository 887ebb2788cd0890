package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinpriest/austcyberevents/pkg/collectors"
	"github.com/colinpriest/austcyberevents/pkg/model"
)

type stubCollector struct {
	configured bool
	hits       []collectors.Hit
	err        error
	sourceType string
}

func (s stubCollector) ValidateConfig() bool { return s.configured }
func (s stubCollector) Collect(ctx context.Context, dr collectors.DateRange) ([]collectors.Hit, error) {
	return s.hits, s.err
}
func (s stubCollector) SourceInfo() collectors.Descriptor {
	return collectors.Descriptor{SourceType: s.sourceType}
}

type stubRawEventInserter struct {
	mu       sync.Mutex
	inserted []*model.RawEvent
}

func (s *stubRawEventInserter) Insert(ctx context.Context, e *model.RawEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted = append(s.inserted, e)
	return "raw-1", nil
}

func TestDiscoverSkipsUnconfiguredCollectors(t *testing.T) {
	store := &stubRawEventInserter{}
	sources := []collectors.Collector{stubCollector{configured: false, sourceType: "news_events"}}

	progress := Discover(context.Background(), sources, store, DiscoverOptions{})

	assert.Zero(t, progress.Discovered)
	assert.Zero(t, progress.Errors)
	assert.Empty(t, store.inserted)
}

func TestDiscoverInsertsEveryHitFromAConfiguredCollector(t *testing.T) {
	store := &stubRawEventInserter{}
	sources := []collectors.Collector{stubCollector{
		configured: true,
		sourceType: "news_events",
		hits: []collectors.Hit{
			{Title: "a", URL: "https://example.com/a"},
			{Title: "b", URL: "https://example.com/b"},
		},
	}}

	progress := Discover(context.Background(), sources, store, DiscoverOptions{})

	assert.EqualValues(t, 2, progress.Discovered)
	require.Len(t, store.inserted, 2)
	assert.Equal(t, model.SourceType("news_events"), store.inserted[0].SourceType)
}

func TestDiscoverCountsErrorsOnCollectorFailure(t *testing.T) {
	store := &stubRawEventInserter{}
	sources := []collectors.Collector{stubCollector{
		configured: true, sourceType: "llm_search", err: errors.New("boom"),
	}}

	progress := Discover(context.Background(), sources, store, DiscoverOptions{})

	assert.EqualValues(t, 1, progress.Errors)
	assert.Zero(t, progress.Discovered)
}

func TestDiscoverHonoursMaxEvents(t *testing.T) {
	store := &stubRawEventInserter{}
	sources := []collectors.Collector{stubCollector{
		configured: true,
		sourceType: "web_search",
		hits: []collectors.Hit{
			{Title: "a", URL: "https://example.com/a"},
			{Title: "b", URL: "https://example.com/b"},
			{Title: "c", URL: "https://example.com/c"},
		},
	}}

	progress := Discover(context.Background(), sources, store, DiscoverOptions{MaxEvents: 1})

	assert.LessOrEqual(t, progress.Discovered, int64(1))
}

func TestDiscoverRespectsDateRangeParameters(t *testing.T) {
	store := &stubRawEventInserter{}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	var seen collectors.DateRange
	sources := []collectors.Collector{recordingCollector{onCollect: func(dr collectors.DateRange) {
		seen = dr
	}}}

	Discover(context.Background(), sources, store, DiscoverOptions{Start: start, End: end})

	assert.Equal(t, start, seen.Start)
	assert.Equal(t, end, seen.End)
}

type recordingCollector struct {
	onCollect func(collectors.DateRange)
}

func (r recordingCollector) ValidateConfig() bool { return true }
func (r recordingCollector) Collect(ctx context.Context, dr collectors.DateRange) ([]collectors.Hit, error) {
	r.onCollect(dr)
	return nil, nil
}
func (r recordingCollector) SourceInfo() collectors.Descriptor {
	return collectors.Descriptor{SourceType: "news_events"}
}
