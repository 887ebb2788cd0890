package collectors

import (
	"context"
	"fmt"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/ratelimit"
	"github.com/colinpriest/austcyberevents/pkg/resilience"
)

// minCorroboratingSources is the minimum number of distinct domains a
// hit's metadata must carry before NewsEventsCollector keeps it, per
// spec §4.3's "requires minimum multi-source corroboration".
const minCorroboratingSources = 1

// NewsEventsCollector queries a columnar global-events data source
// scoped to Australia with the spec's keyword/exclusion set, mapping
// provider event codes to the internal incident-type enum.
type NewsEventsCollector struct {
	query     capability.NewsEventsQuery
	decorator *resilience.Decorator
	limiter   *ratelimit.Registry
}

// NewNewsEventsCollector builds a NewsEventsCollector.
func NewNewsEventsCollector(query capability.NewsEventsQuery, decorator *resilience.Decorator, limiter *ratelimit.Registry) *NewsEventsCollector {
	return &NewsEventsCollector{query: query, decorator: decorator, limiter: limiter}
}

const newsEventsRateLimitKey = "news-events"

// SourceInfo implements Collector.
func (c *NewsEventsCollector) SourceInfo() Descriptor {
	return Descriptor{SourceType: "NewsEvents", RateLimitKey: newsEventsRateLimitKey}
}

// ValidateConfig implements Collector.
func (c *NewsEventsCollector) ValidateConfig() bool {
	return c.query != nil
}

// Collect implements Collector.
func (c *NewsEventsCollector) Collect(ctx context.Context, dateRange DateRange) ([]Hit, error) {
	if err := c.limiter.Wait(ctx, newsEventsRateLimitKey); err != nil {
		return nil, err
	}

	var hits []capability.RawHit
	err := c.decorator.Call(ctx, newsEventsRateLimitKey, func(ctx context.Context) error {
		h, err := c.query.Query(ctx, capability.DateRange{Start: dateRange.Start, End: dateRange.End}, discoveryKeywords, discoveryExclusions, "AS")
		if err != nil {
			return err
		}
		hits = h
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("news events query: %w", err)
	}

	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if !hasMinimumCorroboration(h) {
			continue
		}
		if !DiscoveryGate(h.Title, h.Description) {
			continue
		}
		meta := h.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		meta["incident_type"] = IncidentTypeForEventCode(h.EventCode)

		out = append(out, Hit{
			SourceEventID: h.SourceEventID,
			Title:         h.Title,
			Description:   h.Description,
			URL:           h.URL,
			EventDate:     h.EventDate,
			Metadata:      meta,
		})
	}
	return out, nil
}

// hasMinimumCorroboration reports whether a hit's recorded source
// count meets the spec's multi-source corroboration floor. A hit with
// no corroboration metadata is kept (treated as 1 source) rather than
// dropped, since not every provider reports a count.
func hasMinimumCorroboration(h capability.RawHit) bool {
	n, ok := h.Metadata["source_count"].(int)
	if !ok {
		return true
	}
	return n >= minCorroboratingSources
}
