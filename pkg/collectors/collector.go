// Package collectors implements the Source Collector adapters (C3)
// and the Progressive Filter (C4): five capability-backed clients that
// discover candidate incidents over a date window and normalise them
// into model.RawEvent, gated by a cheap keyword filter before they
// ever reach pkg/content.
package collectors

import (
	"context"
	"time"
)

// DateRange bounds a discovery query.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Descriptor identifies a collector for logging, rate-limiting, and
// circuit-breaking purposes.
type Descriptor struct {
	SourceType   string
	RateLimitKey string
}

// Hit is one normalised candidate a collector surfaces, prior to
// RawEvent persistence (which assigns RawID/DiscoveredAt).
type Hit struct {
	SourceEventID string
	Title         string
	Description   string
	Content       string
	URL           string
	EventDate     *time.Time
	Metadata      map[string]any
}

// Collector is the shared contract every C3 adapter implements.
type Collector interface {
	ValidateConfig() bool
	Collect(ctx context.Context, dateRange DateRange) ([]Hit, error)
	SourceInfo() Descriptor
}
