package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/collectors"
	"github.com/colinpriest/austcyberevents/pkg/model"
)

// RawEventInserter is the narrow store dependency discovery writes
// through; storage.RawEventStore satisfies it structurally.
type RawEventInserter interface {
	Insert(ctx context.Context, e *model.RawEvent) (string, error)
}

// DiscoverOptions bounds one discovery run.
type DiscoverOptions struct {
	Start       time.Time
	End         time.Time
	MaxEvents   int
	WorkerCount int
}

// Discover runs every configured collector over the requested date
// range and writes each surviving Hit as a RawEvent. Collectors are
// typically run with a worker count of 1 (per spec §4.6, "discovery
// typically sequential per source to respect rate limits") but the
// pool honours whatever WorkerCount the caller configures.
func Discover(ctx context.Context, sources []collectors.Collector, store RawEventInserter, opts DiscoverOptions) Progress {
	c := &counters{}

	workers := opts.WorkerCount
	if workers < 1 {
		workers = 1
	}

	pool(ctx, workers, sources, func(ctx context.Context, source collectors.Collector) {
		info := source.SourceInfo()
		if !source.ValidateConfig() {
			slog.Warn("skipping unconfigured collector", "source_type", info.SourceType)
			return
		}

		hits, err := source.Collect(ctx, collectors.DateRange{Start: opts.Start, End: opts.End})
		if err != nil {
			slog.Error("collector failed", "source_type", info.SourceType, "error", err)
			atomicAdd(&c.errors, 1)
			return
		}

		for _, h := range hits {
			if opts.MaxEvents > 0 && atomicLoad(&c.discovered) >= int64(opts.MaxEvents) {
				return
			}

			raw := &model.RawEvent{
				SourceType:     model.SourceType(info.SourceType),
				SourceEventID:  h.SourceEventID,
				Title:          h.Title,
				Description:    h.Description,
				Content:        h.Content,
				EventDate:      h.EventDate,
				SourceURL:      h.URL,
				SourceMetadata: h.Metadata,
			}
			if _, err := store.Insert(ctx, raw); err != nil {
				slog.Error("failed to insert raw event", "source_type", info.SourceType, "url", h.URL, "error", err)
				atomicAdd(&c.errors, 1)
				continue
			}
			atomicAdd(&c.discovered, 1)
		}
	})

	return c.snapshot()
}
