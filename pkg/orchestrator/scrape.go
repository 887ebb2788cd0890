package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/collectors"
	"github.com/colinpriest/austcyberevents/pkg/model"
)

// scrapeFetchTimeout bounds a single scrape-phase fetch.
const scrapeFetchTimeout = 30 * time.Second

// RawEventLister is the narrow store dependency scrape reads
// candidates from; storage.RawEventStore satisfies it structurally.
type RawEventLister interface {
	Unprocessed(ctx context.Context, limit int) ([]*model.RawEvent, error)
	SetContent(ctx context.Context, rawID, content string) error
	MarkProcessed(ctx context.Context, rawID string, processed bool, processingErr string) error
}

// ScrapeOptions bounds one scrape run.
type ScrapeOptions struct {
	Limit       int
	WorkerCount int
}

// Scrape fetches full article text for RawEvents not yet processed
// and applies the stricter Progressive Filter (C4) Stage-2 gate before
// the expensive enrichment pipeline ever sees them. A RawEvent that
// fails the gate is marked processed with an explanatory error so
// Enrich's Unprocessed query skips it; one that passes has its content
// cached via SetContent but is left unprocessed so Enrich still runs
// the full five-stage pipeline against it. Per spec §4.6, scraping
// typically runs with up to 5 concurrent workers.
func Scrape(ctx context.Context, fetch capability.HttpFetch, extract capability.MainContentExtract, store RawEventLister, opts ScrapeOptions) Progress {
	c := &counters{}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	workers := opts.WorkerCount
	if workers < 1 {
		workers = 5
	}

	candidates, err := store.Unprocessed(ctx, limit)
	if err != nil {
		slog.Error("scrape: failed to list unprocessed raw events", "error", err)
		atomicAdd(&c.errors, 1)
		return c.snapshot()
	}

	pool(ctx, workers, candidates, func(ctx context.Context, raw *model.RawEvent) {
		resp, err := fetch.Fetch(ctx, raw.SourceURL, scrapeFetchTimeout)
		if err != nil {
			slog.Warn("scrape: fetch failed, leaving raw event for enrich to retry", "raw_id", raw.RawID, "error", err)
			atomicAdd(&c.errors, 1)
			return
		}

		text, err := extract.Extract(string(resp.Body))
		if err != nil {
			slog.Warn("scrape: content extraction failed, leaving raw event for enrich to retry", "raw_id", raw.RawID, "error", err)
			atomicAdd(&c.errors, 1)
			return
		}

		if !collectors.PostScrapeGate(text) {
			if err := store.MarkProcessed(ctx, raw.RawID, true, "rejected by post-scrape keyword gate"); err != nil {
				slog.Error("scrape: failed to mark gated-out raw event processed", "raw_id", raw.RawID, "error", err)
				atomicAdd(&c.errors, 1)
			}
			atomicAdd(&c.rejected, 1)
			return
		}

		if err := store.SetContent(ctx, raw.RawID, text); err != nil {
			slog.Error("scrape: failed to persist scraped content", "raw_id", raw.RawID, "error", err)
			atomicAdd(&c.errors, 1)
			return
		}
		atomicAdd(&c.scraped, 1)
	})

	return c.snapshot()
}
