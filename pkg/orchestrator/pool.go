// Package orchestrator implements the phase commands (C13) that drive
// the pipeline end to end: discover, scrape, enrich, dedupe, backfill,
// plus the supplemented fix-records repair job. Each phase bounds its
// concurrency with a small goroutine pool modelled on the teacher's
// pkg/queue worker/pool pattern (bounded goroutines that stop taking
// work once the context is cancelled; there is no separate Stop),
// reporting progress through per-phase counters instead of per-session
// health.
package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
)

// Progress is a snapshot of one phase's counters, safe to read
// concurrently with the phase still running.
type Progress struct {
	Discovered int64
	Scraped    int64
	Enriched   int64
	Rejected   int64
	Errors     int64
}

// counters is the live, concurrently-updated backing store for a
// Progress snapshot.
type counters struct {
	discovered int64
	scraped    int64
	enriched   int64
	rejected   int64
	errors     int64
}

func atomicAdd(addr *int64, delta int64) {
	atomic.AddInt64(addr, delta)
}

func atomicLoad(addr *int64) int64 {
	return atomic.LoadInt64(addr)
}

func (c *counters) snapshot() Progress {
	return Progress{
		Discovered: atomic.LoadInt64(&c.discovered),
		Scraped:    atomic.LoadInt64(&c.scraped),
		Enriched:   atomic.LoadInt64(&c.enriched),
		Rejected:   atomic.LoadInt64(&c.rejected),
		Errors:     atomic.LoadInt64(&c.errors),
	}
}

// pool runs fn over every item received on work with up to
// workerCount goroutines, stopping early if ctx is cancelled. It
// blocks until every item has been handed to a worker and every
// worker has returned (a simple bounded fan-out, not a long-lived
// pool) — each orchestrator phase enqueues a fixed batch and waits
// for it to drain rather than running forever.
func pool[T any](ctx context.Context, workerCount int, work []T, fn func(ctx context.Context, item T)) {
	if workerCount < 1 {
		workerCount = 1
	}

	items := make(chan T)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range items {
				if ctx.Err() != nil {
					return
				}
				fn(ctx, item)
			}
		}()
	}

feed:
	for _, item := range work {
		select {
		case items <- item:
		case <-ctx.Done():
			break feed
		}
	}
	close(items)
	wg.Wait()
}
