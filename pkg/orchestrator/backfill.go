package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/collectors"
	"github.com/colinpriest/austcyberevents/pkg/confidence"
	"github.com/colinpriest/austcyberevents/pkg/factcheck"
	"github.com/colinpriest/austcyberevents/pkg/model"
	"github.com/colinpriest/austcyberevents/pkg/pipeline"
	"github.com/colinpriest/austcyberevents/pkg/validation"
)

// MonthLedger is the idempotency ledger month-by-month backfill
// consults so a completed month is never redone (R3);
// storage.MonthProcessedStore satisfies it structurally.
type MonthLedger interface {
	IsProcessed(ctx context.Context, year, month int) (bool, error)
	MarkComplete(ctx context.Context, year, month int, stats map[string]any) error
}

// MonthBackfillOptions bounds a month-by-month historical backfill.
type MonthBackfillOptions struct {
	StartMonth  time.Time // any day in the first month, inclusive
	EndMonth    time.Time // any day in the last month, inclusive
	WorkerCount int
}

// MonthBackfill runs discover+scrape+enrich for every calendar month
// in [StartMonth, EndMonth], skipping months MonthLedger already marks
// complete and recording stats when a month finishes, per spec §4.6
// and R3's idempotent-resumption requirement.
func MonthBackfill(
	ctx context.Context,
	sources []collectors.Collector,
	fetch capability.HttpFetch,
	extract capability.MainContentExtract,
	p *pipeline.Pipeline,
	rawEvents interface {
		RawEventInserter
		RawEventLister
	},
	enrichEvents EnrichEventLister,
	months MonthLedger,
	opts MonthBackfillOptions,
) Progress {
	total := &counters{}

	for cursor := firstOfMonth(opts.StartMonth); !cursor.After(opts.EndMonth); cursor = cursor.AddDate(0, 1, 0) {
		year, month := cursor.Year(), int(cursor.Month())

		done, err := months.IsProcessed(ctx, year, month)
		if err != nil {
			slog.Error("month-backfill: failed to check month ledger", "year", year, "month", month, "error", err)
			atomicAdd(&total.errors, 1)
			continue
		}
		if done {
			slog.Info("month-backfill: month already complete, skipping", "year", year, "month", month)
			continue
		}

		monthEnd := cursor.AddDate(0, 1, 0).Add(-time.Second)

		discoverProgress := Discover(ctx, sources, rawEvents, DiscoverOptions{
			Start: cursor, End: monthEnd, WorkerCount: opts.WorkerCount,
		})
		scrapeProgress := Scrape(ctx, fetch, extract, rawEvents, ScrapeOptions{WorkerCount: opts.WorkerCount})
		enrichProgress := Enrich(ctx, p, enrichEvents, nil, nil, EnrichOptions{WorkerCount: opts.WorkerCount})

		atomicAdd(&total.discovered, discoverProgress.Discovered)
		atomicAdd(&total.scraped, scrapeProgress.Scraped)
		atomicAdd(&total.enriched, enrichProgress.Enriched)
		atomicAdd(&total.rejected, enrichProgress.Rejected)
		atomicAdd(&total.errors, discoverProgress.Errors+scrapeProgress.Errors+enrichProgress.Errors)

		if err := months.MarkComplete(ctx, year, month, map[string]any{
			"discovered": discoverProgress.Discovered,
			"scraped":    scrapeProgress.Scraped,
			"enriched":   enrichProgress.Enriched,
			"rejected":   enrichProgress.Rejected,
			"errors":     discoverProgress.Errors + scrapeProgress.Errors + enrichProgress.Errors,
		}); err != nil {
			slog.Error("month-backfill: failed to mark month complete", "year", year, "month", month, "error", err)
			atomicAdd(&total.errors, 1)
		}
	}

	return total.snapshot()
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EnrichedEventBackfillSource is the narrow store dependency
// PerplexityBackfill reads candidates from and writes results back to;
// storage.EnrichedEventStore satisfies it structurally.
type EnrichedEventBackfillSource interface {
	ActiveForBackfill(ctx context.Context, limit int) ([]*model.EnrichedEvent, error)
	ApplyPerplexityBackfill(ctx context.Context, enrichedID string, data map[string]any) error
}

// PerplexityBackfillOptions bounds a Perplexity-style re-verification
// backfill run.
type PerplexityBackfillOptions struct {
	Limit        int
	PriorityOnly bool // restrict to events with a placeholder (1st-of-month) event_date
	WorkerCount  int
}

// PerplexityBackfill re-runs Stage 3 (fact-checking), Stage 4
// (validation), and Stage 5 (confidence aggregation) against
// already-persisted EnrichedEvents that predate a fact-check
// capability becoming available — skipping re-acquisition of content
// and re-extraction, since the structured extraction fields are
// already on the row. Grounded on
// original_source/perplexity_backfill_events.py's placeholder-date
// prioritisation and field-level re-enrichment.
func PerplexityBackfill(
	ctx context.Context,
	fc *factcheck.FactChecker,
	aggregator *confidence.Aggregator,
	dupcheck validation.DuplicateChecker,
	store EnrichedEventBackfillSource,
	opts PerplexityBackfillOptions,
) Progress {
	c := &counters{}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	workers := opts.WorkerCount
	if workers < 1 {
		workers = 1
	}

	candidates, err := store.ActiveForBackfill(ctx, limit)
	if err != nil {
		slog.Error("perplexity-backfill: failed to list candidates", "error", err)
		atomicAdd(&c.errors, 1)
		return c.snapshot()
	}

	if opts.PriorityOnly {
		candidates = filterPlaceholderDates(candidates)
	}

	pool(ctx, workers, candidates, func(ctx context.Context, e *model.EnrichedEvent) {
		now := time.Now().UTC()

		factCheckResult := fc.Verify(ctx, factcheck.Input{
			VictimOrganization: e.VictimOrganizationName,
			HasVictim:          e.VictimOrganizationName != "",
			EventDate:          e.EventDate,
			HasEventDate:       e.EventDate != nil,
			AttackerName:       e.AttackingEntityName,
			RecordsAffected:    e.RecordsAffected,
		})

		validationResult := validation.Validate(ctx, validation.Input{
			Title:                    e.Title,
			VictimOrganization:       e.VictimOrganizationName,
			Industry:                 e.VictimOrganizationIndustry,
			Severity:                 validation.Severity(e.Severity),
			RecordsAffected:          e.RecordsAffected,
			EventDate:                e.EventDate,
			DiscoveryDate:            &now,
			IsSpecificIncident:       e.IsSpecificEvent,
			AustralianRelevance:      e.AustralianRelevanceScore,
			AttackType:               e.AttackMethod,
			FactCheckChecksPerformed: factCheckResult.ChecksPerformed,
			FactCheckChecksPassed:    factCheckResult.ChecksPassed,
			Now:                      now,
		}, dupcheck)

		decision := aggregator.Aggregate(confidence.Input{
			ExtractionConfidence:     e.ConfidenceScore,
			FactCheckConfidence:      factCheckResult.OverallVerificationConfidence,
			ValidationConfidence:     validationResult.ValidationConfidence,
			SourceReliability:        e.ConfidenceScore,
			HasValidationError:       !validationResult.IsValid,
			ValidationWarnings:       len(validationResult.Warnings),
			IsSpecificIncident:       validationResult.IsSpecificIncident,
			AustralianRelevance:      e.AustralianRelevanceScore,
			FactCheckChecksPerformed: factCheckResult.ChecksPerformed,
			FactCheckChecksPassed:    factCheckResult.ChecksPassed,
			Title:                    e.Title,
		})

		data := map[string]any{
			"fact_check_confidence": factCheckResult.OverallVerificationConfidence,
			"checks_performed":      factCheckResult.ChecksPerformed,
			"checks_passed":         factCheckResult.ChecksPassed,
			"validation_confidence": validationResult.ValidationConfidence,
			"final_confidence":      decision.FinalConfidence,
			"decision":              string(decision.Decision),
		}
		if err := store.ApplyPerplexityBackfill(ctx, e.EnrichedID, data); err != nil {
			slog.Error("perplexity-backfill: failed to persist backfill result", "enriched_id", e.EnrichedID, "error", err)
			atomicAdd(&c.errors, 1)
			return
		}
		atomicAdd(&c.enriched, 1)
	})

	return c.snapshot()
}

// filterPlaceholderDates keeps only events whose event_date falls on
// the first of the month — the original script's heuristic for "this
// date was a guess, not an extracted fact".
func filterPlaceholderDates(events []*model.EnrichedEvent) []*model.EnrichedEvent {
	out := make([]*model.EnrichedEvent, 0, len(events))
	for _, e := range events {
		if e.EventDate != nil && e.EventDate.Day() == 1 {
			out = append(out, e)
		}
	}
	return out
}
