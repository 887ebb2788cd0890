package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/colinpriest/austcyberevents/pkg/entity"
	"github.com/colinpriest/austcyberevents/pkg/model"
	"github.com/colinpriest/austcyberevents/pkg/pipeline"
)

// EnrichEventLister is the narrow store dependency Enrich reads
// candidates from; storage.RawEventStore satisfies it structurally.
type EnrichEventLister interface {
	Unprocessed(ctx context.Context, limit int) ([]*model.RawEvent, error)
}

// EnrichedEventGetter resolves an EnrichedEvent by ID for the
// post-insert entity-resolution step; storage.EnrichedEventStore
// satisfies it structurally.
type EnrichedEventGetter interface {
	Get(ctx context.Context, enrichedID string) (*model.EnrichedEvent, error)
}

// EnrichOptions bounds one enrichment run.
type EnrichOptions struct {
	Limit       int
	WorkerCount int
}

// Enrich runs the five-stage pipeline (C5-C9) against every
// unprocessed RawEvent, up to Limit at a time. Per spec §5 enrichment
// concurrency is configurable (WorkerCount, default from
// config.WorkerCounts.Enrich). When entities is non-nil, every
// non-reject outcome also resolves its victim and attacker names into
// canonical Entity rows (the supplemented entity-resolution feature) —
// pass nil to skip this. MonthBackfill passes nil, so the events a
// month backfill enriches are not resolved into Entity rows.
func Enrich(ctx context.Context, p *pipeline.Pipeline, store EnrichEventLister, getter EnrichedEventGetter, entities *entity.Enricher, opts EnrichOptions) Progress {
	c := &counters{}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	workers := opts.WorkerCount
	if workers < 1 {
		workers = 1
	}

	candidates, err := store.Unprocessed(ctx, limit)
	if err != nil {
		slog.Error("enrich: failed to list unprocessed raw events", "error", err)
		atomicAdd(&c.errors, 1)
		return c.snapshot()
	}

	pool(ctx, workers, candidates, func(ctx context.Context, raw *model.RawEvent) {
		outcome := p.Run(ctx, raw, isPDFURL(raw.SourceURL))
		if outcome.Err != nil {
			slog.Error("enrich: pipeline run failed", "raw_id", raw.RawID, "error", outcome.Err)
			atomicAdd(&c.errors, 1)
			return
		}
		if outcome.Decision == model.DecisionReject {
			atomicAdd(&c.rejected, 1)
			return
		}
		atomicAdd(&c.enriched, 1)

		if entities != nil && getter != nil && outcome.EnrichedID != "" {
			resolveEventEntities(ctx, getter, entities, outcome.EnrichedID)
		}
	})

	return c.snapshot()
}

// resolveEventEntities fetches the just-persisted EnrichedEvent and
// resolves its victim organization and attacking entity names into
// canonical Entity rows. A lookup or resolution failure is logged and
// otherwise ignored — entity resolution is an enrichment of an
// already-committed row, never a reason to fail the enrich phase.
func resolveEventEntities(ctx context.Context, getter EnrichedEventGetter, entities *entity.Enricher, enrichedID string) {
	e, err := getter.Get(ctx, enrichedID)
	if err != nil {
		slog.Warn("enrich: failed to reload enriched event for entity resolution", "enriched_id", enrichedID, "error", err)
		return
	}

	var mentions []entity.Mention
	if e.VictimOrganizationName != "" {
		mentions = append(mentions, entity.Mention{
			Name:             e.VictimOrganizationName,
			RelationshipType: model.RelationshipVictim,
			Confidence:       e.ConfidenceScore,
		})
	}
	if e.AttackingEntityName != "" {
		mentions = append(mentions, entity.Mention{
			Name:             e.AttackingEntityName,
			RelationshipType: model.RelationshipAttacker,
			Confidence:       e.ConfidenceScore,
		})
	}
	if len(mentions) == 0 {
		return
	}

	if _, err := entities.Resolve(ctx, enrichedID, mentions); err != nil {
		slog.Warn("enrich: entity resolution failed", "enriched_id", enrichedID, "error", err)
	}
}

// isPDFURL is a cheap heuristic the orchestrator uses to choose the
// pipeline's PDF extraction path; collectors that already know a URL
// is a PDF record that in SourceMetadata instead of relying on this.
func isPDFURL(url string) bool {
	return strings.HasSuffix(strings.ToLower(url), ".pdf")
}
