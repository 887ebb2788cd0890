package orchestrator

import (
	"context"
	"log/slog"

	"github.com/colinpriest/austcyberevents/pkg/dedup"
	"github.com/colinpriest/austcyberevents/pkg/model"
)

// EnrichedEventDedupSource is the narrow store dependency Dedupe reads
// its candidate set from; storage.EnrichedEventStore satisfies it
// structurally.
type EnrichedEventDedupSource interface {
	ActiveForDedup(ctx context.Context) ([]*model.EnrichedEvent, error)
	SetStatus(ctx context.Context, enrichedID string, status model.EventStatus) error
}

// RawEventOriginLookup resolves the RawEvent an EnrichedEvent derives
// from, for the source URL/type/discovered-at fields the dedup engine
// needs but EnrichedEvent itself doesn't carry (spec §4.5: "all Active
// EnrichedEvents joined with their owning RawEvent").
type RawEventOriginLookup interface {
	Get(ctx context.Context, rawID string) (*model.RawEvent, error)
}

// Dedupe runs the deduplication engine (C11) over every Active
// EnrichedEvent, persists each resulting merge, and marks every
// non-master contributing EnrichedEvent Superseded.
func Dedupe(ctx context.Context, engine *dedup.Engine, store *dedup.Store, events EnrichedEventDedupSource, raws RawEventOriginLookup) Progress {
	c := &counters{}

	active, err := events.ActiveForDedup(ctx)
	if err != nil {
		slog.Error("dedupe: failed to list active enriched events", "error", err)
		atomicAdd(&c.errors, 1)
		return c.snapshot()
	}

	candidates := make([]dedup.Candidate, 0, len(active))
	for _, e := range active {
		candidates = append(candidates, toCandidate(ctx, e, raws))
	}

	groups := engine.GroupCandidates(ctx, candidates)
	for _, g := range groups {
		merged := dedup.Merge(g)

		if _, err := store.Persist(ctx, merged); err != nil {
			slog.Error("dedupe: failed to persist merged group", "master", merged.Master.EnrichedID, "error", err)
			atomicAdd(&c.errors, 1)
			continue
		}

		for _, other := range merged.Others {
			if err := events.SetStatus(ctx, other.EnrichedID, model.StatusSuperseded); err != nil {
				slog.Error("dedupe: failed to mark event superseded", "enriched_id", other.EnrichedID, "error", err)
				atomicAdd(&c.errors, 1)
				continue
			}
		}
		atomicAdd(&c.enriched, int64(len(g.Members)))
	}

	return c.snapshot()
}

// toCandidate converts an EnrichedEvent into a dedup.Candidate. It
// carries the already-resolved VictimOrganizationName through as
// PrimaryEntity so the entity gate compares canonical organisation
// names rather than falling back to a title-regex guess, then looks
// up the owning RawEvent for the source fields EnrichedEvent itself
// doesn't carry. A lookup failure degrades to an empty source rather
// than aborting the whole run.
func toCandidate(ctx context.Context, e *model.EnrichedEvent, raws RawEventOriginLookup) dedup.Candidate {
	c := dedup.Candidate{
		EnrichedID:         e.EnrichedID,
		RawID:              e.RawID,
		Title:              e.Title,
		Description:        e.Description,
		Summary:            e.Summary,
		EventType:          e.EventType,
		Severity:           string(e.Severity),
		EventDate:          e.EventDate,
		RecordsAffected:    e.RecordsAffected,
		PrimaryEntity:      e.VictimOrganizationName,
		VictimOrganization: e.VictimOrganizationName,
		VictimIndustry:     e.VictimOrganizationIndustry,
		AttackingEntity:    e.AttackingEntityName,
		AttackMethod:       e.AttackMethod,
		IsAustralianEvent:  e.IsAustralianEvent,
		IsSpecificEvent:    e.IsSpecificEvent,
		ConfidenceScore:    e.ConfidenceScore,
		RelevanceScore:     e.AustralianRelevanceScore,
		DiscoveredAt:       e.CreatedAt,
	}

	raw, err := raws.Get(ctx, e.RawID)
	if err != nil {
		slog.Warn("dedupe: failed to resolve owning raw event, leaving source fields empty", "enriched_id", e.EnrichedID, "raw_id", e.RawID, "error", err)
		return c
	}
	c.SourceURL = raw.SourceURL
	c.SourceType = string(raw.SourceType)
	c.DiscoveredAt = raw.DiscoveredAt
	return c
}
