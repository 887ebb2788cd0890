package orchestrator

import (
	"context"
	"log/slog"

	"github.com/colinpriest/austcyberevents/pkg/model"
	"github.com/colinpriest/austcyberevents/pkg/validation"
)

// RecordsAffectedSource is the narrow store dependency FixRecords reads
// candidates from and writes corrections back to;
// storage.DeduplicatedEventStore satisfies it structurally.
type RecordsAffectedSource interface {
	ActiveWithRecordsAffected(ctx context.Context) ([]*model.DeduplicatedEvent, error)
	UpdateRecordsAffected(ctx context.Context, dedupID string, value *int64) error
}

// Adjustment records one correction FixRecords found, whether or not
// it was applied.
type Adjustment struct {
	DedupID  string
	Title    string
	Original int64
}

// FixRecords re-applies the shared records-affected rule (§4.4.4) to
// every Active DeduplicatedEvent's already-persisted records_affected
// value, catching values that were accepted before the rule's
// major-organisation allowlist existed or was later tightened. It
// never touches the database unless apply is true, so an operator can
// review the report before committing to it (spec §9's decision: a
// guarded idempotent job, not a one-off script). Grounded on
// original_source/fix_records_affected.py.
func FixRecords(ctx context.Context, store RecordsAffectedSource, apply bool) ([]Adjustment, error) {
	candidates, err := store.ActiveWithRecordsAffected(ctx)
	if err != nil {
		return nil, err
	}

	var adjustments []Adjustment
	for _, d := range candidates {
		if d.RecordsAffected == nil {
			continue
		}
		original := *d.RecordsAffected
		revalidated := validation.RecordsAffected(original, d.Title)
		if revalidated != nil {
			continue // unchanged, no adjustment needed
		}

		adjustments = append(adjustments, Adjustment{DedupID: d.DedupID, Title: d.Title, Original: original})

		if !apply {
			continue
		}
		if err := store.UpdateRecordsAffected(ctx, d.DedupID, nil); err != nil {
			slog.Error("fix-records: failed to clear records_affected", "dedup_id", d.DedupID, "error", err)
			return adjustments, err
		}
	}

	return adjustments, nil
}
