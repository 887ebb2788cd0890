package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

// AuditTrailStore persists EnrichmentAuditTrail rows. It is a thin
// database/sql wrapper consumed by pkg/audit, which owns the decision
// of what goes into each stage's JSON blob.
type AuditTrailStore struct {
	db *sql.DB
}

// NewAuditTrailStore returns an AuditTrailStore backed by db.
func NewAuditTrailStore(db *sql.DB) *AuditTrailStore {
	return &AuditTrailStore{db: db}
}

// Insert writes one EnrichmentAuditTrail row, assigning AuditID if
// unset. Invariant I3 requires exactly one such row per pipeline run;
// pkg/audit is responsible for calling this exactly once per run.
func (s *AuditTrailStore) Insert(ctx context.Context, a *model.EnrichmentAuditTrail) (string, error) {
	if a.AuditID == "" {
		a.AuditID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enrichment_audit_trail (
			audit_id, raw_id, enriched_id, extraction_blob, fact_check_blob,
			validation_blob, confidence_blob, final_decision, final_confidence,
			started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.AuditID, a.RawID, a.EnrichedID, a.ExtractionBlob, a.FactCheckBlob,
		a.ValidationBlob, a.ConfidenceBlob, string(a.FinalDecision), a.FinalConfidence,
		a.StartedAt.Format(time.RFC3339Nano), a.CompletedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert enrichment_audit_trail: %w", err)
	}
	return a.AuditID, nil
}

// ForRawEvent returns every audit row recorded for rawID, most recent first.
func (s *AuditTrailStore) ForRawEvent(ctx context.Context, rawID string) ([]*model.EnrichmentAuditTrail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT audit_id, raw_id, enriched_id, extraction_blob, fact_check_blob,
		       validation_blob, confidence_blob, final_decision, final_confidence,
		       started_at, completed_at
		FROM enrichment_audit_trail WHERE raw_id = ? ORDER BY started_at DESC`, rawID)
	if err != nil {
		return nil, fmt.Errorf("query enrichment_audit_trail: %w", err)
	}
	defer rows.Close()

	var out []*model.EnrichmentAuditTrail
	for rows.Next() {
		var (
			a            model.EnrichmentAuditTrail
			decision     string
			startedAt    string
			completedAt  string
		)
		if err := rows.Scan(
			&a.AuditID, &a.RawID, &a.EnrichedID, &a.ExtractionBlob, &a.FactCheckBlob,
			&a.ValidationBlob, &a.ConfidenceBlob, &decision, &a.FinalConfidence,
			&startedAt, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("scan enrichment_audit_trail: %w", err)
		}
		a.FinalDecision = model.Decision(decision)
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			a.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, completedAt); err == nil {
			a.CompletedAt = t
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
