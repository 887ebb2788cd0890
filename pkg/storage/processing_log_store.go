package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

// ProcessingLogStore appends ProcessingLog rows, one per pipeline stage
// outcome for a given RawEvent.
type ProcessingLogStore struct {
	db *sql.DB
}

// NewProcessingLogStore returns a ProcessingLogStore backed by db.
func NewProcessingLogStore(db *sql.DB) *ProcessingLogStore {
	return &ProcessingLogStore{db: db}
}

// Append writes one ProcessingLog row, assigning LogID/CreatedAt if unset.
func (s *ProcessingLogStore) Append(ctx context.Context, log *model.ProcessingLog) error {
	if log.LogID == "" {
		log.LogID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processing_log (log_id, raw_id, stage, status, result_blob, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.LogID, log.RawID, string(log.Stage), log.Status, log.ResultBlob, log.Error, log.DurationMS,
		log.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append processing_log: %w", err)
	}
	return nil
}

// ForRawEvent returns every ProcessingLog row for rawID in stage order.
func (s *ProcessingLogStore) ForRawEvent(ctx context.Context, rawID string) ([]*model.ProcessingLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT log_id, raw_id, stage, status, result_blob, error, duration_ms, created_at
		FROM processing_log WHERE raw_id = ? ORDER BY created_at ASC`, rawID)
	if err != nil {
		return nil, fmt.Errorf("query processing_log: %w", err)
	}
	defer rows.Close()

	var out []*model.ProcessingLog
	for rows.Next() {
		var (
			l         model.ProcessingLog
			stage     string
			createdAt string
		)
		if err := rows.Scan(&l.LogID, &l.RawID, &stage, &l.Status, &l.ResultBlob, &l.Error, &l.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan processing_log: %w", err)
		}
		l.Stage = model.ProcessingStage(stage)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			l.CreatedAt = t
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
