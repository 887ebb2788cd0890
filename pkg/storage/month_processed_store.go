package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// MonthProcessedStore is the idempotency ledger consulted by
// month-by-month backfills so a completed month is never redone.
type MonthProcessedStore struct {
	db *sql.DB
}

// NewMonthProcessedStore returns a MonthProcessedStore backed by db.
func NewMonthProcessedStore(db *sql.DB) *MonthProcessedStore {
	return &MonthProcessedStore{db: db}
}

// IsProcessed reports whether (year, month) is already marked complete.
func (s *MonthProcessedStore) IsProcessed(ctx context.Context, year, month int) (bool, error) {
	var processed bool
	err := s.db.QueryRowContext(ctx, `SELECT is_processed FROM month_processed WHERE year = ? AND month = ?`, year, month).Scan(&processed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check month_processed: %w", err)
	}
	return processed, nil
}

// MarkComplete records (year, month) as processed, storing stats for
// later inspection. Re-running a completed month overwrites stats but
// keeps the row idempotent (R3).
func (s *MonthProcessedStore) MarkComplete(ctx context.Context, year, month int, stats map[string]any) error {
	blob, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal month_processed stats: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO month_processed (year, month, is_processed, stats) VALUES (?, ?, 1, ?)
		ON CONFLICT (year, month) DO UPDATE SET is_processed = 1, stats = excluded.stats`,
		year, month, string(blob))
	if err != nil {
		return fmt.Errorf("mark month_processed complete: %w", err)
	}
	return nil
}
