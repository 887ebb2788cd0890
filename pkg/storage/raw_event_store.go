package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

// ErrNotFound is returned by repository Get methods when no row matches.
var ErrNotFound = errors.New("storage: not found")

// RawEventStore persists and retrieves RawEvent rows.
type RawEventStore struct {
	db *sql.DB
}

// NewRawEventStore returns a RawEventStore backed by db.
func NewRawEventStore(db *sql.DB) *RawEventStore {
	return &RawEventStore{db: db}
}

// Insert writes a new RawEvent, assigning RawID and DiscoveredAt if
// unset. It silently no-ops (returning the existing row's ID) if the
// (source_type, source_url, title) uniqueness key already exists,
// matching the collector duplicate-suppression rule.
func (s *RawEventStore) Insert(ctx context.Context, e *model.RawEvent) (string, error) {
	if e.RawID == "" {
		e.RawID = uuid.NewString()
	}
	if e.DiscoveredAt.IsZero() {
		e.DiscoveredAt = time.Now().UTC()
	}

	existing, err := s.findByKey(ctx, e.SourceType, e.SourceURL, e.Title)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	if err == nil {
		return existing, nil
	}

	metaJSON, err := json.Marshal(e.SourceMetadata)
	if err != nil {
		return "", fmt.Errorf("marshal source_metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO raw_events (
			raw_id, source_type, source_event_id, title, description, content,
			event_date, source_url, source_metadata, discovered_at,
			is_processed, processing_attempted_at, processing_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RawID, string(e.SourceType), e.SourceEventID, e.Title, e.Description, e.Content,
		nullableTime(e.EventDate), e.SourceURL, string(metaJSON), e.DiscoveredAt.Format(time.RFC3339Nano),
		e.IsProcessed, nullableTime(e.ProcessingAttemptedAt), e.ProcessingError,
	)
	if err != nil {
		return "", fmt.Errorf("insert raw_event: %w", err)
	}
	return e.RawID, nil
}

func (s *RawEventStore) findByKey(ctx context.Context, sourceType model.SourceType, sourceURL, title string) (string, error) {
	var rawID string
	err := s.db.QueryRowContext(ctx, `
		SELECT raw_id FROM raw_events WHERE source_type = ? AND source_url = ? AND title = ?`,
		string(sourceType), sourceURL, title).Scan(&rawID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup raw_event by key: %w", err)
	}
	return rawID, nil
}

// Get returns the RawEvent with the given ID.
func (s *RawEventStore) Get(ctx context.Context, rawID string) (*model.RawEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT raw_id, source_type, source_event_id, title, description, content,
		       event_date, source_url, source_metadata, discovered_at,
		       is_processed, processing_attempted_at, processing_error
		FROM raw_events WHERE raw_id = ?`, rawID)
	return scanRawEvent(row)
}

// MarkProcessed records the outcome of attempting to process rawID: it
// sets is_processed to processed and processing_error to processingErr,
// whether or not processingErr is empty.
func (s *RawEventStore) MarkProcessed(ctx context.Context, rawID string, processed bool, processingErr string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
		UPDATE raw_events SET is_processed = ?, processing_attempted_at = ?, processing_error = ?
		WHERE raw_id = ?`, processed, now, processingErr, rawID)
	if err != nil {
		return fmt.Errorf("mark raw_event processed: %w", err)
	}
	return nil
}

// SetContent records the acquired full text for rawID.
func (s *RawEventStore) SetContent(ctx context.Context, rawID, content string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE raw_events SET content = ? WHERE raw_id = ?`, content, rawID)
	if err != nil {
		return fmt.Errorf("set raw_event content: %w", err)
	}
	return nil
}

// Unprocessed returns up to limit RawEvents with is_processed = false,
// ordered oldest-discovered-first, for the orchestrator to feed to a
// worker pool.
func (s *RawEventStore) Unprocessed(ctx context.Context, limit int) ([]*model.RawEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT raw_id, source_type, source_event_id, title, description, content,
		       event_date, source_url, source_metadata, discovered_at,
		       is_processed, processing_attempted_at, processing_error
		FROM raw_events WHERE is_processed = 0 ORDER BY discovered_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed raw_events: %w", err)
	}
	defer rows.Close()

	var out []*model.RawEvent
	for rows.Next() {
		e, err := scanRawEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// rowScanner abstracts *sql.Row / *sql.Rows so scan helpers work with both.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRawEvent(r rowScanner) (*model.RawEvent, error) {
	var (
		e              model.RawEvent
		sourceType     string
		eventDate      sql.NullString
		metaJSON       string
		discoveredAt   string
		attemptedAt    sql.NullString
	)
	err := r.Scan(
		&e.RawID, &sourceType, &e.SourceEventID, &e.Title, &e.Description, &e.Content,
		&eventDate, &e.SourceURL, &metaJSON, &discoveredAt,
		&e.IsProcessed, &attemptedAt, &e.ProcessingError,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan raw_event: %w", err)
	}

	e.SourceType = model.SourceType(sourceType)
	if eventDate.Valid {
		t, err := time.Parse(time.RFC3339Nano, eventDate.String)
		if err == nil {
			e.EventDate = &t
		}
	}
	if metaJSON != "" {
		_ = json.Unmarshal([]byte(metaJSON), &e.SourceMetadata)
	}
	if t, err := time.Parse(time.RFC3339Nano, discoveredAt); err == nil {
		e.DiscoveredAt = t
	}
	if attemptedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, attemptedAt.String)
		if err == nil {
			e.ProcessingAttemptedAt = &t
		}
	}
	return &e, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}
