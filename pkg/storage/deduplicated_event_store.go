package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

// DeduplicatedEventStore persists DeduplicatedEvent rows together with
// their two mapping tables, EventDeduplicationMap and
// DeduplicatedEventSources.
type DeduplicatedEventStore struct {
	db *sql.DB
}

// NewDeduplicatedEventStore returns a DeduplicatedEventStore backed by db.
func NewDeduplicatedEventStore(db *sql.DB) *DeduplicatedEventStore {
	return &DeduplicatedEventStore{db: db}
}

// Write persists a DeduplicatedEvent, its EventDeduplicationMap rows,
// and its DeduplicatedEventSources rows as a single transaction, so a
// partial merge is never visible to readers.
func (s *DeduplicatedEventStore) Write(
	ctx context.Context,
	dedup *model.DeduplicatedEvent,
	mappings []model.EventDeduplicationMap,
	sources []model.DeduplicatedEventSources,
) (string, error) {
	if dedup.DedupID == "" {
		dedup.DedupID = uuid.NewString()
	}
	now := time.Now().UTC()
	if dedup.CreatedAt.IsZero() {
		dedup.CreatedAt = now
	}
	dedup.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin dedup write: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO deduplicated_events (
			dedup_id, master_enriched_id, title, description, summary, event_type, severity,
			event_date, records_affected, victim_organization_name, victim_organization_industry,
			attacking_entity_name, attack_method, is_australian_event, is_specific_event,
			confidence_score, australian_relevance_score, total_data_sources,
			contributing_raw_events, contributing_enriched_events, similarity_score,
			deduplication_method, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		dedup.DedupID, dedup.MasterEnrichedID, dedup.Title, dedup.Description, dedup.Summary, dedup.EventType, string(dedup.Severity),
		nullableTime(dedup.EventDate), dedup.RecordsAffected, dedup.VictimOrganizationName, dedup.VictimOrganizationIndustry,
		dedup.AttackingEntityName, dedup.AttackMethod, dedup.IsAustralianEvent, dedup.IsSpecificEvent,
		dedup.ConfidenceScore, dedup.AustralianRelevanceScore, dedup.TotalDataSources,
		dedup.ContributingRawEvents, dedup.ContributingEnrichedEvents, dedup.SimilarityScore,
		dedup.DeduplicationMethod, string(dedup.Status), dedup.CreatedAt.Format(time.RFC3339Nano), dedup.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert deduplicated_event: %w", err)
	}

	for _, m := range mappings {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO event_deduplication_map (raw_id, enriched_id, dedup_id, contribution_type, similarity_to_master, weight)
			VALUES (?, ?, ?, ?, ?, ?)`,
			m.RawID, m.EnrichedID, dedup.DedupID, string(m.ContributionType), m.SimilarityToMaster, m.Weight)
		if err != nil {
			return "", fmt.Errorf("insert event_deduplication_map row: %w", err)
		}
	}

	for _, src := range sources {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO deduplicated_event_sources (dedup_id, source_url, source_type, credibility_score, content_snippet, discovered_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (dedup_id, source_url) DO NOTHING`,
			dedup.DedupID, src.SourceURL, string(src.SourceType), src.CredibilityScore, src.ContentSnippet, src.DiscoveredAt.Format(time.RFC3339Nano))
		if err != nil {
			return "", fmt.Errorf("insert deduplicated_event_sources row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit dedup write: %w", err)
	}
	return dedup.DedupID, nil
}

// Get returns the DeduplicatedEvent with the given ID.
func (s *DeduplicatedEventStore) Get(ctx context.Context, dedupID string) (*model.DeduplicatedEvent, error) {
	row := s.db.QueryRowContext(ctx, dedupEventSelect+` WHERE dedup_id = ?`, dedupID)
	return scanDedupEvent(row)
}

// SourceURLCount returns the number of distinct source URLs recorded
// for dedupID, used to maintain invariant I2
// (total_data_sources = |distinct source_url|).
func (s *DeduplicatedEventStore) SourceURLCount(ctx context.Context, dedupID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT source_url) FROM deduplicated_event_sources WHERE dedup_id = ?`, dedupID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count dedup sources: %w", err)
	}
	return n, nil
}

// ActiveWithRecordsAffected returns every Active DeduplicatedEvent that
// carries a non-NULL records_affected value, ordered highest-first —
// the candidate set the records-affected repair job re-checks.
func (s *DeduplicatedEventStore) ActiveWithRecordsAffected(ctx context.Context) ([]*model.DeduplicatedEvent, error) {
	rows, err := s.db.QueryContext(ctx, dedupEventSelect+`
		WHERE status = ? AND records_affected IS NOT NULL
		ORDER BY records_affected DESC`, string(model.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("query active dedup events with records_affected: %w", err)
	}
	defer rows.Close()

	var out []*model.DeduplicatedEvent
	for rows.Next() {
		d, err := scanDedupEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListActive returns every Active DeduplicatedEvent, newest first —
// the row set the export command writes out.
func (s *DeduplicatedEventStore) ListActive(ctx context.Context) ([]*model.DeduplicatedEvent, error) {
	rows, err := s.db.QueryContext(ctx, dedupEventSelect+`
		WHERE status = ?
		ORDER BY created_at DESC`, string(model.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("query active dedup events: %w", err)
	}
	defer rows.Close()

	var out []*model.DeduplicatedEvent
	for rows.Next() {
		d, err := scanDedupEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateRecordsAffected overwrites dedupID's records_affected column,
// used by the repair job to null out values the shared rule rejects
// on re-check.
func (s *DeduplicatedEventStore) UpdateRecordsAffected(ctx context.Context, dedupID string, value *int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE deduplicated_events SET records_affected = ?, updated_at = ? WHERE dedup_id = ?`,
		value, time.Now().UTC().Format(time.RFC3339Nano), dedupID)
	if err != nil {
		return fmt.Errorf("update dedup records_affected: %w", err)
	}
	return nil
}

const dedupEventSelect = `
	SELECT dedup_id, master_enriched_id, title, description, summary, event_type, severity,
	       event_date, records_affected, victim_organization_name, victim_organization_industry,
	       attacking_entity_name, attack_method, is_australian_event, is_specific_event,
	       confidence_score, australian_relevance_score, total_data_sources,
	       contributing_raw_events, contributing_enriched_events, similarity_score,
	       deduplication_method, status, created_at, updated_at
	FROM deduplicated_events`

func scanDedupEvent(r rowScanner) (*model.DeduplicatedEvent, error) {
	var (
		d         model.DeduplicatedEvent
		severity  string
		eventDate sql.NullString
		status    string
		createdAt string
		updatedAt string
	)
	err := r.Scan(
		&d.DedupID, &d.MasterEnrichedID, &d.Title, &d.Description, &d.Summary, &d.EventType, &severity,
		&eventDate, &d.RecordsAffected, &d.VictimOrganizationName, &d.VictimOrganizationIndustry,
		&d.AttackingEntityName, &d.AttackMethod, &d.IsAustralianEvent, &d.IsSpecificEvent,
		&d.ConfidenceScore, &d.AustralianRelevanceScore, &d.TotalDataSources,
		&d.ContributingRawEvents, &d.ContributingEnrichedEvents, &d.SimilarityScore,
		&d.DeduplicationMethod, &status, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan deduplicated_event: %w", err)
	}
	d.Severity = model.Severity(severity)
	d.Status = model.EventStatus(status)
	if eventDate.Valid {
		if t, err := time.Parse(time.RFC3339Nano, eventDate.String); err == nil {
			d.EventDate = &t
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		d.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		d.UpdatedAt = t
	}
	return &d, nil
}
