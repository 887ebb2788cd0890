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

// EnrichedEventStore persists and retrieves EnrichedEvent rows.
type EnrichedEventStore struct {
	db *sql.DB
}

// NewEnrichedEventStore returns an EnrichedEventStore backed by db.
func NewEnrichedEventStore(db *sql.DB) *EnrichedEventStore {
	return &EnrichedEventStore{db: db}
}

// Insert writes a new EnrichedEvent, assigning EnrichedID/timestamps if
// unset. Standard inserts must satisfy IsAustralianEvent && IsSpecificEvent;
// callers performing a manual override are responsible for that decision
// and this method does not re-check it.
func (s *EnrichedEventStore) Insert(ctx context.Context, e *model.EnrichedEvent) (string, error) {
	if e.EnrichedID == "" {
		e.EnrichedID = uuid.NewString()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	perplexityJSON, err := json.Marshal(e.PerplexityEnrichmentData)
	if err != nil {
		return "", fmt.Errorf("marshal perplexity_enrichment_data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO enriched_events (
			enriched_id, raw_id, title, description, summary, event_type, severity,
			event_date, records_affected, is_australian_event, is_specific_event,
			confidence_score, australian_relevance_score, perplexity_validated,
			perplexity_enrichment_data, attacking_entity_name, attack_method,
			victim_organization_name, victim_organization_industry, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EnrichedID, e.RawID, e.Title, e.Description, e.Summary, e.EventType, string(e.Severity),
		nullableTime(e.EventDate), e.RecordsAffected, e.IsAustralianEvent, e.IsSpecificEvent,
		e.ConfidenceScore, e.AustralianRelevanceScore, e.PerplexityValidated,
		string(perplexityJSON), e.AttackingEntityName, e.AttackMethod,
		e.VictimOrganizationName, e.VictimOrganizationIndustry, string(e.Status),
		e.CreatedAt.Format(time.RFC3339Nano), e.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert enriched_event: %w", err)
	}
	return e.EnrichedID, nil
}

// Get returns the EnrichedEvent with the given ID.
func (s *EnrichedEventStore) Get(ctx context.Context, enrichedID string) (*model.EnrichedEvent, error) {
	row := s.db.QueryRowContext(ctx, enrichedEventSelect+` WHERE enriched_id = ?`, enrichedID)
	return scanEnrichedEvent(row)
}

// ActiveForBackfill returns Active EnrichedEvents not yet validated by
// the Perplexity backfill pass, ordered by creation time.
func (s *EnrichedEventStore) ActiveForBackfill(ctx context.Context, limit int) ([]*model.EnrichedEvent, error) {
	rows, err := s.db.QueryContext(ctx, enrichedEventSelect+`
		WHERE status = ? AND perplexity_validated = 0 ORDER BY created_at ASC LIMIT ?`,
		string(model.StatusActive), limit)
	if err != nil {
		return nil, fmt.Errorf("query backfill candidates: %w", err)
	}
	defer rows.Close()

	var out []*model.EnrichedEvent
	for rows.Next() {
		e, err := scanEnrichedEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ActiveForDedup returns every Active EnrichedEvent, used as the input
// set for the deduplication engine (C11).
func (s *EnrichedEventStore) ActiveForDedup(ctx context.Context) ([]*model.EnrichedEvent, error) {
	rows, err := s.db.QueryContext(ctx, enrichedEventSelect+` WHERE status = ? ORDER BY created_at ASC`, string(model.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("query active enriched_events: %w", err)
	}
	defer rows.Close()

	var out []*model.EnrichedEvent
	for rows.Next() {
		e, err := scanEnrichedEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetStatus transitions enrichedID to status (used to mark Superseded
// when a group of EnrichedEvents is merged by deduplication).
func (s *EnrichedEventStore) SetStatus(ctx context.Context, enrichedID string, status model.EventStatus) error {
	_, err := s.db.ExecContext(ctx, `UPDATE enriched_events SET status = ?, updated_at = ? WHERE enriched_id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339Nano), enrichedID)
	if err != nil {
		return fmt.Errorf("set enriched_event status: %w", err)
	}
	return nil
}

// ApplyPerplexityBackfill records a Perplexity-sourced enrichment
// update, marking the event validated.
func (s *EnrichedEventStore) ApplyPerplexityBackfill(ctx context.Context, enrichedID string, data map[string]any) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal perplexity backfill data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE enriched_events
		SET perplexity_validated = 1, perplexity_enrichment_data = ?, updated_at = ?
		WHERE enriched_id = ?`, string(blob), time.Now().UTC().Format(time.RFC3339Nano), enrichedID)
	if err != nil {
		return fmt.Errorf("apply perplexity backfill: %w", err)
	}
	return nil
}

// ActiveEventExists reports whether an Active EnrichedEvent already
// exists for victimOrganization on eventDate, used by Stage 4's
// duplicate-check rule. A nil eventDate matches rows with no event_date.
func (s *EnrichedEventStore) ActiveEventExists(ctx context.Context, victimOrganization string, eventDate *time.Time) (bool, error) {
	var count int
	var err error
	if eventDate == nil {
		err = s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM enriched_events
			WHERE status = ? AND victim_organization_name = ? AND event_date IS NULL`,
			string(model.StatusActive), victimOrganization).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM enriched_events
			WHERE status = ? AND victim_organization_name = ? AND event_date = ?`,
			string(model.StatusActive), victimOrganization, eventDate.Format(time.RFC3339Nano)).Scan(&count)
	}
	if err != nil {
		return false, fmt.Errorf("query active event existence: %w", err)
	}
	return count > 0, nil
}

const enrichedEventSelect = `
	SELECT enriched_id, raw_id, title, description, summary, event_type, severity,
	       event_date, records_affected, is_australian_event, is_specific_event,
	       confidence_score, australian_relevance_score, perplexity_validated,
	       perplexity_enrichment_data, attacking_entity_name, attack_method,
	       victim_organization_name, victim_organization_industry, status,
	       created_at, updated_at
	FROM enriched_events`

func scanEnrichedEvent(r rowScanner) (*model.EnrichedEvent, error) {
	var (
		e             model.EnrichedEvent
		severity      string
		eventDate     sql.NullString
		perplexityJSON string
		status        string
		createdAt     string
		updatedAt     string
	)
	err := r.Scan(
		&e.EnrichedID, &e.RawID, &e.Title, &e.Description, &e.Summary, &e.EventType, &severity,
		&eventDate, &e.RecordsAffected, &e.IsAustralianEvent, &e.IsSpecificEvent,
		&e.ConfidenceScore, &e.AustralianRelevanceScore, &e.PerplexityValidated,
		&perplexityJSON, &e.AttackingEntityName, &e.AttackMethod,
		&e.VictimOrganizationName, &e.VictimOrganizationIndustry, &status,
		&createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan enriched_event: %w", err)
	}

	e.Severity = model.Severity(severity)
	e.Status = model.EventStatus(status)
	if eventDate.Valid {
		if t, err := time.Parse(time.RFC3339Nano, eventDate.String); err == nil {
			e.EventDate = &t
		}
	}
	if perplexityJSON != "" {
		_ = json.Unmarshal([]byte(perplexityJSON), &e.PerplexityEnrichmentData)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		e.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		e.UpdatedAt = t
	}
	return &e, nil
}
