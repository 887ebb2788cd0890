package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

// EntityStore persists Entity rows and their links to EnrichedEvents.
type EntityStore struct {
	db *sql.DB
}

// NewEntityStore returns an EntityStore backed by db.
func NewEntityStore(db *sql.DB) *EntityStore {
	return &EntityStore{db: db}
}

// FindOrCreate returns the ID of the Entity named e.EntityName,
// creating it if it does not already exist. entity_name is unique, so
// this is the single path entity resolution takes to avoid duplicate
// organisations/actors accumulating across runs.
func (s *EntityStore) FindOrCreate(ctx context.Context, e *model.Entity) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT entity_id FROM entities WHERE entity_name = ?`, e.EntityName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup entity by name: %w", err)
	}

	if e.EntityID == "" {
		e.EntityID = uuid.NewString()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entities (
			entity_id, entity_name, entity_type, industry, turnover, employee_count,
			is_australian, headquarters_location, website_url, confidence_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EntityID, e.EntityName, string(e.EntityType), e.Industry, e.Turnover, e.EmployeeCount,
		e.IsAustralian, e.HeadquartersLocation, e.WebsiteURL, e.ConfidenceScore,
	)
	if err != nil {
		return "", fmt.Errorf("insert entity: %w", err)
	}
	return e.EntityID, nil
}

// Get returns the Entity with the given ID.
func (s *EntityStore) Get(ctx context.Context, entityID string) (*model.Entity, error) {
	var (
		e             model.Entity
		entityType    string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT entity_id, entity_name, entity_type, industry, turnover, employee_count,
		       is_australian, headquarters_location, website_url, confidence_score
		FROM entities WHERE entity_id = ?`, entityID).Scan(
		&e.EntityID, &e.EntityName, &entityType, &e.Industry, &e.Turnover, &e.EmployeeCount,
		&e.IsAustralian, &e.HeadquartersLocation, &e.WebsiteURL, &e.ConfidenceScore,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entity: %w", err)
	}
	e.EntityType = model.EntityType(entityType)
	return &e, nil
}

// LinkToEnrichedEvent records rel, replacing any existing row for the
// same (enriched_id, entity_id, relationship_type).
func (s *EntityStore) LinkToEnrichedEvent(ctx context.Context, rel model.EnrichedEventEntities) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enriched_event_entities (enriched_id, entity_id, relationship_type, confidence)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (enriched_id, entity_id, relationship_type) DO UPDATE SET confidence = excluded.confidence`,
		rel.EnrichedID, rel.EntityID, string(rel.RelationshipType), rel.Confidence)
	if err != nil {
		return fmt.Errorf("link entity to enriched_event: %w", err)
	}
	return nil
}
