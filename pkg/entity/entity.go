// Package entity resolves the organizations, individuals, and threat
// actors a DeduplicatedEvent references into canonical Entity rows,
// enriching each with a classification and Australian-presence
// determination from a search-grounded reasoning capability.
package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/model"
)

// Store is the narrow persistence contract this package needs;
// storage.EntityStore satisfies it structurally.
type Store interface {
	FindOrCreate(ctx context.Context, e *model.Entity) (string, error)
	LinkToEnrichedEvent(ctx context.Context, rel model.EnrichedEventEntities) error
}

// Mention is one entity reference surfaced by Stage 2 extraction,
// awaiting resolution into a canonical Entity row.
type Mention struct {
	Name             string
	RelationshipType model.RelationshipType
	Confidence       float64
}

// wireDetails mirrors the JSON shape the reasoning capability returns.
type wireDetails struct {
	EntityType           string   `json:"entity_type"`
	Industry             string   `json:"industry"`
	Turnover             string   `json:"turnover"`
	EmployeeCount        *int64   `json:"employee_count"`
	IsAustralian         bool     `json:"is_australian"`
	HeadquartersLocation string   `json:"headquarters_location"`
	WebsiteURL           string   `json:"website_url"`
	ConfidenceScore      float64  `json:"confidence_score"`
}

const detailsSchema = `{
  "type": "object",
  "properties": {
    "entity_type": {"type": "string", "enum": ["government", "business", "not-for-profit", "individual", "threat-actor", "other"]},
    "industry": {"type": "string"},
    "turnover": {"type": "string"},
    "employee_count": {"type": ["integer", "null"]},
    "is_australian": {"type": "boolean"},
    "headquarters_location": {"type": "string"},
    "website_url": {"type": "string"},
    "confidence_score": {"type": "number"}
  },
  "required": ["entity_type", "is_australian", "confidence_score"]
}`

const detailsSystemPrompt = `You classify named entities referenced by Australian cyber security incidents. Respond only with JSON matching the given schema.`

// Enricher resolves Mentions into canonical Entity rows, enriching
// newly-created entities via an injected reasoning capability and
// reusing any entity already on file unmodified. The classification
// call is made for every mention, including names already on file.
type Enricher struct {
	store     Store
	reasoning capability.ReasoningLLM
	retrier   func(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewEnricher returns an Enricher backed by store and reasoning. retry
// wraps each classification call with C2 retry/circuit-breaker
// semantics; pass nil to disable retries (e.g. in tests).
func NewEnricher(store Store, reasoning capability.ReasoningLLM, retry func(ctx context.Context, fn func(ctx context.Context) error) error) *Enricher {
	if retry == nil {
		retry = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Enricher{store: store, reasoning: reasoning, retrier: retry}
}

// Resolve finds-or-creates the Entity for each mention and links it to
// enrichedID, returning the resolved entity IDs in mention order. A
// mention with an empty or "Unknown" name is skipped silently.
func (e *Enricher) Resolve(ctx context.Context, enrichedID string, mentions []Mention) ([]string, error) {
	ids := make([]string, 0, len(mentions))
	for _, m := range mentions {
		if m.Name == "" || m.Name == "Unknown" {
			continue
		}

		id, err := e.resolveOne(ctx, m.Name)
		if err != nil {
			return ids, fmt.Errorf("resolve entity %q: %w", m.Name, err)
		}

		if err := e.store.LinkToEnrichedEvent(ctx, model.EnrichedEventEntities{
			EnrichedID:       enrichedID,
			EntityID:         id,
			RelationshipType: m.RelationshipType,
			Confidence:       m.Confidence,
		}); err != nil {
			return ids, fmt.Errorf("link entity %q to %s: %w", m.Name, enrichedID, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// resolveOne finds-or-creates the Entity named name. The name is
// classified via the reasoning capability before the lookup, so a
// brand new Entity is persisted enriched; for a name already on file,
// FindOrCreate's unique-name lookup returns the existing Entity
// unmodified and the classification result is discarded.
func (e *Enricher) resolveOne(ctx context.Context, name string) (string, error) {
	candidate := &model.Entity{
		EntityName:      name,
		EntityType:      model.EntityOther,
		ConfidenceScore: 0.5,
	}

	if details := e.classify(ctx, name); details != nil {
		candidate.EntityType = normaliseEntityType(details.EntityType)
		candidate.Industry = details.Industry
		candidate.Turnover = details.Turnover
		candidate.EmployeeCount = details.EmployeeCount
		candidate.IsAustralian = details.IsAustralian
		candidate.HeadquartersLocation = details.HeadquartersLocation
		candidate.WebsiteURL = details.WebsiteURL
		candidate.ConfidenceScore = details.ConfidenceScore
	}

	return e.store.FindOrCreate(ctx, candidate)
}

// classify asks the reasoning capability to categorise name, returning
// nil if the capability is unconfigured, the call fails, or the
// response cannot be parsed — callers fall back to conservative
// defaults in that case rather than failing entity resolution outright.
func (e *Enricher) classify(ctx context.Context, name string) *wireDetails {
	if e.reasoning == nil {
		return nil
	}

	userPrompt := fmt.Sprintf("Classify the entity %q: its type, industry, approximate size, whether it is Australian, headquarters, and website.", name)

	var raw string
	err := e.retrier(ctx, func(ctx context.Context) error {
		r, err := e.reasoning.Complete(ctx, detailsSystemPrompt, userPrompt, detailsSchema)
		if err != nil {
			return err
		}
		raw = r
		return nil
	})
	if err != nil {
		slog.Warn("entity classification call failed, using defaults", "entity", name, "error", err)
		return nil
	}

	var details wireDetails
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		slog.Warn("entity classification response was not valid JSON, using defaults", "entity", name, "error", err)
		return nil
	}
	return &details
}

// normaliseEntityType maps a wire-level entity type string onto the
// closed model.EntityType enum, defaulting to EntityOther for any
// value outside the known set rather than persisting an invalid type.
func normaliseEntityType(s string) model.EntityType {
	switch model.EntityType(s) {
	case model.EntityGovernment, model.EntityBusiness, model.EntityNotForProfit, model.EntityIndividual, model.EntityThreatActor:
		return model.EntityType(s)
	default:
		return model.EntityOther
	}
}
