package dedup

import (
	"context"
	"fmt"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

// Writer persists a Merged record together with its contribution and
// source mapping rows.
type Writer interface {
	Write(ctx context.Context, dedup *model.DeduplicatedEvent, mappings []model.EventDeduplicationMap, sources []model.DeduplicatedEventSources) (string, error)
}

// Store wraps a Writer with the mapping logic that turns a Merged
// result into the three rows DeduplicatedEventStore.Write expects.
type Store struct {
	writer Writer
}

// NewStore builds a Store backed by writer.
func NewStore(writer Writer) *Store {
	return &Store{writer: writer}
}

// Persist writes merged as a DeduplicatedEvent, marking the master
// member's contribution as primary and every other member as
// supporting, per spec §4.5 step 3.
func (s *Store) Persist(ctx context.Context, merged Merged) (string, error) {
	dedup := &model.DeduplicatedEvent{
		MasterEnrichedID:           merged.Master.EnrichedID,
		Title:                      merged.Title,
		Description:                merged.Description,
		EventType:                  merged.EventType,
		Severity:                   model.Severity(merged.Severity),
		EventDate:                  merged.EventDate,
		RecordsAffected:            merged.RecordsAffected,
		VictimOrganizationName:     merged.VictimOrganizationName,
		VictimOrganizationIndustry: merged.VictimOrganizationIndustry,
		AttackingEntityName:        merged.AttackingEntityName,
		AttackMethod:               merged.AttackMethod,
		IsAustralianEvent:          merged.IsAustralianEvent,
		IsSpecificEvent:            merged.IsSpecificEvent,
		ConfidenceScore:            merged.ConfidenceScore,
		AustralianRelevanceScore:   merged.AustralianRelevanceScore,
		TotalDataSources:           merged.TotalDataSources,
		ContributingRawEvents:      merged.ContributingRawEvents,
		ContributingEnrichedEvents: merged.ContributingEnrichedEvents,
		SimilarityScore:            merged.SimilarityScore,
		DeduplicationMethod:        "content_similarity",
		Status:                     model.StatusActive,
	}

	mappings := make([]model.EventDeduplicationMap, 0, len(merged.Others)+1)
	mappings = append(mappings, model.EventDeduplicationMap{
		RawID:              merged.Master.RawID,
		EnrichedID:         merged.Master.EnrichedID,
		ContributionType:   model.ContributionPrimary,
		SimilarityToMaster: 1.0,
		Weight:             1.0,
	})
	for _, other := range merged.Others {
		mappings = append(mappings, model.EventDeduplicationMap{
			RawID:              other.RawID,
			EnrichedID:         other.EnrichedID,
			ContributionType:   model.ContributionSupporting,
			SimilarityToMaster: titleSimilarity(merged.Master.Title, other.Title),
			Weight:             0.5,
		})
	}

	sources := make([]model.DeduplicatedEventSources, 0, len(merged.SourcesByURL))
	for url, c := range merged.SourcesByURL {
		sources = append(sources, model.DeduplicatedEventSources{
			SourceURL:        url,
			SourceType:       model.SourceType(c.SourceType),
			CredibilityScore: c.ConfidenceScore,
			ContentSnippet:   c.Summary,
			DiscoveredAt:     c.DiscoveredAt,
		})
	}

	dedupID, err := s.writer.Write(ctx, dedup, mappings, sources)
	if err != nil {
		return "", fmt.Errorf("persist deduplicated event: %w", err)
	}
	return dedupID, nil
}
