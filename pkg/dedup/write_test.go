package dedup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

type captureWriter struct {
	dedup    *model.DeduplicatedEvent
	mappings []model.EventDeduplicationMap
	sources  []model.DeduplicatedEventSources
}

func (c *captureWriter) Write(ctx context.Context, dedup *model.DeduplicatedEvent, mappings []model.EventDeduplicationMap, sources []model.DeduplicatedEventSources) (string, error) {
	c.dedup = dedup
	c.mappings = mappings
	c.sources = sources
	return "dedup-1", nil
}

func TestPersistMarksMasterPrimaryAndOthersSupporting(t *testing.T) {
	merged := Merged{
		Master: Candidate{EnrichedID: "e1", RawID: "r1", Title: "Medibank ransomware attack"},
		Others: []Candidate{
			{EnrichedID: "e2", RawID: "r2", Title: "Medibank ransomware incident"},
		},
		Title:                  "Medibank ransomware attack",
		VictimOrganizationName: "Medibank",
		SourcesByURL: map[string]Candidate{
			"https://a.example": {SourceURL: "https://a.example", SourceType: "NewsEvents", ConfidenceScore: 0.8},
		},
	}

	writer := &captureWriter{}
	store := NewStore(writer)

	dedupID, err := store.Persist(context.Background(), merged)
	require.NoError(t, err)
	assert.Equal(t, "dedup-1", dedupID)

	require.Len(t, writer.mappings, 2)
	assert.Equal(t, model.ContributionPrimary, writer.mappings[0].ContributionType)
	assert.Equal(t, "e1", writer.mappings[0].EnrichedID)
	assert.Equal(t, model.ContributionSupporting, writer.mappings[1].ContributionType)
	assert.Equal(t, "e2", writer.mappings[1].EnrichedID)

	require.Len(t, writer.sources, 1)
	assert.Equal(t, "https://a.example", writer.sources[0].SourceURL)

	assert.Equal(t, model.StatusActive, writer.dedup.Status)
	assert.Equal(t, "e1", writer.dedup.MasterEnrichedID)
}

func TestPersistPropagatesWriterError(t *testing.T) {
	failing := failingWriter{}
	store := NewStore(failing)

	merged := Merged{Master: Candidate{EnrichedID: "e1"}}
	_, err := store.Persist(context.Background(), merged)
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write(ctx context.Context, dedup *model.DeduplicatedEvent, mappings []model.EventDeduplicationMap, sources []model.DeduplicatedEventSources) (string, error) {
	return "", assertError{}
}

type assertError struct{}

func (assertError) Error() string { return "write failed" }
