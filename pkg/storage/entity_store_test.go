package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

func TestEntityStoreFindOrCreateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewEntityStore(db)

	first, err := store.FindOrCreate(ctx, &model.Entity{
		EntityName: "ANZ Bank",
		EntityType: model.EntityBusiness,
		IsAustralian: true,
	})
	require.NoError(t, err)

	second, err := store.FindOrCreate(ctx, &model.Entity{
		EntityName: "ANZ Bank",
		EntityType: model.EntityBusiness,
	})
	require.NoError(t, err)

	assert.Equal(t, first, second)

	got, err := store.Get(ctx, first)
	require.NoError(t, err)
	assert.True(t, got.IsAustralian)
}

func TestEntityStoreLinkToEnrichedEvent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rawID := insertTestRawEvent(t, ctx, NewRawEventStore(db))
	enrichedID, err := NewEnrichedEventStore(db).Insert(ctx, &model.EnrichedEvent{
		RawID: rawID, Title: "t", Severity: model.SeverityLow,
		IsAustralianEvent: true, IsSpecificEvent: true, Status: model.StatusActive,
	})
	require.NoError(t, err)

	entityStore := NewEntityStore(db)
	entityID, err := entityStore.FindOrCreate(ctx, &model.Entity{EntityName: "ANZ Bank", EntityType: model.EntityBusiness})
	require.NoError(t, err)

	err = entityStore.LinkToEnrichedEvent(ctx, model.EnrichedEventEntities{
		EnrichedID: enrichedID, EntityID: entityID, RelationshipType: model.RelationshipVictim, Confidence: 0.9,
	})
	require.NoError(t, err)

	// re-linking the same relationship updates confidence instead of conflicting.
	err = entityStore.LinkToEnrichedEvent(ctx, model.EnrichedEventEntities{
		EnrichedID: enrichedID, EntityID: entityID, RelationshipType: model.RelationshipVictim, Confidence: 0.95,
	})
	require.NoError(t, err)
}
