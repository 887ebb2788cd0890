package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

func insertTestRawEvent(t *testing.T, ctx context.Context, store *RawEventStore) string {
	t.Helper()
	id, err := store.Insert(ctx, &model.RawEvent{
		SourceType: model.SourceNewsEvents,
		Title:      "ANZ Bank confirms data leak",
		SourceURL:  "https://example.com/anz-leak",
	})
	require.NoError(t, err)
	return id
}

func TestEnrichedEventStoreInsertAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	rawID := insertTestRawEvent(t, ctx, NewRawEventStore(db))

	store := NewEnrichedEventStore(db)
	e := &model.EnrichedEvent{
		RawID:                  rawID,
		Title:                  "ANZ Bank confirms data leak",
		Severity:               model.SeverityHigh,
		IsAustralianEvent:      true,
		IsSpecificEvent:        true,
		ConfidenceScore:        0.82,
		VictimOrganizationName: "ANZ Bank",
		Status:                 model.StatusActive,
	}

	id, err := store.Insert(ctx, e)
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rawID, got.RawID)
	assert.Equal(t, model.SeverityHigh, got.Severity)
	assert.True(t, got.IsAustralianEvent)
	assert.Equal(t, model.StatusActive, got.Status)
}

func TestEnrichedEventStoreActiveForDedupAndBackfill(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	rawStore := NewRawEventStore(db)
	store := NewEnrichedEventStore(db)

	rawID := insertTestRawEvent(t, ctx, rawStore)
	activeID, err := store.Insert(ctx, &model.EnrichedEvent{
		RawID: rawID, Title: "a", Severity: model.SeverityMedium,
		IsAustralianEvent: true, IsSpecificEvent: true, Status: model.StatusActive,
	})
	require.NoError(t, err)

	rawID2, err := rawStore.Insert(ctx, &model.RawEvent{
		SourceType: model.SourceWebSearch, Title: "b", SourceURL: "https://example.com/b",
	})
	require.NoError(t, err)
	_, err = store.Insert(ctx, &model.EnrichedEvent{
		RawID: rawID2, Title: "b", Severity: model.SeverityLow,
		IsAustralianEvent: true, IsSpecificEvent: true, Status: model.StatusRejected,
	})
	require.NoError(t, err)

	active, err := store.ActiveForDedup(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, activeID, active[0].EnrichedID)

	backfillCandidates, err := store.ActiveForBackfill(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, backfillCandidates, 1)

	require.NoError(t, store.ApplyPerplexityBackfill(ctx, activeID, map[string]any{"verified": true}))
	afterBackfill, err := store.ActiveForBackfill(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, afterBackfill)

	require.NoError(t, store.SetStatus(ctx, activeID, model.StatusSuperseded))
	stillActive, err := store.ActiveForDedup(ctx)
	require.NoError(t, err)
	assert.Empty(t, stillActive)
}

func TestEnrichedEventStoreActiveEventExists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	rawStore := NewRawEventStore(db)
	store := NewEnrichedEventStore(db)

	rawID := insertTestRawEvent(t, ctx, rawStore)
	_, err := store.Insert(ctx, &model.EnrichedEvent{
		RawID: rawID, Title: "a", Severity: model.SeverityMedium,
		IsAustralianEvent: true, IsSpecificEvent: true, Status: model.StatusActive,
		VictimOrganizationName: "ANZ Bank",
	})
	require.NoError(t, err)

	exists, err := store.ActiveEventExists(ctx, "ANZ Bank", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ActiveEventExists(ctx, "Commonwealth Bank", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}
