package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

func TestAuditTrailStoreInsertAndForRawEvent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	rawID := insertTestRawEvent(t, ctx, NewRawEventStore(db))

	store := NewAuditTrailStore(db)
	_, err := store.Insert(ctx, &model.EnrichmentAuditTrail{
		RawID:           rawID,
		FinalDecision:   model.DecisionAutoAccept,
		FinalConfidence: 0.87,
		StartedAt:       time.Now().Add(-time.Second),
		CompletedAt:     time.Now(),
	})
	require.NoError(t, err)

	rows, err := store.ForRawEvent(ctx, rawID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.DecisionAutoAccept, rows[0].FinalDecision)
}
