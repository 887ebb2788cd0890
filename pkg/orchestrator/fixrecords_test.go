package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

type stubRecordsAffectedSource struct {
	events  []*model.DeduplicatedEvent
	updates map[string]*int64
}

func (s *stubRecordsAffectedSource) ActiveWithRecordsAffected(ctx context.Context) ([]*model.DeduplicatedEvent, error) {
	return s.events, nil
}
func (s *stubRecordsAffectedSource) UpdateRecordsAffected(ctx context.Context, dedupID string, value *int64) error {
	if s.updates == nil {
		s.updates = map[string]*int64{}
	}
	s.updates[dedupID] = value
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

func TestFixRecordsReportsButDoesNotApplyWithoutApplyFlag(t *testing.T) {
	store := &stubRecordsAffectedSource{events: []*model.DeduplicatedEvent{
		{DedupID: "d1", Title: "Generic news roundup", RecordsAffected: int64Ptr(500_000_000)},
	}}

	adjustments, err := FixRecords(context.Background(), store, false)

	require.NoError(t, err)
	require.Len(t, adjustments, 1)
	assert.Equal(t, "d1", adjustments[0].DedupID)
	assert.Empty(t, store.updates, "dry run must not write")
}

func TestFixRecordsAppliesCorrectionWhenApplyIsTrue(t *testing.T) {
	store := &stubRecordsAffectedSource{events: []*model.DeduplicatedEvent{
		{DedupID: "d1", Title: "Generic news roundup", RecordsAffected: int64Ptr(500_000_000)},
	}}

	adjustments, err := FixRecords(context.Background(), store, true)

	require.NoError(t, err)
	require.Len(t, adjustments, 1)
	require.Contains(t, store.updates, "d1")
	assert.Nil(t, store.updates["d1"])
}

func TestFixRecordsLeavesValidValuesUntouched(t *testing.T) {
	store := &stubRecordsAffectedSource{events: []*model.DeduplicatedEvent{
		{DedupID: "d1", Title: "Optus data breach", RecordsAffected: int64Ptr(9_800_000)},
	}}

	adjustments, err := FixRecords(context.Background(), store, true)

	require.NoError(t, err)
	assert.Empty(t, adjustments)
	assert.Empty(t, store.updates)
}
