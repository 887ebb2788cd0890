package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitAdmitsWithinPerSecondLimit(t *testing.T) {
	r := NewRegistry()
	r.SetLimit("news-events", 300, 3)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Wait(ctx, "news-events"))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWaitThrottlesPastPerSecondLimit(t *testing.T) {
	r := NewRegistry()
	r.SetLimit("llm-search", 300, 2)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		require.NoError(t, r.Wait(ctx, "llm-search"))
	}

	start := time.Now()
	require.NoError(t, r.Wait(ctx, "llm-search"))
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
}

func TestWaitRespectsPerMinuteLimit(t *testing.T) {
	r := NewRegistry()
	r.SetLimit("web-search", 2, 100)

	ctx := context.Background()
	require.NoError(t, r.Wait(ctx, "web-search"))
	require.NoError(t, r.Wait(ctx, "web-search"))

	cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := r.Wait(cctx, "web-search")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServicesAreIndependent(t *testing.T) {
	r := NewRegistry()
	r.SetLimit("a", 1, 1)
	r.SetLimit("b", 100, 100)

	ctx := context.Background()
	require.NoError(t, r.Wait(ctx, "a"))

	start := time.Now()
	require.NoError(t, r.Wait(ctx, "b"))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitCancelledByContext(t *testing.T) {
	r := NewRegistry()
	r.SetLimit("x", 1, 1)

	ctx := context.Background()
	require.NoError(t, r.Wait(ctx, "x"))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	err := r.Wait(cctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetLimitLastCallWinsBeforeFirstUse(t *testing.T) {
	r := NewRegistry()
	r.SetLimit("y", 10, 10)
	r.SetLimit("y", 20, 20)

	sl := r.serviceLocked("y")
	assert.Equal(t, Limits{PerSecond: 20, PerMinute: 20}, sl.limits)
}
