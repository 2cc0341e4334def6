package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketStore(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := NewTokenBucketStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := range 3 {
		res, err := store.Allow(ctx, "client", 3, 3*time.Second)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "burst request %d", i)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := store.Allow(ctx, "client", 3, 3*time.Second)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Second, res.RetryAfter)

	now = now.Add(time.Second)
	res, err = store.Allow(ctx, "client", 3, 3*time.Second)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "one token refills per interval")

	assert.Equal(t, 0, store.Prune())
	now = now.Add(time.Minute)
	assert.Equal(t, 1, store.Prune())
}
