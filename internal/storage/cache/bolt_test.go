package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBolt(t *testing.T, ttl time.Duration) *BoltStore {
	t.Helper()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStore_RoundTripAndTTL(t *testing.T) {
	ctx := context.Background()
	store := openBolt(t, time.Minute)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "studies/ct/1.dcm", []byte("DICM")))
	got, ok, err := store.Get(ctx, "studies/ct/1.dcm")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("DICM"), got)

	now = now.Add(time.Minute)
	_, ok, err = store.Get(ctx, "studies/ct/1.dcm")
	require.NoError(t, err)
	assert.False(t, ok, "entry expires after the TTL")
}

func TestBoltStore_EmptyDocumentIsAHit(t *testing.T) {
	ctx := context.Background()
	store := openBolt(t, time.Minute)

	require.NoError(t, store.Set(ctx, "empty", nil))
	got, ok, err := store.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestBoltStore_GC(t *testing.T) {
	ctx := context.Background()
	store := openBolt(t, time.Minute)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "old", []byte("a")))
	now = now.Add(30 * time.Second)
	require.NoError(t, store.Set(ctx, "new", []byte("b")))
	now = now.Add(45 * time.Second)

	removed, err := store.GC()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok, err := store.Get(ctx, "new")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBoltStore_MissAndCancelled(t *testing.T) {
	store := openBolt(t, time.Minute)
	_, ok, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = store.Get(ctx, "absent")
	assert.ErrorIs(t, err, context.Canceled)
}
