package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dicomviewer/internal/storage"
)

func newTestFetcher(t *testing.T, opts ...Option) (*Fetcher, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "studies", "ct"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "studies", "ct", "1.dcm"), []byte("DICM-body"), 0o644))

	f, err := New(dir, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f, dir
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFetcher(t)

	t.Run("existing document", func(t *testing.T) {
		got, err := f.Fetch(ctx, storage.Location{Container: "studies", Key: "ct/1.dcm"})
		require.NoError(t, err)
		assert.Equal(t, []byte("DICM-body"), got)
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := f.Fetch(ctx, storage.Location{Container: "missing-bucket", Key: "missing.dat"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("directory is not a document", func(t *testing.T) {
		_, err := f.Fetch(ctx, storage.Location{Container: "studies", Key: "ct"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("traversal stays inside root", func(t *testing.T) {
		_, err := f.Fetch(ctx, storage.Location{Container: "studies", Key: "../../etc/passwd"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.Fetch(cctx, storage.Location{Container: "studies", Key: "ct/1.dcm"})
		assert.ErrorIs(t, err, storage.ErrUnavailable)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFetch_MaxBytes(t *testing.T) {
	f, _ := newTestFetcher(t, WithMaxBytes(4))
	_, err := f.Fetch(context.Background(), storage.Location{Container: "studies", Key: "ct/1.dcm"})
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
