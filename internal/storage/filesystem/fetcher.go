// Package filesystem serves documents from a directory tree. Containers are
// top-level directories and keys are slash-separated paths below them.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"dicomviewer/internal/storage"
)

// Fetcher reads documents below a root directory. Lookups cannot escape the
// root, including through symlinks.
type Fetcher struct {
	root     *os.Root
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxBytes rejects documents larger than n bytes. Zero disables the cap.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// New opens dir as the fetcher's root.
func New(dir string, opts ...Option) (*Fetcher, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open storage root %s: %w", dir, err)
	}
	f := &Fetcher{root: root}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Close releases the root directory handle.
func (f *Fetcher) Close() error {
	return f.root.Close()
}

// Fetch reads the document at container/key.
func (f *Fetcher) Fetch(ctx context.Context, loc storage.Location) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.Unavailable("filesystem", err)
	}
	name := path.Join(loc.Container, loc.Key)
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("document %s outside storage root: %w", loc, storage.ErrNotFound)
	}

	file, err := f.root.Open(filepath.FromSlash(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("document %s: %w", loc, storage.ErrNotFound)
		}
		return nil, storage.Unavailable("filesystem", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, storage.Unavailable("filesystem", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("document %s is a directory: %w", loc, storage.ErrNotFound)
	}
	if f.maxBytes > 0 && info.Size() > f.maxBytes {
		return nil, storage.Unavailable("filesystem", fmt.Errorf("document %s is %d bytes, limit %d", loc, info.Size(), f.maxBytes))
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, storage.Unavailable("filesystem", err)
	}
	return data, nil
}
