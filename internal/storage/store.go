// Package storage defines the boundary between the extraction core and the
// systems that hold document bytes.
package storage

import (
	"context"
	"fmt"
)

// Location addresses one document: Container is the bucket, directory or
// table partition; Key is the object name within it and may contain
// separators of its own.
type Location struct {
	Container string
	Key       string
}

func (l Location) String() string {
	return l.Container + "/" + l.Key
}

// Fetcher retrieves the full byte content of a document. Implementations
// return ErrNotFound for a missing document and honor ctx cancellation.
// Callers own the returned slice.
type Fetcher interface {
	Fetch(ctx context.Context, loc Location) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, loc Location) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, loc Location) ([]byte, error) {
	return f(ctx, loc)
}

// Unavailable wraps a backend failure so errors.Is(err, ErrUnavailable)
// holds while the cause stays reachable.
func Unavailable(backend string, err error) error {
	return fmt.Errorf("%s: %w: %w", backend, ErrUnavailable, err)
}
