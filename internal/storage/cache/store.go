// Package cache decorates a storage.Fetcher with a byte cache. Cache
// failures never fail a fetch: the decorator falls through to the wrapped
// fetcher and stops consulting the cache while its circuit is open.
package cache

import "context"

// Store holds document bytes by key.
type Store interface {
	// Get returns the cached bytes. ok is false on a miss.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte) error
}
