package cache

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"dicomviewer/internal/storage"
	"dicomviewer/pkg/platform/circuit"
)

// DefaultMaxItemBytes bounds the documents that are written to the cache.
const DefaultMaxItemBytes = 8 << 20

// CachingFetcher serves repeat fetches from a Store. Concurrent misses for
// the same location share a single call to the wrapped fetcher. Only
// successful fetches are cached.
type CachingFetcher struct {
	next         storage.Fetcher
	store        Store
	breaker      *circuit.Breaker
	group        singleflight.Group
	maxItemBytes int
	fetchTimeout time.Duration
	logger       *slog.Logger
	metrics      *Metrics
}

// Option configures a CachingFetcher.
type Option func(*CachingFetcher)

// WithBreaker replaces the default circuit breaker guarding the store.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *CachingFetcher) {
		if b != nil {
			c.breaker = b
		}
	}
}

// WithMaxItemBytes skips caching documents larger than n bytes.
func WithMaxItemBytes(n int) Option {
	return func(c *CachingFetcher) {
		if n > 0 {
			c.maxItemBytes = n
		}
	}
}

// WithFetchTimeout bounds a shared fetch. The fetch outlives any single
// caller's context, so this is the only limit on it besides the wrapped
// fetcher's own.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *CachingFetcher) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithLogger logs cache failures and breaker transitions.
func WithLogger(l *slog.Logger) Option {
	return func(c *CachingFetcher) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records cache metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *CachingFetcher) {
		c.metrics = m
	}
}

// NewCachingFetcher wraps next with store.
func NewCachingFetcher(next storage.Fetcher, store Store, opts ...Option) *CachingFetcher {
	c := &CachingFetcher{
		next:         next,
		store:        store,
		breaker:      circuit.New("document-cache"),
		maxItemBytes: DefaultMaxItemBytes,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns cached bytes when present, otherwise fetches through the
// wrapped fetcher. Each caller receives its own copy of the bytes and may
// stop waiting when its own context ends without failing the others
// waiting on the same location.
func (c *CachingFetcher) Fetch(ctx context.Context, loc storage.Location) ([]byte, error) {
	key := loc.String()
	if data, ok := c.lookup(ctx, key); ok {
		c.metrics.incHits()
		return data, nil
	}
	c.metrics.incMisses()

	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := c.fetchContext(ctx)
		defer cancel()
		data, err := c.next.Fetch(fetchCtx, loc)
		if err != nil {
			return nil, err
		}
		c.save(fetchCtx, key, data)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, storage.Unavailable("cache", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.metrics.incShared()
		}
		return bytes.Clone(res.Val.([]byte)), nil
	}
}

// fetchContext detaches the shared fetch from the caller that started it.
// Values such as the request ID and trace span carry over.
func (c *CachingFetcher) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if c.fetchTimeout > 0 {
		return context.WithTimeout(detached, c.fetchTimeout)
	}
	return context.WithCancel(detached)
}

func (c *CachingFetcher) lookup(ctx context.Context, key string) ([]byte, bool) {
	if !c.breaker.Allow() {
		return nil, false
	}
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.recordFailure(ctx, "cache read failed", key, err)
		return nil, false
	}
	c.recordSuccess(ctx)
	return data, ok
}

func (c *CachingFetcher) save(ctx context.Context, key string, data []byte) {
	if len(data) > c.maxItemBytes || !c.breaker.Allow() {
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.recordFailure(ctx, "cache write failed", key, err)
		return
	}
	c.recordSuccess(ctx)
}

func (c *CachingFetcher) recordFailure(ctx context.Context, msg, key string, err error) {
	c.metrics.incErrors()
	c.logger.WarnContext(ctx, msg, "key", key, "error", err)
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.metrics.setBreakerState(true)
		c.logger.WarnContext(ctx, "cache circuit opened, bypassing cache", "breaker", c.breaker.Name())
	}
}

func (c *CachingFetcher) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.metrics.setBreakerState(false)
		c.logger.InfoContext(ctx, "cache circuit closed", "breaker", c.breaker.Name())
	}
}
