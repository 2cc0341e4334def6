package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"dicomviewer/internal/audit"
	auditkafka "dicomviewer/internal/audit/kafka"
	metadatahandler "dicomviewer/internal/metadata/handler"
	"dicomviewer/internal/platform/config"
	"dicomviewer/internal/platform/kafka"
	"dicomviewer/internal/platform/postgres"
	"dicomviewer/internal/platform/redis"
	"dicomviewer/internal/ratelimit"
	"dicomviewer/internal/storage"
	"dicomviewer/internal/storage/cache"
	"dicomviewer/internal/storage/filesystem"
	pgstorage "dicomviewer/internal/storage/postgres"
	s3storage "dicomviewer/internal/storage/s3"
	sqlitestorage "dicomviewer/internal/storage/sqlite"
)

// Collectors register with the default Prometheus registry, so each set is
// created once per process.
var (
	cacheMetrics     = sync.OnceValue(cache.NewMetrics)
	rateLimitMetrics = sync.OnceValue(ratelimit.NewMetrics)
)

// cleanup runs registered shutdown hooks in reverse order.
type cleanup struct {
	hooks []namedHook
}

type namedHook struct {
	name string
	fn   func(context.Context) error
}

func (c *cleanup) add(name string, fn func(context.Context) error) {
	c.hooks = append(c.hooks, namedHook{name: name, fn: fn})
}

func (c *cleanup) run(log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := len(c.hooks) - 1; i >= 0; i-- {
		h := c.hooks[i]
		if err := h.fn(ctx); err != nil {
			log.Warn("shutdown hook failed", "component", h.name, "error", err)
		}
	}
}

func closeFn(close func() error) func(context.Context) error {
	return func(context.Context) error { return close() }
}

// buildFetcher selects the document source and wraps it in the optional cache.
func buildFetcher(ctx context.Context, cfg config.Config, log *slog.Logger, closers *cleanup) (storage.Fetcher, error) {
	var base storage.Fetcher
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		base = storage.NewInMemoryFetcher()
	case config.StorageFilesystem:
		fs, err := filesystem.New(cfg.Storage.FilesystemRoot, filesystem.WithMaxBytes(cfg.Storage.MaxDocumentBytes))
		if err != nil {
			return nil, err
		}
		closers.add("filesystem", closeFn(fs.Close))
		base = fs
	case config.StorageS3:
		f, err := s3storage.NewFromConfig(ctx, s3storage.Config{
			Region:      cfg.Storage.S3Region,
			Endpoint:    cfg.Storage.S3Endpoint,
			PathStyle:   cfg.Storage.S3PathStyle,
			MaxAttempts: cfg.Storage.S3MaxAttempts,
			MaxBytes:    cfg.Storage.MaxDocumentBytes,
		})
		if err != nil {
			return nil, err
		}
		base = f
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		closers.add("postgres", closeFn(db.Close))
		base = pgstorage.New(db,
			pgstorage.WithTable(cfg.Storage.PostgresTable),
			pgstorage.WithMaxBytes(cfg.Storage.MaxDocumentBytes),
		)
	case config.StorageSQLite:
		db, err := sqlitestorage.Open(ctx, cfg.Storage.SQLitePath, sqlitestorage.DefaultTable)
		if err != nil {
			return nil, err
		}
		closers.add("sqlite", closeFn(db.Close))
		base = sqlitestorage.New(db, sqlitestorage.WithMaxBytes(cfg.Storage.MaxDocumentBytes))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	var store cache.Store
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return base, nil
	case config.CacheMemory:
		store = cache.NewMemoryStore(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	case config.CacheRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		closers.add("redis", closeFn(client.Close))
		store = cache.NewRedisStore(client, cfg.Cache.TTL, "dicomviewer:doc:")
	case config.CacheBolt:
		bs, err := cache.OpenBoltStore(cfg.Cache.BoltPath, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		closers.add("bolt cache", closeFn(bs.Close))
		go pruneLoop(ctx, cfg.Cache.TTL, func() {
			if _, err := bs.GC(); err != nil {
				log.WarnContext(ctx, "bolt cache gc failed", "error", err)
			}
		})
		store = bs
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	return cache.NewCachingFetcher(base, store,
		cache.WithMaxItemBytes(cfg.Cache.MaxItemBytes),
		cache.WithFetchTimeout(cfg.Server.RequestTimeout),
		cache.WithLogger(log),
		cache.WithMetrics(cacheMetrics()),
	), nil
}

// buildAuditor returns the extraction audit publisher, or nil when disabled.
func buildAuditor(ctx context.Context, cfg config.Config, log *slog.Logger, closers *cleanup) (metadatahandler.Auditor, error) {
	var store audit.Store
	switch cfg.Audit.Sink {
	case config.AuditNone:
		return nil, nil
	case config.AuditLog:
		store = audit.NewLogStore(log)
	case config.AuditKafka:
		client, err := kafka.New(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureTopic(ctx, cfg.Kafka.Topic, 3, 1); err != nil {
			client.Close()
			return nil, err
		}
		closers.add("kafka", func(context.Context) error {
			client.Close()
			return nil
		})
		store = auditkafka.NewStore(client, cfg.Kafka.Topic, auditkafka.WithEncoding(cfg.Audit.Encoding))
	default:
		return nil, fmt.Errorf("unknown audit sink %q", cfg.Audit.Sink)
	}

	publisher := audit.NewPublisher(store,
		audit.WithAsyncBuffer(cfg.Audit.BufferSize),
		audit.WithLogger(log),
	)
	closers.add("audit", func(context.Context) error {
		publisher.Close()
		return nil
	})
	return publisher, nil
}

// buildRateLimiter returns the per-client limiter for the extraction route, or
// nil when limiting is disabled.
func buildRateLimiter(ctx context.Context, cfg config.Config, log *slog.Logger, closers *cleanup) (func(http.Handler) http.Handler, error) {
	rl := cfg.RateLimit
	if rl.Requests <= 0 {
		return nil, nil
	}

	var store ratelimit.Store
	switch rl.Backend {
	case "memory":
		mem := ratelimit.NewInMemoryStore()
		go pruneLoop(ctx, rl.Window, func() { mem.Prune(rl.Window) })
		store = mem
	case "token":
		tb := ratelimit.NewTokenBucketStore()
		go pruneLoop(ctx, rl.Window, func() { tb.Prune() })
		store = tb
	case "redis":
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		closers.add("ratelimit redis", closeFn(client.Close))
		store = ratelimit.NewRedisStore(client, "dicomviewer:rl:")
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", rl.Backend)
	}

	limiter := ratelimit.New(store, rl.Requests, rl.Window,
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(rateLimitMetrics()),
	)
	return limiter.Handler, nil
}

func pruneLoop(ctx context.Context, every time.Duration, prune func()) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
