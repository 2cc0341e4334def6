package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	dErrors "dicomviewer/pkg/domain-errors"
	"dicomviewer/pkg/platform/httputil"
	"dicomviewer/pkg/requestcontext"
)

// Middleware limits requests per client IP.
type Middleware struct {
	store   Store
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *Metrics
	// warn throttles fail-open warnings while the store is down.
	warn rate.Sometimes
}

type Option func(*Middleware)

// WithLogger logs store failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Middleware) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics records admission counters.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

// New creates a limiter admitting limit requests per window for each client.
// A non-positive limit disables limiting.
func New(store Store, limit int, window time.Duration, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limit:  limit,
		window: window,
		logger: slog.New(slog.DiscardHandler),
		warn:   rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler enforces the limit. Store failures fail open.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	if m.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)

		result, err := m.store.Allow(ctx, "ip:"+ip, m.limit, m.window)
		if err != nil {
			m.metrics.incrementStoreErrors()
			m.warn.Do(func() {
				m.logger.WarnContext(ctx, "rate limit check failed, allowing request",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
			})
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if !result.Allowed {
			m.metrics.incrementRejected()
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(result.RetryAfter)))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, try again later"))
			return
		}
		m.metrics.incrementAllowed()
		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func retryAfterSeconds(d time.Duration) int {
	return max(int(math.Ceil(d.Seconds())), 1)
}
