package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucketStore implements Store with one x/time/rate limiter per key.
// The bucket holds limit tokens and refills one every window/limit, so bursts
// up to limit are admitted and the sustained rate matches the sliding window.
type TokenBucketStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	now      func() time.Time
}

func NewTokenBucketStore() *TokenBucketStore {
	return &TokenBucketStore{
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
}

func (s *TokenBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	interval := window / time.Duration(limit)
	now := s.now()

	s.mu.Lock()
	lim, ok := s.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(interval), limit)
		s.limiters[key] = lim
	}
	s.mu.Unlock()

	res := lim.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return Result{
			Allowed:    false,
			Limit:      limit,
			ResetAt:    now.Add(delay),
			RetryAfter: delay,
		}, nil
	}

	tokens := max(lim.TokensAt(now), 0)
	missing := float64(limit) - tokens
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: int(math.Floor(tokens)),
		ResetAt:   now.Add(time.Duration(missing * float64(interval))),
	}, nil
}

// Prune drops limiters whose buckets have refilled completely.
func (s *TokenBucketStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, lim := range s.limiters {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}
