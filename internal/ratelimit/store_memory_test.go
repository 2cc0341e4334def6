package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 10
	testWindow = time.Minute
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.store = NewInMemoryStore()
	s.store.now = func() time.Time { return s.now }
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) fill(key string) {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
	}
}

func (s *InMemoryStoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		result, err := s.store.Allow(s.ctx, "first", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
		s.Equal(s.now.Add(testWindow), result.ResetAt)
	})

	s.Run("request over limit denied with retry hint", func() {
		s.fill("over")
		s.now = s.now.Add(20 * time.Second)

		result, err := s.store.Allow(s.ctx, "over", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
		s.Equal(40*time.Second, result.RetryAfter)
	})

	s.Run("window slides", func() {
		s.fill("slide")
		s.now = s.now.Add(testWindow + time.Second)

		result, err := s.store.Allow(s.ctx, "slide", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit-1, result.Remaining)
	})

	s.Run("keys are independent", func() {
		s.fill("a")
		result, err := s.store.Allow(s.ctx, "b", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
	})

	s.Run("cancelled context", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		_, err := s.store.Allow(ctx, "cancelled", testLimit, testWindow)
		s.ErrorIs(err, context.Canceled)
	})
}

func (s *InMemoryStoreSuite) TestPrune() {
	_, err := s.store.Allow(s.ctx, "stale", testLimit, testWindow)
	s.Require().NoError(err)
	s.now = s.now.Add(30 * time.Second)
	_, err = s.store.Allow(s.ctx, "fresh", testLimit, testWindow)
	s.Require().NoError(err)

	s.now = s.now.Add(45 * time.Second)
	s.Equal(1, s.store.Prune(testWindow))
	s.Equal(1, s.store.Len())
}

func (s *InMemoryStoreSuite) TestConcurrentAllowNeverExceedsLimit() {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(s.ctx, "shared", testLimit, testWindow)
			s.NoError(err)
			if result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}
