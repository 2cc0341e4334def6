package storage

import (
	"bytes"
	"context"
	"sync"
)

// InMemoryFetcher keeps documents in a map. It backs local development and
// tests; it favors clarity over performance.
type InMemoryFetcher struct {
	mu   sync.RWMutex
	docs map[Location][]byte
}

func NewInMemoryFetcher() *InMemoryFetcher {
	return &InMemoryFetcher{docs: make(map[Location][]byte)}
}

// Put stores a copy of data under loc, replacing any previous document.
func (s *InMemoryFetcher) Put(loc Location, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[loc] = bytes.Clone(data)
}

// Delete removes the document at loc.
func (s *InMemoryFetcher) Delete(loc Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, loc)
}

func (s *InMemoryFetcher) Fetch(ctx context.Context, loc Location) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.docs[loc]; ok {
		return bytes.Clone(data), nil
	}
	return nil, ErrNotFound
}
