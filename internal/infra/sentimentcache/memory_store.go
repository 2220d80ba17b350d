package sentimentcache

import (
	"context"
	"sync"
	"time"

	"github.com/ecomly/support-ai/internal/domain/sentiment"
)

type entry struct {
	payload   sentiment.Result
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the sentiment result
// cache for tests/dev and for deployments without Valkey.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]entry
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]entry)}
}

// Get implements sentiment.Store.
func (s *MemoryStore) Get(_ context.Context, key string) (sentiment.Result, bool, error) {
	if key == "" {
		return sentiment.Result{}, false, nil
	}
	s.mu.RLock()
	record, ok := s.results[key]
	s.mu.RUnlock()
	if !ok {
		return sentiment.Result{}, false, nil
	}
	if hasExpired(record.expiresAt) {
		s.mu.Lock()
		delete(s.results, key)
		s.mu.Unlock()
		return sentiment.Result{}, false, nil
	}
	return record.payload, true, nil
}

// Save caches the result with optional TTL.
func (s *MemoryStore) Save(_ context.Context, key string, result sentiment.Result, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[key] = entry{payload: result, expiresAt: exp}
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ sentiment.Store = (*MemoryStore)(nil)
