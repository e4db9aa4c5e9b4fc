package history

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.Mutex
	policy  Policy
	entries []Entry
	now     func() time.Time
}

// NewMemory returns a process-local store.
func NewMemory(p Policy) Store {
	if p == nil {
		p = KeepLast(DefaultMaxEntries)
	}
	return &memoryStore{policy: p, now: time.Now}
}

func (s *memoryStore) Contains(ctx context.Context, id string) (bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return containsID(s.entries, id), nil
}

func (s *memoryStore) Append(ctx context.Context, e Entry) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if containsID(s.entries, e.StrikeID) {
		return nil
	}
	next := append(append([]Entry(nil), s.entries...), e)
	s.entries = s.policy.Retain(next, s.now())
	return nil
}

func (s *memoryStore) Entries(ctx context.Context) ([]Entry, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...), nil
}

func (s *memoryStore) Close() error { return nil }
