package journal

import (
	"context"
	"sync"
)

// MemStore is a thread-safe in-memory journal store with a bounded
// capacity. Oldest entries are dropped once the cap is reached.
type MemStore struct {
	mu      sync.RWMutex
	entries []Entry
	cap     int
}

// NewMemStore creates an in-memory store keeping at most cap entries
// (0 means unbounded).
func NewMemStore(cap int) *MemStore {
	return &MemStore{cap: cap}
}

func (s *MemStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if s.cap > 0 && len(s.entries) > s.cap {
		s.entries = s.entries[len(s.entries)-s.cap:]
	}
	return nil
}

func (s *MemStore) ListRecent(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collectNewestFirst(s.entries, limit, func(Entry) bool { return true }), nil
}

func (s *MemStore) ListByContribution(_ context.Context, contributionID string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collectNewestFirst(s.entries, limit, func(e Entry) bool {
		return e.ContributionID == contributionID
	}), nil
}

func (s *MemStore) Close() error {
	return nil
}

func collectNewestFirst(entries []Entry, limit int, keep func(Entry) bool) []Entry {
	var result []Entry
	for i := len(entries) - 1; i >= 0; i-- {
		if !keep(entries[i]) {
			continue
		}
		result = append(result, entries[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)
