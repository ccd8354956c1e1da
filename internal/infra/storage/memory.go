package storage

import (
	"context"
	"sort"
	"sync"

	domain "github.com/pixelpoint/cli/internal/domain"
)

// MemoryStore implements Store in memory, for tests and for sessions that
// should not persist what they learn.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.LearningEntry
}

// NewMemoryStore creates a new in-memory store instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]domain.LearningEntry)}
}

// Upsert inserts or replaces the entry for its composite key.
func (s *MemoryStore) Upsert(ctx context.Context, entry domain.LearningEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key()] = entry
	return nil
}

// Get loads one entry by composite key.
func (s *MemoryStore) Get(ctx context.Context, application, elementKey string) (domain.LearningEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[domain.LearningEntry{Application: application, ElementKey: elementKey}.Key()]
	return entry, ok, nil
}

// List returns every stored entry in key order.
func (s *MemoryStore) List(ctx context.Context) ([]domain.LearningEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.LearningEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key() < entries[j].Key() })
	return entries, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// Health always reports healthy.
func (s *MemoryStore) Health(ctx context.Context) error { return nil }
