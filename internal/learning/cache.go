// Package learning implements the confidence-weighted coordinate cache:
// an online reinforcement-style store of previously successful
// (application, element) -> coordinate mappings. It favors recency and
// O(1) lookup/update over statistical rigor.
package learning

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	domain "github.com/pixelpoint/cli/internal/domain"
	storage "github.com/pixelpoint/cli/internal/infra/storage"
	logger "github.com/pixelpoint/cli/internal/logger"
)

const (
	// DefaultAlpha is the success learning rate: confidence approaches 1
	// exponentially on repeated successes.
	DefaultAlpha = 0.2

	// DefaultBeta is the failure decay rate.
	DefaultBeta = 0.3

	// DefaultFloor is the usability floor: lookups below it miss and the
	// orchestrator must fall back to fresh detection.
	DefaultFloor = 0.4

	// shardCount spreads entries over independent locks so concurrent
	// sessions targeting different elements never block each other.
	shardCount = 32

	// initialConfidence seeds a novel entry before its first outcome is
	// applied.
	initialConfidence = 0.5
)

// Params tunes the cache update rule. The defaults are a reasonable
// policy, not a byte-exact contract; callers override them through config.
type Params struct {
	Alpha float64
	Beta  float64
	Floor float64
}

// DefaultParams returns the default update-rule parameters.
func DefaultParams() Params {
	return Params{Alpha: DefaultAlpha, Beta: DefaultBeta, Floor: DefaultFloor}
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*domain.LearningEntry
}

// Cache is the shared, concurrently accessed learning store. Updates are
// atomic per key: each entry belongs to exactly one shard and is mutated
// only under that shard's lock. Writes go through to the durable backend.
type Cache struct {
	params Params
	store  storage.Store
	shards [shardCount]*shard
	clock  func() time.Time
}

// NewCache creates a cache backed by store. Pass a nil store for a purely
// in-memory cache.
func NewCache(store storage.Store, params Params) *Cache {
	if params.Alpha <= 0 {
		params.Alpha = DefaultAlpha
	}
	if params.Beta <= 0 {
		params.Beta = DefaultBeta
	}
	if params.Floor <= 0 {
		params.Floor = DefaultFloor
	}
	c := &Cache{params: params, store: store, clock: time.Now}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]*domain.LearningEntry)}
	}
	return c
}

// Warmup loads all persisted entries into memory.
func (c *Cache) Warmup(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	entries, err := c.store.List(ctx)
	if err != nil {
		return err
	}
	for i := range entries {
		e := entries[i]
		s := c.shardFor(e.Key())
		s.mu.Lock()
		s.entries[e.Key()] = &e
		s.mu.Unlock()
	}
	logger.Debug("learning cache warmed up", "entries", len(entries))
	return nil
}

func (c *Cache) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%shardCount]
}

// Lookup returns the stored coordinate for (application, elementKey) when
// its confidence exceeds the usability floor. LastUsed is refreshed on
// every access, hit or not.
func (c *Cache) Lookup(ctx context.Context, application, elementKey string) (x, y int, ok bool) {
	key := domain.LearningEntry{Application: application, ElementKey: elementKey}.Key()
	s := c.shardFor(key)

	s.mu.Lock()
	entry, exists := s.entries[key]
	if exists {
		entry.LastUsed = c.clock()
	}
	var snapshot domain.LearningEntry
	if exists {
		snapshot = *entry
	}
	s.mu.Unlock()

	if !exists {
		return 0, 0, false
	}
	c.persist(ctx, snapshot)

	if snapshot.Confidence <= c.params.Floor {
		return 0, 0, false
	}
	return snapshot.X, snapshot.Y, true
}

// RecordSuccess applies the success update rule for the key and coordinate:
// hits and successCount increment, confidence moves toward 1 by alpha. A
// novel element gets its entry created here, on first successful
// resolution.
func (c *Cache) RecordSuccess(ctx context.Context, application, elementKey string, x, y int) domain.LearningEntry {
	entry, _ := c.update(ctx, application, elementKey, true, func(e *domain.LearningEntry) {
		e.X = x
		e.Y = y
		e.Hits++
		e.SuccessCount++
		e.Confidence = e.Confidence + c.params.Alpha*(1-e.Confidence)
	})
	return entry
}

// RecordFailure applies the failure update rule: hits and failureCount
// increment, confidence decays by beta. The stored coordinate is kept; a
// later success overwrites it. A failure for a never-seen key records
// nothing: entries exist only for coordinates that resolved successfully
// at least once.
func (c *Cache) RecordFailure(ctx context.Context, application, elementKey string) domain.LearningEntry {
	entry, _ := c.update(ctx, application, elementKey, false, func(e *domain.LearningEntry) {
		e.Hits++
		e.FailureCount++
		e.Confidence = e.Confidence * (1 - c.params.Beta)
	})
	return entry
}

func (c *Cache) update(ctx context.Context, application, elementKey string, createIfMissing bool, fn func(*domain.LearningEntry)) (domain.LearningEntry, bool) {
	key := domain.LearningEntry{Application: application, ElementKey: elementKey}.Key()
	s := c.shardFor(key)

	s.mu.Lock()
	entry, exists := s.entries[key]
	if !exists {
		if !createIfMissing {
			s.mu.Unlock()
			return domain.LearningEntry{Application: application, ElementKey: elementKey}, false
		}
		entry = &domain.LearningEntry{
			Application: application,
			ElementKey:  elementKey,
			Confidence:  initialConfidence,
		}
		s.entries[key] = entry
	}
	fn(entry)
	entry.LastUsed = c.clock()
	snapshot := *entry
	s.mu.Unlock()

	c.persist(ctx, snapshot)
	return snapshot, true
}

func (c *Cache) persist(ctx context.Context, entry domain.LearningEntry) {
	if c.store == nil {
		return
	}
	if err := c.store.Upsert(ctx, entry); err != nil {
		// The in-memory entry stays authoritative for this process; the
		// write is retried on the next update.
		logger.Warn("failed to persist learning entry",
			"application", entry.Application, "element", entry.ElementKey, "error", err)
	}
}

// Entries snapshots all in-memory entries.
func (c *Cache) Entries() []domain.LearningEntry {
	var out []domain.LearningEntry
	for _, s := range c.shards {
		s.mu.Lock()
		for _, e := range s.entries {
			out = append(out, *e)
		}
		s.mu.Unlock()
	}
	return out
}
