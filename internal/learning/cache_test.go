package learning

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/pixelpoint/cli/internal/domain"
	storage "github.com/pixelpoint/cli/internal/infra/storage"
)

func TestCacheSuccessThenFailure(t *testing.T) {
	cache := NewCache(nil, DefaultParams())
	ctx := context.Background()

	entry := cache.RecordSuccess(ctx, "firefox", "button:Save", 530, 320)
	assert.InDelta(t, 0.6, entry.Confidence, 1e-9)
	assert.EqualValues(t, 1, entry.Hits)
	assert.EqualValues(t, 1, entry.SuccessCount)

	x, y, ok := cache.Lookup(ctx, "firefox", "button:Save")
	require.True(t, ok)
	assert.Equal(t, 530, x)
	assert.Equal(t, 320, y)

	entry = cache.RecordFailure(ctx, "firefox", "button:Save")
	assert.InDelta(t, 0.42, entry.Confidence, 1e-9)
	assert.EqualValues(t, 2, entry.Hits)
	assert.EqualValues(t, 1, entry.FailureCount)

	// 0.42 is still above the floor, so the coordinate remains usable.
	_, _, ok = cache.Lookup(ctx, "firefox", "button:Save")
	assert.True(t, ok)

	entry = cache.RecordFailure(ctx, "firefox", "button:Save")
	assert.InDelta(t, 0.294, entry.Confidence, 1e-9)

	_, _, ok = cache.Lookup(ctx, "firefox", "button:Save")
	assert.False(t, ok, "entry below the floor must miss")
}

func TestCacheConfidenceBounds(t *testing.T) {
	cache := NewCache(nil, DefaultParams())
	ctx := context.Background()

	prev := initialConfidence
	for i := 0; i < 50; i++ {
		entry := cache.RecordSuccess(ctx, "app", "el", 1, 1)
		assert.Greater(t, entry.Confidence, prev, "success must strictly increase confidence")
		assert.Less(t, entry.Confidence, 1.0, "confidence approaches but never reaches 1")
		prev = entry.Confidence
	}

	for i := 0; i < 50; i++ {
		entry := cache.RecordFailure(ctx, "app", "el")
		assert.Less(t, entry.Confidence, prev, "failure must strictly decrease confidence")
		assert.Greater(t, entry.Confidence, 0.0)
		prev = entry.Confidence
	}
}

func TestCacheMiss(t *testing.T) {
	cache := NewCache(nil, DefaultParams())
	_, _, ok := cache.Lookup(context.Background(), "firefox", "button:Missing")
	assert.False(t, ok)
}

func TestCacheSuccessOverwritesCoordinate(t *testing.T) {
	cache := NewCache(nil, DefaultParams())
	ctx := context.Background()

	cache.RecordSuccess(ctx, "firefox", "button:Save", 100, 100)
	cache.RecordFailure(ctx, "firefox", "button:Save")
	cache.RecordSuccess(ctx, "firefox", "button:Save", 200, 250)

	x, y, ok := cache.Lookup(ctx, "firefox", "button:Save")
	require.True(t, ok)
	assert.Equal(t, 200, x)
	assert.Equal(t, 250, y)
}

func TestCacheFailureOnUnknownKeyRecordsNothing(t *testing.T) {
	store := storage.NewMemoryStore()
	cache := NewCache(store, DefaultParams())
	ctx := context.Background()

	entry := cache.RecordFailure(ctx, "firefox", "menu:File")
	assert.EqualValues(t, 0, entry.Hits)
	assert.Empty(t, cache.Entries())
	assert.Empty(t, cache.Stats())

	_, found, err := store.Get(ctx, "firefox", "menu:File")
	require.NoError(t, err)
	assert.False(t, found, "a failed attempt on an unknown element must not persist anything")

	// The entry still gets created on the first successful resolution.
	created := cache.RecordSuccess(ctx, "firefox", "menu:File", 10, 20)
	assert.InDelta(t, 0.6, created.Confidence, 1e-9)
	assert.EqualValues(t, 0, created.FailureCount)
}

func TestCacheWriteThroughAndWarmup(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	cache := NewCache(store, DefaultParams())
	cache.RecordSuccess(ctx, "firefox", "button:Save", 530, 320)

	persisted, found, err := store.Get(ctx, "firefox", "button:Save")
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 0.6, persisted.Confidence, 1e-9)

	// A fresh cache sees the persisted entry after warmup.
	fresh := NewCache(store, DefaultParams())
	require.NoError(t, fresh.Warmup(ctx))
	x, y, ok := fresh.Lookup(ctx, "firefox", "button:Save")
	require.True(t, ok)
	assert.Equal(t, 530, x)
	assert.Equal(t, 320, y)
}

func TestCacheConcurrentUpdates(t *testing.T) {
	cache := NewCache(nil, DefaultParams())
	ctx := context.Background()

	const goroutines = 16
	const perGoroutine = 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				cache.RecordSuccess(ctx, "app", "el", 10, 20)
			}
		}()
	}
	wg.Wait()

	entries := cache.Entries()
	require.Len(t, entries, 1)
	assert.EqualValues(t, goroutines*perGoroutine, entries[0].Hits)
	assert.EqualValues(t, goroutines*perGoroutine, entries[0].SuccessCount)

	// Every update applied: confidence equals the closed form after N
	// successes from the initial seed.
	want := 1 - (1-initialConfidence)*math.Pow(1-DefaultAlpha, goroutines*perGoroutine)
	assert.InDelta(t, want, entries[0].Confidence, 1e-9)
}

func TestCacheStats(t *testing.T) {
	cache := NewCache(nil, DefaultParams())
	ctx := context.Background()

	cache.RecordSuccess(ctx, "firefox", "button:Save", 1, 1)
	cache.RecordSuccess(ctx, "firefox", "button:Save", 1, 1)
	cache.RecordSuccess(ctx, "firefox", "link:Help", 2, 2)
	cache.RecordFailure(ctx, "firefox", "link:Help")
	cache.RecordFailure(ctx, "firefox", "link:Help")
	cache.RecordSuccess(ctx, "gimp", "icon:Brush", 5, 5)

	stats := cache.Stats()
	require.Len(t, stats, 2)

	assert.Equal(t, "firefox", stats[0].Application)
	assert.Equal(t, 2, stats[0].TotalEntries)
	assert.EqualValues(t, 5, stats[0].TotalHits)
	assert.InDelta(t, 0.6, stats[0].SuccessRate, 1e-9)

	assert.Equal(t, "gimp", stats[1].Application)
	assert.Equal(t, 1, stats[1].TotalEntries)
	assert.InDelta(t, 1.0, stats[1].SuccessRate, 1e-9)
}

func TestCacheTopEntries(t *testing.T) {
	cache := NewCache(nil, DefaultParams())
	cache.clock = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	cache.RecordSuccess(ctx, "app", "high", 1, 1)
	cache.RecordSuccess(ctx, "app", "high", 1, 1)
	cache.RecordSuccess(ctx, "app", "mid", 1, 1)
	cache.RecordSuccess(ctx, "app", "low", 1, 1)
	cache.RecordFailure(ctx, "app", "low")

	top := cache.TopEntries(2)
	require.Len(t, top, 2)
	assert.Equal(t, "high", top[0].ElementKey)
	assert.Equal(t, "mid", top[1].ElementKey)
}

func TestLearningEntryKeyDistinct(t *testing.T) {
	a := domain.LearningEntry{Application: "app:x", ElementKey: "y"}
	b := domain.LearningEntry{Application: "app", ElementKey: "x:y"}
	assert.NotEqual(t, a.Key(), b.Key())
}
