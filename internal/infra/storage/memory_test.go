package storage

import (
	"context"
	"testing"
	"time"

	domain "github.com/pixelpoint/cli/internal/domain"
)

func sampleEntry(app, key string) domain.LearningEntry {
	return domain.LearningEntry{
		Application:  app,
		ElementKey:   key,
		X:            530,
		Y:            320,
		Confidence:   0.5,
		Hits:         3,
		SuccessCount: 2,
		FailureCount: 1,
		LastUsed:     time.Now().UTC().Truncate(time.Second),
	}
}

func TestMemoryStore_UpsertAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entry := sampleEntry("firefox", "submit-button")
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	loaded, ok, err := store.Get(ctx, "firefox", "submit-button")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected entry to exist")
	}
	if loaded != entry {
		t.Errorf("expected %+v, got %+v", entry, loaded)
	}

	_, ok, err = store.Get(ctx, "firefox", "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected missing entry to report not found")
	}
}

func TestMemoryStore_UpsertReplaces(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entry := sampleEntry("firefox", "submit-button")
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	entry.Confidence = 0.9
	entry.Hits = 4
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	loaded, _, err := store.Get(ctx, "firefox", "submit-button")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Confidence != 0.9 || loaded.Hits != 4 {
		t.Errorf("expected updated entry, got %+v", loaded)
	}
}

func TestMemoryStore_List(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, key := range []string{"b-key", "a-key", "c-key"} {
		if err := store.Upsert(ctx, sampleEntry("app", key)); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Key() >= entries[i].Key() {
			t.Errorf("entries not sorted: %s >= %s", entries[i-1].Key(), entries[i].Key())
		}
	}
}

func TestNewStore_Factory(t *testing.T) {
	store, err := NewStore(Config{Type: "memory"})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("expected MemoryStore, got %T", store)
	}

	if _, err := NewStore(Config{Type: "bogus"}); err == nil {
		t.Error("expected error for unsupported storage type")
	}
}
