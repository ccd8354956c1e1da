package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	domain "github.com/pixelpoint/cli/internal/domain"
)

// SQLiteStore implements Store using SQLite. It is the default backend.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(config SQLiteConfig) (*SQLiteStore, error) {
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", config.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db, path: config.Path}

	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS learning_entries (
		application   TEXT NOT NULL,
		element_key   TEXT NOT NULL,
		x             INTEGER NOT NULL,
		y             INTEGER NOT NULL,
		confidence    REAL NOT NULL,
		hits          INTEGER NOT NULL DEFAULT 0,
		success_count INTEGER NOT NULL DEFAULT 0,
		failure_count INTEGER NOT NULL DEFAULT 0,
		last_used     DATETIME NOT NULL,
		PRIMARY KEY (application, element_key)
	);

	CREATE INDEX IF NOT EXISTS idx_learning_entries_last_used ON learning_entries(last_used DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts or replaces the entry for its composite key.
func (s *SQLiteStore) Upsert(ctx context.Context, entry domain.LearningEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learning_entries
			(application, element_key, x, y, confidence, hits, success_count, failure_count, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(application, element_key) DO UPDATE SET
			x = excluded.x,
			y = excluded.y,
			confidence = excluded.confidence,
			hits = excluded.hits,
			success_count = excluded.success_count,
			failure_count = excluded.failure_count,
			last_used = excluded.last_used
	`, entry.Application, entry.ElementKey, entry.X, entry.Y, entry.Confidence,
		entry.Hits, entry.SuccessCount, entry.FailureCount, entry.LastUsed.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert learning entry: %w", err)
	}
	return nil
}

// Get loads one entry by composite key.
func (s *SQLiteStore) Get(ctx context.Context, application, elementKey string) (domain.LearningEntry, bool, error) {
	var entry domain.LearningEntry
	err := s.db.QueryRowContext(ctx, `
		SELECT application, element_key, x, y, confidence, hits, success_count, failure_count, last_used
		FROM learning_entries
		WHERE application = ? AND element_key = ?
	`, application, elementKey).Scan(
		&entry.Application, &entry.ElementKey, &entry.X, &entry.Y, &entry.Confidence,
		&entry.Hits, &entry.SuccessCount, &entry.FailureCount, &entry.LastUsed)
	if err == sql.ErrNoRows {
		return domain.LearningEntry{}, false, nil
	}
	if err != nil {
		return domain.LearningEntry{}, false, fmt.Errorf("failed to load learning entry: %w", err)
	}
	return entry, true, nil
}

// List returns every stored entry.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.LearningEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT application, element_key, x, y, confidence, hits, success_count, failure_count, last_used
		FROM learning_entries
		ORDER BY application, element_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list learning entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.LearningEntry
	for rows.Next() {
		var entry domain.LearningEntry
		if err := rows.Scan(
			&entry.Application, &entry.ElementKey, &entry.X, &entry.Y, &entry.Confidence,
			&entry.Hits, &entry.SuccessCount, &entry.FailureCount, &entry.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan learning entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Health checks if the storage is healthy and reachable.
func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
