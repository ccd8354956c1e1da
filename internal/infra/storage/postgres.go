package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/pixelpoint/cli/internal/domain"
)

// PostgresStore implements Store using PostgreSQL, for installations that
// share one learning table across machines.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store instance.
func NewPostgresStore(config PostgresConfig) (*PostgresStore, error) {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		config.Host, config.Port, config.Database, config.Username, config.Password, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &PostgresStore{db: db}

	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS learning_entries (
		application   TEXT NOT NULL,
		element_key   TEXT NOT NULL,
		x             INTEGER NOT NULL,
		y             INTEGER NOT NULL,
		confidence    DOUBLE PRECISION NOT NULL,
		hits          BIGINT NOT NULL DEFAULT 0,
		success_count BIGINT NOT NULL DEFAULT 0,
		failure_count BIGINT NOT NULL DEFAULT 0,
		last_used     TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (application, element_key)
	);

	CREATE INDEX IF NOT EXISTS idx_learning_entries_last_used ON learning_entries(last_used DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts or replaces the entry for its composite key.
func (s *PostgresStore) Upsert(ctx context.Context, entry domain.LearningEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learning_entries
			(application, element_key, x, y, confidence, hits, success_count, failure_count, last_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (application, element_key) DO UPDATE SET
			x = EXCLUDED.x,
			y = EXCLUDED.y,
			confidence = EXCLUDED.confidence,
			hits = EXCLUDED.hits,
			success_count = EXCLUDED.success_count,
			failure_count = EXCLUDED.failure_count,
			last_used = EXCLUDED.last_used
	`, entry.Application, entry.ElementKey, entry.X, entry.Y, entry.Confidence,
		entry.Hits, entry.SuccessCount, entry.FailureCount, entry.LastUsed.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert learning entry: %w", err)
	}
	return nil
}

// Get loads one entry by composite key.
func (s *PostgresStore) Get(ctx context.Context, application, elementKey string) (domain.LearningEntry, bool, error) {
	var entry domain.LearningEntry
	err := s.db.QueryRowContext(ctx, `
		SELECT application, element_key, x, y, confidence, hits, success_count, failure_count, last_used
		FROM learning_entries
		WHERE application = $1 AND element_key = $2
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
func (s *PostgresStore) List(ctx context.Context) ([]domain.LearningEntry, error) {
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Health checks if the storage is healthy and reachable.
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
