// Package storage provides the durable backends for the coordinate
// learning cache. The learning table is the only state that must survive
// process restarts: a flat keyed table of (application, element_key)
// entries.
package storage

import (
	"context"

	domain "github.com/pixelpoint/cli/internal/domain"
)

// Store is the persistence interface for learning entries.
type Store interface {
	// Upsert inserts or replaces the entry for its composite key.
	Upsert(ctx context.Context, entry domain.LearningEntry) error

	// Get loads one entry; the bool reports whether it existed.
	Get(ctx context.Context, application, elementKey string) (domain.LearningEntry, bool, error)

	// List returns every stored entry. Used for cache warmup and the
	// telemetry projections.
	List(ctx context.Context) ([]domain.LearningEntry, error)

	// Close closes the storage connection.
	Close() error

	// Health checks if the storage is healthy and reachable.
	Health(ctx context.Context) error
}

// Config contains configuration for storage backends.
type Config struct {
	// Type specifies the storage backend type (sqlite, postgres, redis, memory)
	Type string `json:"type" yaml:"type" mapstructure:"type"`

	SQLite   SQLiteConfig   `json:"sqlite,omitempty" yaml:"sqlite,omitempty" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"postgres,omitempty" yaml:"postgres,omitempty" mapstructure:"postgres"`
	Redis    RedisConfig    `json:"redis,omitempty" yaml:"redis,omitempty" mapstructure:"redis"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// PostgresConfig contains Postgres-specific configuration.
type PostgresConfig struct {
	Host     string `json:"host" yaml:"host" mapstructure:"host"`
	Port     int    `json:"port" yaml:"port" mapstructure:"port"`
	Database string `json:"database" yaml:"database" mapstructure:"database"`
	Username string `json:"username" yaml:"username" mapstructure:"username"`
	Password string `json:"password" yaml:"password" mapstructure:"password"`
	SSLMode  string `json:"ssl_mode" yaml:"ssl_mode" mapstructure:"ssl_mode"`
}

// RedisConfig contains Redis-specific configuration.
type RedisConfig struct {
	Host     string `json:"host" yaml:"host" mapstructure:"host"`
	Port     int    `json:"port" yaml:"port" mapstructure:"port"`
	Database int    `json:"database" yaml:"database" mapstructure:"database"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	Username string `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
}
