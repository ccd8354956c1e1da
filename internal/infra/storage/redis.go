package storage

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/go-redis/redis/v8"

	domain "github.com/pixelpoint/cli/internal/domain"
)

const redisKeyPrefix = "pixelpoint:learning:"

// RedisStore implements Store using Redis, one JSON value per composite
// key. Entries are never expired; retention is an external policy.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store instance.
func NewRedisStore(config RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Username: config.Username,
		Password: config.Password,
		DB:       config.Database,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func redisKey(application, elementKey string) string {
	return redisKeyPrefix + application + ":" + elementKey
}

// Upsert inserts or replaces the entry for its composite key.
func (s *RedisStore) Upsert(ctx context.Context, entry domain.LearningEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal learning entry: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(entry.Application, entry.ElementKey), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store learning entry: %w", err)
	}
	return nil
}

// Get loads one entry by composite key.
func (s *RedisStore) Get(ctx context.Context, application, elementKey string) (domain.LearningEntry, bool, error) {
	data, err := s.client.Get(ctx, redisKey(application, elementKey)).Bytes()
	if err == redis.Nil {
		return domain.LearningEntry{}, false, nil
	}
	if err != nil {
		return domain.LearningEntry{}, false, fmt.Errorf("failed to load learning entry: %w", err)
	}

	var entry domain.LearningEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return domain.LearningEntry{}, false, fmt.Errorf("failed to unmarshal learning entry: %w", err)
	}
	return entry, true, nil
}

// List returns every stored entry, scanning the key prefix.
func (s *RedisStore) List(ctx context.Context) ([]domain.LearningEntry, error) {
	var entries []domain.LearningEntry

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load learning entry %s: %w", iter.Val(), err)
		}
		var entry domain.LearningEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal learning entry %s: %w", iter.Val(), err)
		}
		entries = append(entries, entry)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan learning entries: %w", err)
	}
	return entries, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Health checks if the storage is healthy and reachable.
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
