package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisStore keeps history in a Redis list, newest at the head.
type RedisStore struct {
	client *redis.Client
	logger *logrus.Logger
	key    string
	limit  int
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, logger *logrus.Logger, key string, limit int) *RedisStore {
	if key == "" {
		key = "tctool:history"
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &RedisStore{
		client: client,
		logger: logger,
		key:    key,
		limit:  limit,
	}
}

func (r *RedisStore) Add(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	// Push and trim together so readers never see more than limit entries.
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key, data)
		pipe.LTrim(ctx, r.key, 0, int64(r.limit-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add history entry: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"entry_id": e.ID,
		"format":   e.Format,
	}).Debug("History entry added")
	return nil
}

func (r *RedisStore) List(ctx context.Context) ([]Entry, error) {
	items, err := r.client.LRange(ctx, r.key, 0, int64(r.limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			r.logger.WithError(err).Warn("Skipping malformed history entry")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Client returns the underlying Redis client.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}

// Key returns the list key holding the entries.
func (r *RedisStore) Key() string {
	return r.key
}
