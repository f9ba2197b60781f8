package health

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisChecker checks that Redis answers and that the history key, if
// present, still holds a list.
type RedisChecker struct {
	client *redis.Client
	key    string
}

// NewRedisChecker creates a health checker for the history list at key.
func NewRedisChecker(client *redis.Client, key string) *RedisChecker {
	return &RedisChecker{client: client, key: key}
}

// Name returns the name of the checker.
func (r *RedisChecker) Name() string {
	return "redis"
}

// Check pings Redis and inspects the history key.
func (r *RedisChecker) Check(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	kind, err := r.client.Type(ctx, r.key).Result()
	if err != nil {
		return fmt.Errorf("failed to inspect history key %q: %w", r.key, err)
	}
	// "none" until the first calculation is recorded
	if kind != "list" && kind != "none" {
		return fmt.Errorf("history key %q holds a %s, want a list", r.key, kind)
	}

	return nil
}
