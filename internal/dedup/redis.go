package dedup

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps baselines in Redis so several monitors can share them.
// GETSET makes check-and-update a single atomic round trip per channel.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a store from a redis:// URL.
func NewRedis(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisWithClient(redis.NewClient(opts), prefix), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(channelID string) string {
	return r.prefix + ":" + channelID
}

func (r *RedisStore) Seed(ctx context.Context, channelID, itemID string) error {
	if err := r.client.Set(ctx, r.key(channelID), itemID, 0).Err(); err != nil {
		return fmt.Errorf("seed baseline: %w", err)
	}
	return nil
}

func (r *RedisStore) CheckAndUpdate(ctx context.Context, channelID, itemID string) (Outcome, error) {
	previous, err := r.client.GetSet(ctx, r.key(channelID), itemID).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return FirstSeen, nil
	case err != nil:
		return Unchanged, fmt.Errorf("getset baseline: %w", err)
	case previous == itemID:
		return Unchanged, nil
	default:
		return Changed, nil
	}
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
