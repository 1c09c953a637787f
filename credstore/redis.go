package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV is a Redis-backed [KV]. Keys are namespaced with a configurable
// prefix so several managers can share one Redis database.
type RedisKV struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisKV creates a Redis-backed key-value store. prefix sets the key
// namespace; empty means no namespacing.
func NewRedisKV(client redis.UniversalClient, prefix string) *RedisKV {
	return &RedisKV{
		redis:  client,
		prefix: prefix,
	}
}

func (r *RedisKV) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

// Get returns the stored value for key. Absent keys report found=false;
// any other Redis failure is wrapped in [ErrUnavailable].
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.redis.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, true, nil
}

// Set stores value under key with no expiry.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.redis.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.redis.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping reports point-in-time Redis availability.
func (r *RedisKV) Ping(ctx context.Context) error {
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
