package storage

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores values with a TTL so abandoned carts expire. Each write
// refreshes the TTL with a little jitter to spread expirations out.
type RedisKV struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisKV(client *redis.Client, baseTTL time.Duration) *RedisKV {
	return &RedisKV{
		client:  client,
		baseTTL: baseTTL,
	}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	var ttl time.Duration
	if r.baseTTL > 0 {
		jitter := time.Duration(rand.Int63n(int64(r.baseTTL/10) + 1))
		ttl = r.baseTTL + jitter
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
