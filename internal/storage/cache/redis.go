package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/blake3"
)

// RedisStore keeps documents in Redis with a TTL.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewRedisStore creates a Redis-backed store. Keys are namespaced with
// prefix and hashed, so arbitrary object keys map to fixed-length Redis keys.
func NewRedisStore(client redis.Cmdable, ttl time.Duration, prefix string) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, r.redisKey(key), data, r.ttl).Err()
}

// RedisKey returns the Redis key used for a cache key.
func (r *RedisStore) RedisKey(key string) string {
	return r.redisKey(key)
}

func (r *RedisStore) redisKey(key string) string {
	sum := blake3.Sum256([]byte(key))
	return r.prefix + hex.EncodeToString(sum[:])
}
