package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis connection of a RedisBackend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisBackend stores tables as JSON in Redis, so a cache can be shared by
// several leapview processes.
type RedisBackend struct {
	rdb   *redis.Client
	owned bool
}

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis cache requires cache.redis.addr")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &RedisBackend{rdb: rdb, owned: true}, nil
}

// NewRedisBackendFromClient wraps an existing client. Close leaves it open.
func NewRedisBackendFromClient(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

// Get implements Backend.
func (r *RedisBackend) Get(ctx context.Context, key string) (*core.Table, bool, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var t core.Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached table: %w", err)
	}
	return &t, true, nil
}

// Set implements Backend.
func (r *RedisBackend) Set(ctx context.Context, key string, t *core.Table, ttl time.Duration) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	if err := r.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the connection if the backend opened it.
func (r *RedisBackend) Close() error {
	if !r.owned {
		return nil
	}
	return r.rdb.Close()
}

var _ Backend = (*RedisBackend)(nil)
