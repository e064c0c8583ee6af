// Package cache memoizes query results. A CachingClient decorates a
// core.Client so that repeated Execute calls with the same SQL, under the
// same workspace and credentials, are served from a Backend.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// Backend stores tables under string keys.
type Backend interface {
	// Get returns the table stored under key. ok is false on a miss.
	Get(ctx context.Context, key string) (t *core.Table, ok bool, err error)
	Set(ctx context.Context, key string, t *core.Table, ttl time.Duration) error
	Close() error
}

// Backend names accepted by Options.Backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	MaxEntries int
	Redis      RedisOptions
}

// NewBackend builds the backend named by opts.Backend. An empty name means memory.
func NewBackend(ctx context.Context, opts Options, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch opts.Backend {
	case "", BackendMemory:
		logger.Debug("using memory result cache", slog.Int("max_entries", opts.MaxEntries))
		return NewMemoryBackend(opts.MaxEntries), nil
	case BackendRedis:
		logger.Debug("using redis result cache", slog.String("addr", opts.Redis.Addr))
		return NewRedisBackend(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want %s or %s)", opts.Backend, BackendMemory, BackendRedis)
	}
}
