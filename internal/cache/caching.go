package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/zeebo/xxh3"
)

// DefaultPrefix starts every cache key.
const DefaultPrefix = "leapview:result"

// Key returns the cache key of sql within namespace.
func Key(prefix, namespace, sql string) string {
	return fmt.Sprintf("%s:%s:%016x", prefix, namespace, xxh3.HashString(sql))
}

// Namespace scopes cache entries to one workspace and one set of credentials.
func Namespace(workspaceID, fingerprint string) string {
	return workspaceID + ":" + fingerprint
}

// Stats counts cache lookups.
type Stats struct {
	Hits   int64
	Misses int64
}

// CachingClient memoizes Execute. Listings and metadata pass through.
type CachingClient struct {
	inner     core.Client
	backend   Backend
	namespace string
	ttl       time.Duration
	logger    *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachingClient wraps inner. Results live for ttl; zero keeps them until evicted.
func NewCachingClient(inner core.Client, backend Backend, namespace string, ttl time.Duration, logger *slog.Logger) *CachingClient {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachingClient{
		inner:     inner,
		backend:   backend,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger,
	}
}

// Wrapper returns a function that wraps freshly connected clients of
// workspaceID. Its signature matches viewmodel.ClientWrapper.
func Wrapper(backend Backend, workspaceID string, ttl time.Duration, logger *slog.Logger) func(core.Client, string) core.Client {
	return func(client core.Client, fingerprint string) core.Client {
		return NewCachingClient(client, backend, Namespace(workspaceID, fingerprint), ttl, logger)
	}
}

// Execute returns the cached result of sql, running it on a miss. Failed
// queries are never cached, and a failing backend counts as a miss.
func (c *CachingClient) Execute(ctx context.Context, sql string) (*core.Table, error) {
	key := Key(DefaultPrefix, c.namespace, sql)

	t, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn("result cache read failed", slog.String("error", err.Error()))
	}
	if ok {
		c.hits.Add(1)
		c.logger.Debug("result cache hit", slog.String("key", key))
		return t, nil
	}
	c.misses.Add(1)

	t, err = c.inner.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}
	if err := c.backend.Set(ctx, key, t, c.ttl); err != nil {
		c.logger.Warn("result cache write failed", slog.String("error", err.Error()))
	}
	return t, nil
}

// ListDatasets implements core.Client.
func (c *CachingClient) ListDatasets(ctx context.Context, scope string) ([]string, error) {
	return c.inner.ListDatasets(ctx, scope)
}

// ListTables implements core.Client.
func (c *CachingClient) ListTables(ctx context.Context, dataset string) ([]string, error) {
	return c.inner.ListTables(ctx, dataset)
}

// GetTableMetadata implements core.Client.
func (c *CachingClient) GetTableMetadata(ctx context.Context, dataset, table string) ([]core.FieldSchema, error) {
	return c.inner.GetTableMetadata(ctx, dataset, table)
}

// Close closes the wrapped client. The backend is shared and stays open.
func (c *CachingClient) Close() error {
	return c.inner.Close()
}

// Stats returns the lookup counters.
func (c *CachingClient) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

var _ core.Client = (*CachingClient)(nil)
