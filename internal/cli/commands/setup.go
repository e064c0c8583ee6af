package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/leapview/internal/cache"
	"github.com/leapstack-labs/leapview/internal/cli/config"
	"github.com/leapstack-labs/leapview/internal/credentials"
	"github.com/leapstack-labs/leapview/internal/history"
	"github.com/leapstack-labs/leapview/internal/workspace"
	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/leapstack-labs/leapview/pkg/engine"
	"github.com/spf13/cobra"
)

// cliWorkspace is the history workspace id of one-shot CLI queries.
const cliWorkspace = "cli"

// newConnector builds the configured engine. Tests replace it with a fake.
var newConnector = engine.NewConnector

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Out    io.Writer
	ErrOut io.Writer
}

// NewCommandContext collects the loaded config and logger of cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    config.GetConfig(cmd.Context()),
		Logger: config.GetLogger(cmd.Context()),
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	}
}

// Connector builds the configured engine's connector.
func (c *CommandContext) Connector() (core.Connector, error) {
	return newConnector(c.Cfg.Engine.Core(), c.Logger)
}

// Connect opens a client with the configured credentials file, if any.
// The returned cleanup must be called (typically via defer).
func (c *CommandContext) Connect(ctx context.Context) (core.Client, func(), error) {
	connector, err := c.Connector()
	if err != nil {
		return nil, nil, err
	}

	var creds *core.Credentials
	if path := c.Cfg.Engine.CredentialsFile; path != "" {
		creds, err = credentials.ParseFile(path)
		if err != nil {
			return nil, nil, err
		}
		defer creds.Zero()
		c.Logger.Debug("using credentials", slog.String("key", credentials.Describe(creds)))
	}

	client, err := connector.Connect(ctx, creds)
	if err != nil {
		return nil, nil, core.NewEngineError("Connecting to the warehouse", err)
	}

	// Only a shared backend outlives a single command.
	if !c.Cfg.Cache.Enabled || c.Cfg.Cache.Backend != cache.BackendRedis {
		return client, func() { _ = client.Close() }, nil
	}

	backend, err := c.CacheBackend(ctx)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	fingerprint := ""
	if creds != nil {
		fingerprint = creds.Fingerprint
	}
	cached := cache.NewCachingClient(client, backend, cache.Namespace(cliWorkspace, fingerprint), c.Cfg.Cache.TTL, c.Logger)
	return cached, func() {
		_ = cached.Close()
		_ = backend.Close()
	}, nil
}

// CacheBackend opens the configured result cache backend, or nil when caching is off.
func (c *CommandContext) CacheBackend(ctx context.Context) (cache.Backend, error) {
	if !c.Cfg.Cache.Enabled {
		return nil, nil
	}
	return cache.NewBackend(ctx, cache.Options{
		Backend:    c.Cfg.Cache.Backend,
		MaxEntries: c.Cfg.Cache.MaxEntries,
		Redis: cache.RedisOptions{
			Addr:     c.Cfg.Cache.Redis.Addr,
			Password: c.Cfg.Cache.Redis.Password,
			DB:       c.Cfg.Cache.Redis.DB,
		},
	}, c.Logger)
}

// OpenHistory opens the query history database, or returns nil when history is off.
func (c *CommandContext) OpenHistory() (*history.Store, error) {
	if !c.Cfg.History.Enabled {
		return nil, nil
	}
	store := history.NewStore(c.Logger)
	if err := store.Open(c.Cfg.History.Path); err != nil {
		return nil, fmt.Errorf("failed to open query history: %w", err)
	}
	return store, nil
}

// WithTimeout bounds ctx by the configured query timeout.
func (c *CommandContext) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Cfg.UI.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Cfg.UI.QueryTimeout)
}

// Runtime is the workspace registry and the resources behind it.
type Runtime struct {
	Registry *workspace.Registry
	History  *history.Store

	cache cache.Backend
}

// NewRuntime wires the engine, result cache and query history into a
// workspace registry, the way the dashboard and the shell both run.
func (c *CommandContext) NewRuntime(ctx context.Context) (*Runtime, error) {
	connector, err := c.Connector()
	if err != nil {
		return nil, err
	}

	backend, err := c.CacheBackend(ctx)
	if err != nil {
		return nil, err
	}

	store, err := c.OpenHistory()
	if err != nil {
		if backend != nil {
			_ = backend.Close()
		}
		return nil, err
	}

	wcfg := workspace.Config{
		Connector:       connector,
		Scope:           c.Cfg.Engine.Scope,
		TTL:             c.Cfg.UI.SessionTTL,
		QueryTimeout:    c.Cfg.UI.QueryTimeout,
		CacheTTL:        c.Cfg.Cache.TTL,
		CredentialsFile: c.Cfg.Engine.CredentialsFile,
		Logger:          c.Logger,
	}
	if backend != nil {
		wcfg.Cache = backend
	}
	if store != nil {
		wcfg.History = store
	}

	return &Runtime{
		Registry: workspace.NewRegistry(wcfg),
		History:  store,
		cache:    backend,
	}, nil
}

// Close closes every workspace, then the cache and history.
func (r *Runtime) Close() error {
	errs := []error{r.Registry.Close()}
	if r.cache != nil {
		errs = append(errs, r.cache.Close())
	}
	if r.History != nil {
		errs = append(errs, r.History.Close())
	}
	return errors.Join(errs...)
}

// recordQuery stores a one-shot query in history, if history is on.
func (c *CommandContext) recordQuery(ctx context.Context, store *history.Store, entry history.Entry) {
	if store == nil {
		return
	}
	if err := store.Record(ctx, entry); err != nil {
		c.Logger.Warn("failed to record query history", slog.String("error", err.Error()))
	}
}
