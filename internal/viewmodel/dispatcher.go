package viewmodel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/leapview/internal/history"
	"github.com/leapstack-labs/leapview/internal/session"
	"github.com/leapstack-labs/leapview/pkg/core"
)

// Recorder stores executed queries.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// ClientWrapper decorates a freshly connected client, e.g. with a result cache.
// fingerprint identifies the credentials the client was made from.
type ClientWrapper func(client core.Client, fingerprint string) core.Client

// Config configures a Dispatcher.
type Config struct {
	Connector   core.Connector
	Scope       string
	WorkspaceID string
	Timeout     time.Duration // per engine call; zero means none
	Wrap        ClientWrapper
	History     Recorder
	Logger      *slog.Logger
}

// Dispatcher runs actions to completion: it reduces an action, executes
// the requested effects and reduces their outcomes until nothing is pending.
// Client handles are reused for identical credentials.
type Dispatcher struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]core.Client
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[string]core.Client),
	}
}

// Dispatch applies a to store and returns the resulting store. The input
// store is never modified.
func (d *Dispatcher) Dispatch(ctx context.Context, store *session.Store, a Action) *session.Store {
	queue := []Action{a}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		d.logger.Debug("reduce", slog.String("action", Name(next)))

		var effects []Effect
		store, effects = Reduce(store, next)
		for _, e := range effects {
			queue = append(queue, d.run(ctx, store, e))
		}
	}
	return store
}

func (d *Dispatcher) run(ctx context.Context, store *session.Store, e Effect) Action {
	d.logger.Debug("effect", slog.String("effect", e.effectName()))

	if c, ok := e.(Connect); ok {
		return d.connect(ctx, c.Credentials)
	}

	client := session.Must[core.Client](store, session.Credentials)

	switch e := e.(type) {
	case ExecuteQuery:
		if client == nil {
			return QueryCompleted{SQL: e.SQL, Err: core.NewEngineError(ContextRunningQuery, core.ErrNotConnected)}
		}
		callCtx, cancel := d.withTimeout(ctx)
		defer cancel()

		start := time.Now()
		tbl, err := client.Execute(callCtx, e.SQL)
		d.record(ctx, e.SQL, tbl, err, time.Since(start))
		return QueryCompleted{SQL: e.SQL, Table: tbl, Err: core.NewEngineError(ContextRunningQuery, err)}

	case ListTables:
		if client == nil {
			return TablesLoaded{Dataset: e.Dataset, Err: core.NewEngineError(ContextDatasetSchema, core.ErrNotConnected)}
		}
		callCtx, cancel := d.withTimeout(ctx)
		defer cancel()

		tables, err := client.ListTables(callCtx, e.Dataset)
		return TablesLoaded{Dataset: e.Dataset, Tables: tables, Err: core.NewEngineError(ContextDatasetSchema, err)}

	case ListDatasets:
		if client == nil {
			return DatasetsLoaded{Err: core.NewEngineError(ContextListDatasets, core.ErrNotConnected)}
		}
		callCtx, cancel := d.withTimeout(ctx)
		defer cancel()

		datasets, err := client.ListDatasets(callCtx, d.cfg.Scope)
		return DatasetsLoaded{Datasets: datasets, Err: core.NewEngineError(ContextListDatasets, err)}
	}

	// Unreachable for the effects Reduce emits.
	panic("viewmodel: unknown effect " + e.effectName())
}

// connect exchanges creds for a client, reusing the handle of an identical
// key. creds is zeroed before returning.
func (d *Dispatcher) connect(ctx context.Context, creds *core.Credentials) Action {
	defer creds.Zero()

	if d.cfg.Connector == nil {
		return Connected{Err: errors.New("no query engine configured")}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if client, ok := d.clients[creds.Fingerprint]; ok {
		d.logger.Debug("reusing client", slog.String("fingerprint", creds.Fingerprint))
		return Connected{Handle: client}
	}

	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	client, err := d.cfg.Connector.Connect(callCtx, creds)
	if err != nil {
		d.logger.Info("connect failed", slog.String("error", err.Error()))
		return Connected{Err: err}
	}
	if d.cfg.Wrap != nil {
		client = d.cfg.Wrap(client, creds.Fingerprint)
	}
	d.clients[creds.Fingerprint] = client
	return Connected{Handle: client}
}

func (d *Dispatcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.cfg.Timeout)
}

func (d *Dispatcher) record(ctx context.Context, sql string, tbl *core.Table, err error, elapsed time.Duration) {
	if d.cfg.History == nil {
		return
	}

	entry := history.Entry{
		WorkspaceID: d.cfg.WorkspaceID,
		SQL:         sql,
		Status:      history.StatusSucceeded,
		Duration:    elapsed,
	}
	if err != nil {
		entry.Status = history.StatusFailed
		entry.Error = err.Error()
	} else if tbl != nil {
		entry.RowCount = tbl.NumRows()
	}

	if rerr := d.cfg.History.Record(ctx, entry); rerr != nil {
		d.logger.Warn("failed to record query history", slog.String("error", rerr.Error()))
	}
}

// Close closes every client this dispatcher connected.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for fp, client := range d.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(d.clients, fp)
	}
	return errors.Join(errs...)
}
