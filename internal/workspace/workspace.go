// Package workspace holds one session and dispatcher per user. The web UI
// keeps a workspace per browser session; the CLI uses a single one.
package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/leapview/internal/session"
	"github.com/leapstack-labs/leapview/internal/viewmodel"
)

// ErrClosed is returned when an action reaches a workspace that expired or
// was deleted after the caller looked it up.
var ErrClosed = errors.New("workspace closed")

// Workspace is a session store with the dispatcher that advances it.
// Actions on a workspace run one at a time.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	closed     bool
	store      *session.Store
	dispatcher *viewmodel.Dispatcher
	scope      string
	logger     *slog.Logger
}

// Dispatch applies a and returns the new session state. A closed workspace
// leaves its state alone and fails with ErrClosed.
func (w *Workspace) Dispatch(ctx context.Context, a viewmodel.Action) (*session.Store, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return w.store, ErrClosed
	}
	start := time.Now()
	w.store = w.dispatcher.Dispatch(ctx, w.store, a)
	w.logger.Debug("action dispatched",
		slog.String("workspace", w.ID),
		slog.String("action", viewmodel.Name(a)),
		slog.Duration("elapsed", time.Since(start)))
	return w.store, nil
}

// Session returns the current session state. Callers must not modify it.
func (w *Workspace) Session() *session.Store {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store
}

// View derives the current view.
func (w *Workspace) View(ctx context.Context) viewmodel.View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return viewmodel.BuildView(ctx, w.store, w.scope)
}

// Scope is the project or catalog datasets are listed from.
func (w *Workspace) Scope() string { return w.scope }

// Closed reports whether the workspace has been closed.
func (w *Workspace) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Close releases every client the workspace connected and drops the session,
// so no closed handle stays reachable. Closing twice is a no-op.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.store = session.NewWithDefaults()
	return w.dispatcher.Close()
}
