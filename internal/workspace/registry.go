package workspace

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapview/internal/cache"
	"github.com/leapstack-labs/leapview/internal/session"
	"github.com/leapstack-labs/leapview/internal/viewmodel"
	"github.com/leapstack-labs/leapview/pkg/core"
)

// DefaultTTL is how long an idle workspace survives.
const DefaultTTL = 12 * time.Hour

// Config configures the workspaces a Registry creates.
type Config struct {
	Connector    core.Connector
	Scope        string
	TTL          time.Duration
	QueryTimeout time.Duration

	// Cache, when set, memoizes query results per workspace and credentials.
	Cache    cache.Backend
	CacheTTL time.Duration

	History viewmodel.Recorder

	// CredentialsFile is a key every new workspace connects with.
	CredentialsFile string

	Logger *slog.Logger
}

type entry struct {
	ws        *Workspace
	expiresAt time.Time
}

// Registry maps workspace ids to workspaces and expires idle ones.
type Registry struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	workspaces map[string]*entry

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		workspaces: make(map[string]*entry),
	}
}

// Create makes a new workspace with a fresh session. When a credentials
// file is configured, the workspace connects with it before returning.
func (r *Registry) Create(ctx context.Context) *Workspace {
	id := uuid.NewString()
	ws := r.newWorkspace(id)

	r.mu.Lock()
	r.workspaces[id] = &entry{ws: ws, expiresAt: r.now().Add(r.cfg.TTL)}
	r.mu.Unlock()

	r.logger.Debug("workspace created", slog.String("workspace", id))

	if r.cfg.CredentialsFile != "" {
		r.bootstrap(ctx, ws)
	}
	return ws
}

func (r *Registry) newWorkspace(id string) *Workspace {
	dcfg := viewmodel.Config{
		Connector:   r.cfg.Connector,
		Scope:       r.cfg.Scope,
		WorkspaceID: id,
		Timeout:     r.cfg.QueryTimeout,
		History:     r.cfg.History,
		Logger:      r.logger,
	}
	if r.cfg.Cache != nil {
		dcfg.Wrap = cache.Wrapper(r.cfg.Cache, id, r.cfg.CacheTTL, r.logger)
	}

	return &Workspace{
		ID:         id,
		CreatedAt:  r.now(),
		store:      session.NewWithDefaults(),
		dispatcher: viewmodel.NewDispatcher(dcfg),
		scope:      r.cfg.Scope,
		logger:     r.logger,
	}
}

func (r *Registry) bootstrap(ctx context.Context, ws *Workspace) {
	blob, err := os.ReadFile(r.cfg.CredentialsFile)
	if err != nil {
		r.logger.Warn("failed to read credentials file",
			slog.String("path", r.cfg.CredentialsFile),
			slog.String("error", err.Error()))
		return
	}
	defer clear(blob)

	if _, err := ws.Dispatch(ctx, viewmodel.SaveCredentials{Blob: blob}); err != nil {
		r.logger.Warn("failed to connect new workspace", slog.String("workspace", ws.ID), slog.String("error", err.Error()))
	}
}

// Get returns a live workspace and extends its lifetime.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.workspaces[id]
	if !ok || !r.now().Before(e.expiresAt) {
		return nil, false
	}
	e.expiresAt = r.now().Add(r.cfg.TTL)
	return e.ws, true
}

// GetOrCreate returns the workspace with id, or a new one when it does not
// exist or has expired. created reports which.
func (r *Registry) GetOrCreate(ctx context.Context, id string) (ws *Workspace, created bool) {
	if id != "" {
		if ws, ok := r.Get(id); ok {
			return ws, false
		}
	}
	return r.Create(ctx), true
}

// Delete closes and removes a workspace. Unknown ids are ignored.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	e, ok := r.workspaces[id]
	delete(r.workspaces, id)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return e.ws.Close()
}

// Len returns the number of workspaces, expired ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Cleanup closes and removes expired workspaces and returns how many it removed.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	now := r.now()
	var expired []*Workspace
	for id, e := range r.workspaces {
		if !now.Before(e.expiresAt) {
			expired = append(expired, e.ws)
			delete(r.workspaces, id)
		}
	}
	r.mu.Unlock()

	for _, ws := range expired {
		if err := ws.Close(); err != nil {
			r.logger.Warn("failed to close expired workspace",
				slog.String("workspace", ws.ID),
				slog.String("error", err.Error()))
		}
	}
	if len(expired) > 0 {
		r.logger.Info("expired workspaces removed", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// StartCleanupRoutine removes expired workspaces every interval until Close.
func (r *Registry) StartCleanupRoutine(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Cleanup()
			}
		}
	}()
}

// Close stops the cleanup routine and closes every workspace.
func (r *Registry) Close() error {
	if r.cancel != nil {
		r.cancel()
		<-r.done
		r.cancel = nil
	}

	r.mu.Lock()
	all := r.workspaces
	r.workspaces = make(map[string]*entry)
	r.mu.Unlock()

	var errs []error
	for _, e := range all {
		if err := e.ws.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
