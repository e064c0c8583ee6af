// Package ui serves the leapview dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapview/internal/ui/features/explorer"
	"github.com/leapstack-labs/leapview/internal/ui/notifier"
	"github.com/leapstack-labs/leapview/internal/ui/router"
	"github.com/leapstack-labs/leapview/internal/workspace"
	"golang.org/x/sync/errgroup"
)

// DefaultCleanupInterval is how often expired workspaces are swept.
const DefaultCleanupInterval = 5 * time.Minute

// Config holds configuration for the UI server.
type Config struct {
	Registry     *workspace.Registry
	History      explorer.HistoryReader
	HistoryLimit int
	Engine       string

	Port          int
	SessionSecret string
	SessionTTL    time.Duration
	Dev           bool

	// WatchDir is watched for asset edits in dev mode; empty watches the
	// static asset directory.
	WatchDir string

	// CleanupInterval is how often expired workspaces are removed; zero uses
	// DefaultCleanupInterval.
	CleanupInterval time.Duration

	Logger *slog.Logger
}

// Server is the dashboard HTTP server.
type Server struct {
	cfg          Config
	sessionStore *sessions.CookieStore
	notifier     *notifier.Notifier
	reload       chan struct{}
	logger       *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("ui: workspace registry is required")
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, errors.New("ui: session secret must be at least 32 bytes (ui.session_secret)")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = workspace.DefaultTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(int(cfg.SessionTTL.Seconds()))
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		cfg:          cfg,
		sessionStore: sessionStore,
		notifier:     notifier.New(),
		reload:       make(chan struct{}, 1),
		logger:       logger,
	}, nil
}

// Handler builds the routed handler with the server's middleware.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	err := router.SetupRoutes(r, explorer.Config{
		Registry:     s.cfg.Registry,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		History:      s.cfg.History,
		HistoryLimit: s.cfg.HistoryLimit,
		Engine:       s.cfg.Engine,
		IsDev:        s.cfg.Dev,
		Logger:       s.logger,
	}, s.reload)
	if err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
// Expired workspaces are swept in the background while it runs.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.cfg.Registry.StartCleanupRoutine(s.cfg.CleanupInterval)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.serve(ctx, listener, handler)
}

func (s *Server) serve(ctx context.Context, listener net.Listener, handler http.Handler) error {
	s.logger.Info("starting UI server", slog.String("addr", "http://"+displayAddr(listener.Addr())))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if s.cfg.Dev {
		eg.Go(func() error {
			return s.watchAssets(egctx)
		})
	}

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func displayAddr(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.IP.IsUnspecified() {
		return fmt.Sprintf("localhost:%d", tcp.Port)
	}
	return addr.String()
}
