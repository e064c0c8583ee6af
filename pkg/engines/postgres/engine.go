// Package postgres provides a PostgreSQL query engine for leapview.
// Schemas play the role of datasets within the configured database.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/leapstack-labs/leapview/pkg/engine"
)

// Connector opens a PostgreSQL connection per saved key.
type Connector struct {
	cfg    core.EngineConfig
	logger *slog.Logger
}

// New creates a PostgreSQL connector.
// If logger is nil, a discard logger is used.
func New(cfg core.EngineConfig, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Scope == "" {
		cfg.Scope = cfg.Database
	}
	return &Connector{cfg: cfg, logger: logger}
}

// Connect establishes a connection. A login carried by the credentials
// overrides the configured user and password.
func (c *Connector) Connect(ctx context.Context, creds *core.Credentials) (core.Client, error) {
	dsn := buildPostgresDSN(c.cfg, creds)

	c.logger.Debug("connecting to postgres", slog.String("host", c.cfg.Host), slog.String("database", c.cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Client{engine.BaseSQLClient{DB: db, Cfg: c.cfg, Logger: c.logger}}, nil
}

// Client is a PostgreSQL handle.
type Client struct {
	engine.BaseSQLClient
}

// buildPostgresDSN constructs a key=value PostgreSQL connection string.
func buildPostgresDSN(cfg core.EngineConfig, creds *core.Credentials) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	user, password := cfg.User, cfg.Password
	if creds != nil && creds.User != "" {
		user, password = creds.User, creds.Password
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if user != "" {
		dsn += fmt.Sprintf(" user=%s", user)
	}
	if password != "" {
		dsn += fmt.Sprintf(" password=%s", password)
	}

	return dsn
}

var (
	_ core.Connector = (*Connector)(nil)
	_ core.Client    = (*Client)(nil)
)
