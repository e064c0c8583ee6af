package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/leapstack-labs/leapview/pkg/engine"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Connector opens one database per configured path and shares it between
// every client it hands out. The database is closed with the last client.
type Connector struct {
	cfg    core.EngineConfig
	logger *slog.Logger

	mu   sync.Mutex
	db   *sql.DB
	refs int
}

// New creates a DuckDB connector. Use ":memory:" or an empty path for an
// in-memory database.
func New(cfg core.EngineConfig, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Connector{cfg: cfg, logger: logger}
}

// Connect returns a client on the shared database. Credentials only gate
// access; DuckDB has no login.
func (c *Connector) Connect(ctx context.Context, _ *core.Credentials) (core.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		db, err := c.open(ctx)
		if err != nil {
			return nil, err
		}
		c.db = db
	}
	c.refs++

	return &Client{
		BaseSQLClient: engine.BaseSQLClient{DB: c.db, Cfg: c.cfg, Logger: c.logger},
		release:       c.release,
	}, nil
}

func (c *Connector) open(ctx context.Context) (*sql.DB, error) {
	params, err := ParseParams(c.cfg.Params)
	if err != nil {
		return nil, err
	}

	path := c.cfg.Path
	if path == ":memory:" {
		path = ""
	}

	c.logger.Debug("opening duckdb", slog.String("path", c.cfg.Path))
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	for _, stmt := range params.SetupStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply duckdb params: %w", err)
		}
	}
	return db, nil
}

func (c *Connector) release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refs--
	if c.refs == 0 && c.db != nil {
		c.logger.Debug("closing duckdb")
		_ = c.db.Close()
		c.db = nil
	}
}

// Client is a DuckDB handle on the connector's shared database.
type Client struct {
	engine.BaseSQLClient
	release   func()
	closeOnce sync.Once
}

// Close releases this client's reference to the shared database.
func (c *Client) Close() error {
	c.closeOnce.Do(c.release)
	return nil
}

var (
	_ core.Connector = (*Connector)(nil)
	_ core.Client    = (*Client)(nil)
)
