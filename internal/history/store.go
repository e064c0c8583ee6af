// Package history keeps a SQLite log of the queries users executed.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver
)

// Status is the outcome of an executed query.
type Status string

// Query outcomes.
const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Entry is one executed query.
type Entry struct {
	ID          string
	WorkspaceID string
	SQL         string
	Status      Status
	RowCount    int
	Duration    time.Duration
	Error       string
	ExecutedAt  time.Time
}

// Store is the SQLite-backed query history.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a history store. If logger is nil, a discard logger is used.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger, now: time.Now}
}

// Open opens the database and applies migrations.
// Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create history directory: %w", err)
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("history opened", slog.String("path", path))

	if err := s.Migrate(context.Background()); err != nil {
		_ = s.Close()
		return err
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Record stores e, assigning an ID and execution time when they are unset.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = s.now()
	}

	var errMsg *string
	if e.Error != "" {
		errMsg = &e.Error
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_history (id, workspace_id, sql_text, status, row_count, duration_ms, error, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.WorkspaceID, e.SQL, string(e.Status), e.RowCount,
		e.Duration.Milliseconds(), errMsg, e.ExecutedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

// Recent returns the latest entries of one workspace, newest first.
func (s *Store) Recent(ctx context.Context, workspaceID string, limit int) ([]Entry, error) {
	return s.list(ctx,
		`SELECT id, workspace_id, sql_text, status, row_count, duration_ms, error, executed_at
		 FROM query_history WHERE workspace_id = ?
		 ORDER BY executed_at DESC, rowid DESC LIMIT ?`,
		workspaceID, normalizeLimit(limit))
}

// RecentAll returns the latest entries across workspaces, newest first.
func (s *Store) RecentAll(ctx context.Context, limit int) ([]Entry, error) {
	return s.list(ctx,
		`SELECT id, workspace_id, sql_text, status, row_count, duration_ms, error, executed_at
		 FROM query_history
		 ORDER BY executed_at DESC, rowid DESC LIMIT ?`,
		normalizeLimit(limit))
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			status     string
			durationMs int64
			errMsg     sql.NullString
			executedAt int64
		)
		if err := rows.Scan(&e.ID, &e.WorkspaceID, &e.SQL, &status, &e.RowCount, &durationMs, &errMsg, &executedAt); err != nil {
			return nil, fmt.Errorf("failed to scan query history: %w", err)
		}
		e.Status = Status(status)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.Error = errMsg.String
		e.ExecutedAt = time.UnixMilli(executedAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}
