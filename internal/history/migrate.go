package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedded embed.FS

func newMigrator(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(embedded, "migrations")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(goose.DialectSQLite3, db, fsys)
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	p, err := newMigrator(s.db)
	if err != nil {
		return fmt.Errorf("failed to load history migrations: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate query history: %w", err)
	}
	for _, r := range results {
		s.logger.Debug("applied history migration", slog.String("source", r.Source.Path))
	}
	return nil
}

// SchemaVersion returns the latest applied migration.
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	p, err := newMigrator(s.db)
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}
