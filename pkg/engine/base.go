package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// systemSchemas are never offered as datasets.
var systemSchemas = []string{"information_schema", "pg_catalog", "pg_toast"}

// BaseSQLClient implements core.Client on top of database/sql for engines
// whose datasets are schemas listed in information_schema.
// Embed it in concrete engines; placeholders use the $N form understood by
// both DuckDB and PostgreSQL.
type BaseSQLClient struct {
	DB     *sql.DB
	Cfg    core.EngineConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLClient) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLClient) IsConnected() bool {
	return b.DB != nil
}

// Execute runs a statement and reads at most Cfg.MaxRows rows.
func (b *BaseSQLClient) Execute(ctx context.Context, sqlStr string) (*core.Table, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tbl, err := ScanTable(rows, b.Cfg.MaxRows)
	if err != nil {
		return nil, err
	}
	if b.Logger != nil {
		b.Logger.Debug("query executed", "rows", tbl.NumRows(), "truncated", tbl.Truncated())
	}
	return tbl, nil
}

// ListDatasets lists the user schemas of a catalog. An empty scope lists
// schemas of every attached catalog.
func (b *BaseSQLClient) ListDatasets(ctx context.Context, scope string) ([]string, error) {
	query := `
		SELECT DISTINCT schema_name
		FROM information_schema.schemata
		WHERE (CAST($1 AS VARCHAR) = '' OR catalog_name = $1)
		ORDER BY schema_name`
	names, err := b.queryStrings(ctx, query, scope)
	if err != nil {
		return nil, err
	}

	datasets := names[:0]
	for _, name := range names {
		if !slices.Contains(systemSchemas, name) {
			datasets = append(datasets, name)
		}
	}
	return datasets, nil
}

// ListTables lists the tables and views of a schema.
func (b *BaseSQLClient) ListTables(ctx context.Context, dataset string) ([]string, error) {
	query := `
		SELECT DISTINCT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND (CAST($2 AS VARCHAR) = '' OR table_catalog = $2)
		ORDER BY table_name`
	return b.queryStrings(ctx, query, dataset, b.Cfg.Scope)
}

// GetTableMetadata reads a table's columns from information_schema.columns.
func (b *BaseSQLClient) GetTableMetadata(ctx context.Context, dataset, table string) ([]core.FieldSchema, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2 AND (CAST($3 AS VARCHAR) = '' OR table_catalog = $3)
		ORDER BY ordinal_position`

	rows, err := b.DB.QueryContext(ctx, query, dataset, table, b.Cfg.Scope)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fields []core.FieldSchema
	for rows.Next() {
		var field core.FieldSchema
		var nullable string
		if err := rows.Scan(&field.Name, &field.Type, &nullable); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		field.Mode = core.ModeNullable
		if nullable == "NO" {
			field.Mode = core.ModeRequired
		}
		fields = append(fields, field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("table %s.%s not found", dataset, table)
	}
	return fields, nil
}

func (b *BaseSQLClient) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
