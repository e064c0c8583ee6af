// Package bigquery provides the Google BigQuery query engine for leapview.
//
// A saved service-account key is exchanged for a *bigquery.Client billed to
// the key's project. Datasets and tables are listed from the configured
// scope project (bigquery-public-data by default).
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// DefaultScope is the project browsed when none is configured.
const DefaultScope = "bigquery-public-data"

// Connector exchanges service-account keys for BigQuery clients.
type Connector struct {
	cfg    core.EngineConfig
	logger *slog.Logger
}

// New creates a BigQuery connector.
// If logger is nil, a discard logger is used.
func New(cfg core.EngineConfig, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}
	return &Connector{cfg: cfg, logger: logger}
}

// Connect creates a client from the raw key document. The key bytes are not
// retained by the returned client.
func (c *Connector) Connect(ctx context.Context, creds *core.Credentials) (core.Client, error) {
	if creds == nil || len(creds.Raw) == 0 {
		return nil, errors.New("missing service account key document")
	}
	if creds.ProjectID == "" {
		return nil, errors.New("service account key has no project_id")
	}

	c.logger.Debug("connecting to bigquery",
		slog.String("project", creds.ProjectID),
		slog.String("scope", c.cfg.Scope))

	key := append([]byte(nil), creds.Raw...)
	defer clear(key)

	client, err := bigquery.NewClient(ctx, creds.ProjectID, option.WithCredentialsJSON(key))
	if err != nil {
		return nil, err
	}
	if c.cfg.Location != "" {
		client.Location = c.cfg.Location
	}

	return &Client{bq: client, cfg: c.cfg, logger: c.logger}, nil
}

// Client is a connected BigQuery handle.
type Client struct {
	bq     *bigquery.Client
	cfg    core.EngineConfig
	logger *slog.Logger
}

// Execute runs a query job and reads its result, stopping at cfg.MaxRows.
func (c *Client) Execute(ctx context.Context, sql string) (*core.Table, error) {
	it, err := c.bq.Query(sql).Read(ctx)
	if err != nil {
		return nil, err
	}

	var (
		rows      [][]bigquery.Value
		truncated bool
	)
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		if c.cfg.MaxRows > 0 && len(rows) == c.cfg.MaxRows {
			truncated = true
			break
		}
		rows = append(rows, row)
	}

	c.logger.Debug("bigquery query finished", "rows", len(rows), "total_rows", it.TotalRows, "truncated", truncated)
	return tableFromRows(it.Schema, rows, truncated)
}

// ListDatasets lists the datasets of a project.
func (c *Client) ListDatasets(ctx context.Context, scope string) ([]string, error) {
	if scope == "" {
		scope = c.cfg.Scope
	}

	it := c.bq.Datasets(ctx)
	it.ProjectID = scope

	var ids []string
	for {
		ds, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, ds.DatasetID)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListTables lists the tables of a dataset in the client's scope.
func (c *Client) ListTables(ctx context.Context, dataset string) ([]string, error) {
	it := c.bq.DatasetInProject(c.cfg.Scope, dataset).Tables(ctx)

	var ids []string
	for {
		t, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.TableID)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetTableMetadata returns the top-level fields of a table schema.
func (c *Client) GetTableMetadata(ctx context.Context, dataset, table string) ([]core.FieldSchema, error) {
	md, err := c.bq.DatasetInProject(c.cfg.Scope, dataset).Table(table).Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table metadata: %w", err)
	}
	return fieldsFromSchema(md.Schema), nil
}

// Close closes the underlying client.
func (c *Client) Close() error {
	return c.bq.Close()
}

var (
	_ core.Connector = (*Connector)(nil)
	_ core.Client    = (*Client)(nil)
)
