package core

import (
	"context"
)

// Connector exchanges Credentials for a connected Client.
// Implementations must not retain the Credentials after Connect returns.
type Connector interface {
	Connect(ctx context.Context, creds *Credentials) (Client, error)
}

// Client is a connected warehouse handle. It is the only source of Tables.
type Client interface {
	// Execute runs a SQL statement and returns its full result.
	Execute(ctx context.Context, sql string) (*Table, error)

	// ListDatasets returns the dataset ids visible in scope, sorted.
	ListDatasets(ctx context.Context, scope string) ([]string, error)

	// ListTables returns the table ids of a dataset in the client's scope, sorted.
	ListTables(ctx context.Context, dataset string) ([]string, error)

	// GetTableMetadata returns the schema preview of one table.
	GetTableMetadata(ctx context.Context, dataset, table string) ([]FieldSchema, error)

	// Close releases the connection.
	Close() error
}

// EngineConfig holds the static configuration of a query engine.
type EngineConfig struct {
	Type     string
	Scope    string
	Location string
	Path     string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxRows  int
	Params   map[string]any
}
