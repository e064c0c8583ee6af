// Package duckdb provides a DuckDB query engine for leapview.
//
// Schemas play the role of datasets and the attached catalog plays the role
// of the scope. Import this package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/leapview/pkg/engines/duckdb"
package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/leapstack-labs/leapview/pkg/engine"
)

func init() {
	engine.Register("duckdb", func(cfg core.EngineConfig, logger *slog.Logger) core.Connector {
		return New(cfg, logger)
	})
}
