package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/leapstack-labs/leapview/pkg/engine"
)

func init() {
	engine.Register("postgres", func(cfg core.EngineConfig, logger *slog.Logger) core.Connector {
		return New(cfg, logger)
	})
}
