// Package main is the leapview command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/leapview/internal/cli"

	// Engines register themselves with pkg/engine.
	_ "github.com/leapstack-labs/leapview/pkg/engines/bigquery"
	_ "github.com/leapstack-labs/leapview/pkg/engines/duckdb"
	_ "github.com/leapstack-labs/leapview/pkg/engines/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
