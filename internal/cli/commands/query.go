package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/leapstack-labs/leapview/internal/history"
	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// stdinIsTerminal reports whether stdin is interactive. Tests replace it.
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a SQL query against the warehouse",
		Long: `Run a SQL query against the configured warehouse and print the result.

SQL is taken from the arguments, from --input, or from piped stdin.
When invoked without SQL on a terminal, starts the interactive shell.`,
		Example: `  # Execute SQL directly
  leapview query "SELECT 1 AS one"

  # Read SQL from a file
  leapview query --input report.sql

  # Pipe SQL in and get JSON back
  echo "SELECT * FROM sales.orders LIMIT 5" | leapview query --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md (default: config output)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cc := NewCommandContext(cmd)

	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !stdinIsTerminal():
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		return runShell(cmd, &ShellOptions{Format: opts.Format})
	}

	sqlQuery = strings.TrimSpace(sqlQuery)
	if sqlQuery == "" {
		return fmt.Errorf("%w: no SQL to run", core.ErrEmptyInput)
	}

	ctx, cancel := cc.WithTimeout(cmd.Context())
	defer cancel()

	client, cleanup, err := cc.Connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	store, err := cc.OpenHistory()
	if err != nil {
		cc.Logger.Warn("query history unavailable", slog.String("error", err.Error()))
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	start := time.Now()
	tbl, err := client.Execute(ctx, sqlQuery)
	entry := history.Entry{
		WorkspaceID: cliWorkspace,
		SQL:         sqlQuery,
		Status:      history.StatusSucceeded,
		Duration:    time.Since(start),
	}
	if err != nil {
		entry.Status = history.StatusFailed
		entry.Error = err.Error()
		cc.recordQuery(cmd.Context(), store, entry)
		return core.NewEngineError("Executing query", err)
	}
	entry.RowCount = tbl.NumRows()
	cc.recordQuery(cmd.Context(), store, entry)

	return renderTable(cc.Out, tbl, formatOrDefault(opts.Format, cc.Cfg.Output))
}

func formatOrDefault(format, fallback string) string {
	if format != "" {
		return format
	}
	return fallback
}
