package commands

import (
	"errors"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/leapview/internal/history"
	"github.com/spf13/cobra"
)

// maxSQLWidth bounds the SQL column of the history listing.
const maxSQLWidth = 60

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Format    string
	Limit     int
	Workspace string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently executed queries",
		Long: `Show the queries recorded in the query history database, newest first.

Queries from the dashboard are recorded per browser workspace; one-shot
queries from 'leapview query' are recorded under the "cli" workspace.`,
		Example: `  leapview history
  leapview history --limit 5 --workspace cli --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of entries")
	cmd.Flags().StringVar(&opts.Workspace, "workspace", "", "Only show queries of this workspace")

	return cmd
}

// historyRecord is the JSON form of a history entry.
type historyRecord struct {
	ExecutedAt time.Time      `json:"executed_at"`
	Workspace  string         `json:"workspace"`
	Status     history.Status `json:"status"`
	Rows       int            `json:"rows"`
	DurationMs int64          `json:"duration_ms"`
	SQL        string         `json:"sql"`
	Error      string         `json:"error,omitempty"`
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cc := NewCommandContext(cmd)

	store, err := cc.OpenHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("query history is disabled (set history.enabled: true)")
	}
	defer func() { _ = store.Close() }()

	var entries []history.Entry
	if opts.Workspace != "" {
		entries, err = store.Recent(cmd.Context(), opts.Workspace, opts.Limit)
	} else {
		entries, err = store.RecentAll(cmd.Context(), opts.Limit)
	}
	if err != nil {
		return err
	}

	format := formatOrDefault(opts.Format, cc.Cfg.Output)
	if format == "json" {
		records := make([]historyRecord, len(entries))
		for i, e := range entries {
			records[i] = historyRecord{
				ExecutedAt: e.ExecutedAt,
				Workspace:  e.WorkspaceID,
				Status:     e.Status,
				Rows:       e.RowCount,
				DurationMs: e.Duration.Milliseconds(),
				SQL:        e.SQL,
				Error:      e.Error,
			}
		}
		return renderJSON(cc.Out, records)
	}

	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		sql := strings.Join(strings.Fields(e.SQL), " ")
		if isTableFormat(format) {
			sql = text.Trim(sql, maxSQLWidth)
		}
		rows[i] = table.Row{
			e.ExecutedAt.Format(time.DateTime),
			e.WorkspaceID,
			string(e.Status),
			e.RowCount,
			e.Duration.Round(time.Millisecond).String(),
			sql,
		}
	}
	return renderRows(cc.Out, table.Row{"Executed", "Workspace", "Status", "Rows", "Duration", "SQL"}, rows, format)
}
