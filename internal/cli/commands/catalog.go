package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapview/internal/viewmodel"
	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/spf13/cobra"
)

// NewDatasetsCommand creates the datasets command.
func NewDatasetsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the datasets in the configured scope",
		Example: `  leapview datasets
  leapview datasets --scope my-project --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			ctx, cancel := cc.WithTimeout(cmd.Context())
			defer cancel()

			client, cleanup, err := cc.Connect(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			datasets, err := client.ListDatasets(ctx, cc.Cfg.Engine.Scope)
			if err != nil {
				return core.NewEngineError("Listing datasets", err)
			}
			return renderList(cc.Out, "Dataset", datasets, formatOrDefault(format, cc.Cfg.Output))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json, csv, md")
	return cmd
}

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "tables <dataset>",
		Short:   "List the tables of a dataset",
		Example: `  leapview tables sales`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			ctx, cancel := cc.WithTimeout(cmd.Context())
			defer cancel()

			client, cleanup, err := cc.Connect(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			tables, err := client.ListTables(ctx, args[0])
			if err != nil {
				return core.NewEngineError("Loading tables", err)
			}
			return renderList(cc.Out, "Table", tables, formatOrDefault(format, cc.Cfg.Output))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json, csv, md")
	return cmd
}

// describeOutput is the JSON form of describe.
type describeOutput struct {
	ID     string             `json:"id"`
	Query  string             `json:"query"`
	Fields []core.FieldSchema `json:"fields"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "describe <dataset> <table>",
		Short:   "Show the schema of a table",
		Example: `  leapview describe sales orders`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			ctx, cancel := cc.WithTimeout(cmd.Context())
			defer cancel()

			client, cleanup, err := cc.Connect(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			dataset, tbl := args[0], args[1]
			fields, err := client.GetTableMetadata(ctx, dataset, tbl)
			if err != nil {
				return core.NewEngineError("Loading table schema", err)
			}

			scope := cc.Cfg.Engine.Scope
			out := describeOutput{
				ID:     viewmodel.QualifiedID(scope, dataset, tbl),
				Query:  viewmodel.DefaultQuery(scope, dataset, tbl),
				Fields: fields,
			}

			format = formatOrDefault(format, cc.Cfg.Output)
			if format == "json" {
				return renderJSON(cc.Out, out)
			}

			if isTableFormat(format) {
				_, _ = fmt.Fprintf(cc.Out, "Table: %s\n", out.ID)
			}
			rows := make([]table.Row, len(fields))
			for i, f := range fields {
				rows[i] = table.Row{f.Name, f.Type, f.Mode}
			}
			return renderRows(cc.Out, table.Row{"Name", "Type", "Mode"}, rows, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json, csv, md")
	return cmd
}
