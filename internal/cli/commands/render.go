package commands

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// renderTable writes a result in the given format: table, json, csv or md.
func renderTable(w io.Writer, tbl *core.Table, format string) error {
	if format == "json" {
		return renderJSON(w, tbl.Records())
	}

	cols := tbl.ColumnNames()
	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}

	rows := make([]table.Row, tbl.NumRows())
	for i := range rows {
		row := make(table.Row, len(cols))
		for j := range cols {
			row[j] = formatValue(tbl.Value(i, j))
		}
		rows[i] = row
	}

	if err := renderRows(w, header, rows, format); err != nil {
		return err
	}
	if tbl.Truncated() && isTableFormat(format) {
		_, _ = fmt.Fprintln(w, "(result truncated at the row limit)")
	}
	return nil
}

// renderRows writes rows through go-pretty. The row count trailer is only
// written for the table format so csv and md stay machine readable.
func renderRows(w io.Writer, header table.Row, rows []table.Row, format string) error {
	if len(rows) == 0 && isTableFormat(format) {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)

	switch format {
	case "csv":
		t.RenderCSV()
	case "md", "markdown":
		t.RenderMarkdown()
	default:
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	}
	return nil
}

// renderList writes a single-column listing.
func renderList(w io.Writer, title string, items []string, format string) error {
	if format == "json" {
		if items == nil {
			items = []string{}
		}
		return renderJSON(w, items)
	}
	rows := make([]table.Row, len(items))
	for i, item := range items {
		rows[i] = table.Row{item}
	}
	return renderRows(w, table.Row{title}, rows, format)
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTableFormat(format string) bool {
	switch format {
	case "json", "csv", "md", "markdown":
		return false
	default:
		return true
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case []byte:
		return base64.StdEncoding.EncodeToString(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
