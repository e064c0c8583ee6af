package session

import "github.com/leapstack-labs/leapview/pkg/core"

// Session slots.
const (
	SelectedDataset  Key = "selected_dataset"
	SelectedTable    Key = "selected_table"
	Schema           Key = "schema"
	QueryResult      Key = "query_result"
	QueryError       Key = "query_error"
	ErrorContext     Key = "error_context"
	ChartX           Key = "chart_x"
	ChartY           Key = "chart_y"
	ChartType        Key = "chart_type"
	PlotReady        Key = "plot_ready"
	Credentials      Key = "credentials"
	LastSeenColumns  Key = "last_seen_columns"
	Datasets         Key = "datasets"
	QueryText        Key = "query_text"
	CredentialsError Key = "credentials_error"
	Notice           Key = "notice"
)

// Defaults returns a fresh default for every slot.
func Defaults() map[Key]any {
	return map[Key]any{
		SelectedDataset:  "",
		SelectedTable:    "",
		Schema:           []string{},
		QueryResult:      (*core.Table)(nil),
		QueryError:       "",
		ErrorContext:     "",
		ChartX:           "",
		ChartY:           "",
		ChartType:        "",
		PlotReady:        false,
		Credentials:      (core.Client)(nil),
		LastSeenColumns:  []string(nil),
		Datasets:         []string{},
		QueryText:        "",
		CredentialsError: "",
		Notice:           "",
	}
}
