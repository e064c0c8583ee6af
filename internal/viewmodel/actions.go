// Package viewmodel is the session-state-driven view model of leapview.
//
// A user action is reduced against the session (Reduce), producing the next
// session and effect requests. The Dispatcher runs the effects against the
// query engine and reduces their outcomes back in. BuildView then derives
// everything the user sees from the session alone.
package viewmodel

import (
	"github.com/leapstack-labs/leapview/pkg/core"
)

// Action is a user event or an effect outcome.
type Action interface {
	actionName() string
}

// Axis names a chart axis.
type Axis string

// Chart axes.
const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// User actions.
type (
	// SelectDataset switches the browsed dataset.
	SelectDataset struct{ Dataset string }

	// SubmitQuery runs SQL against the warehouse.
	SubmitQuery struct{ SQL string }

	// SelectTable picks the table whose schema is previewed.
	SelectTable struct{ Table string }

	// SetAxis stores the field plotted on an axis.
	SetAxis struct {
		Axis  Axis
		Field string
	}

	// SetChartType stores the raw chart type selection.
	SetChartType struct{ Type string }

	// RequestPlot asks for the chart to be drawn.
	RequestPlot struct{}

	// SaveCredentials exchanges a pasted key for a warehouse client.
	// The caller owns Blob and clears it after dispatch.
	SaveCredentials struct{ Blob []byte }

	// RefreshDatasets reloads the dataset list.
	RefreshDatasets struct{}
)

// Result actions, produced by the Dispatcher from effect outcomes.
type (
	// QueryCompleted carries the outcome of ExecuteQuery.
	QueryCompleted struct {
		SQL   string
		Table *core.Table
		Err   error
	}

	// TablesLoaded carries the outcome of ListTables.
	TablesLoaded struct {
		Dataset string
		Tables  []string
		Err     error
	}

	// DatasetsLoaded carries the outcome of ListDatasets.
	DatasetsLoaded struct {
		Datasets []string
		Err      error
	}

	// Connected carries the outcome of Connect.
	Connected struct {
		Handle core.Client
		Err    error
	}
)

func (SelectDataset) actionName() string   { return "select_dataset" }
func (SubmitQuery) actionName() string     { return "submit_query" }
func (SelectTable) actionName() string     { return "select_table" }
func (SetAxis) actionName() string         { return "set_axis" }
func (SetChartType) actionName() string    { return "set_chart_type" }
func (RequestPlot) actionName() string     { return "request_plot" }
func (SaveCredentials) actionName() string { return "save_credentials" }
func (RefreshDatasets) actionName() string { return "refresh_datasets" }
func (QueryCompleted) actionName() string  { return "query_completed" }
func (TablesLoaded) actionName() string    { return "tables_loaded" }
func (DatasetsLoaded) actionName() string  { return "datasets_loaded" }
func (Connected) actionName() string       { return "connected" }

// Name returns the log name of an action.
func Name(a Action) string { return a.actionName() }
