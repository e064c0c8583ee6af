package viewmodel

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapview/internal/chart"
	"github.com/leapstack-labs/leapview/internal/session"
	"github.com/leapstack-labs/leapview/pkg/core"
)

// View is everything a render pass shows. It is derived from the session
// on every render and never stored.
type View struct {
	Scope            string
	Connected        bool
	CredentialsError string
	Notice           string

	Datasets        []string
	SelectedDataset string
	Tables          []string
	SelectedTable   string
	QualifiedID     string
	Preview         *Preview

	QueryText string
	Result    *core.Table
	Warning   string
	Error     *ErrorPanel

	Chart ChartView
}

// Preview is the schema preview of the selected table.
type Preview struct {
	Table  string
	Fields []core.FieldSchema
	Error  *ErrorPanel
}

// ErrorPanel is the generic error display.
type ErrorPanel struct {
	Headline string
	Summary  string
	Context  string
	Message  string
	Hints    []string
}

// ChartView is the chart builder and its output.
type ChartView struct {
	// Available is false until a non-empty result exists; Placeholder says why.
	Available   bool
	Placeholder string

	Columns   []string
	X         string
	Y         string
	Type      chart.Type
	Types     []chart.Type
	Readiness Readiness

	// Either Spec and VegaLite are set, or NotReady explains the absence.
	Spec     *chart.Spec
	VegaLite string
	NotReady string
}

// BuildView derives the view from the session. The only I/O is the
// read-only table preview, fetched from the session's client.
func BuildView(ctx context.Context, s *session.Store, scope string) View {
	client := session.Must[core.Client](s, session.Credentials)
	dataset := session.Must[string](s, session.SelectedDataset)
	table := session.Must[string](s, session.SelectedTable)

	v := View{
		Scope:            scope,
		Connected:        client != nil,
		CredentialsError: session.Must[string](s, session.CredentialsError),
		Notice:           session.Must[string](s, session.Notice),
		Datasets:         session.Must[[]string](s, session.Datasets),
		SelectedDataset:  dataset,
		Tables:           session.Must[[]string](s, session.Schema),
		SelectedTable:    table,
		Result:           session.Must[*core.Table](s, session.QueryResult),
	}

	if dataset != "" && table != "" {
		v.QualifiedID = QualifiedID(scope, dataset, table)
		v.Preview = buildPreview(ctx, client, dataset, table)
	}

	v.QueryText = session.Must[string](s, session.QueryText)
	if v.QueryText == "" {
		v.QueryText = DefaultQuery(scope, dataset, table)
	}

	if msg := session.Must[string](s, session.QueryError); msg != "" {
		errCtx := session.Must[string](s, session.ErrorContext)
		if errCtx == "" {
			v.Warning = msg
		} else {
			v.Error = newErrorPanel(errCtx, msg)
		}
	}

	v.Chart = buildChart(s, v.Result)
	return v
}

// QualifiedID returns the backtick-quoted id of a table, ready to paste into SQL.
func QualifiedID(scope, dataset, table string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{scope, dataset, table} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return "`" + strings.Join(parts, ".") + "`"
}

// DefaultQuery is the editor template shown before any query was submitted.
func DefaultQuery(scope, dataset, table string) string {
	if dataset == "" {
		dataset = "<dataset_id>"
	}
	if table == "" {
		table = "<table_id>"
	}
	return fmt.Sprintf("SELECT * \nFROM %s\nLIMIT 10;", QualifiedID(scope, dataset, table))
}

func newErrorPanel(label, msg string) *ErrorPanel {
	panel := &ErrorPanel{
		Headline: MsgGenericError,
		Context:  label,
		Message:  msg,
		Hints:    ErrorHints,
	}
	if label == ContextRunningQuery || label == ContextDatasetSchema {
		panel.Summary = MsgQueryFailed
	}
	return panel
}

func buildPreview(ctx context.Context, client core.Client, dataset, table string) *Preview {
	p := &Preview{Table: table}
	if client == nil {
		p.Error = newErrorPanel(ContextTableSchema, core.ErrNotConnected.Error())
		return p
	}

	fields, err := client.GetTableMetadata(ctx, dataset, table)
	if err != nil {
		p.Error = newErrorPanel(ContextTableSchema, err.Error())
		return p
	}
	p.Fields = fields
	return p
}

func buildChart(s *session.Store, result *core.Table) ChartView {
	cv := ChartView{
		X:         session.Must[string](s, session.ChartX),
		Y:         session.Must[string](s, session.ChartY),
		Type:      chart.ParseChartType(session.Must[string](s, session.ChartType)),
		Types:     chart.Types,
		Readiness: ReadinessOf(s),
	}

	if result == nil || result.Empty() {
		cv.Placeholder = MsgChartNeedsResult
		cv.NotReady = MsgNoPlotData
		return cv
	}
	cv.Available = true
	cv.Columns = result.ColumnNames()

	if cv.Readiness != PlotReady {
		cv.NotReady = MsgChartNotReady
		return cv
	}

	if !result.HasColumn(cv.X) || !result.HasColumn(cv.Y) {
		cv.NotReady = MsgInvalidFields + strings.Join(cv.Columns, ", ")
		return cv
	}

	spec, err := chart.Build(result, cv.X, cv.Y, cv.Type)
	if err != nil {
		cv.NotReady = err.Error()
		return cv
	}
	doc, err := chart.VegaLite(spec, result)
	if err != nil {
		cv.NotReady = err.Error()
		return cv
	}

	cv.Spec = &spec
	cv.VegaLite = string(doc)
	return cv
}
