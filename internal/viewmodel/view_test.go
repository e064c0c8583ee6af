package viewmodel

import (
	"context"
	"testing"

	"github.com/leapstack-labs/leapview/internal/chart"
	"github.com/leapstack-labs/leapview/internal/session"
	"github.com/leapstack-labs/leapview/internal/testutil"
	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualifiedID(t *testing.T) {
	tests := []struct {
		name                  string
		scope, dataset, table string
		want                  string
	}{
		{"full", "bigquery-public-data", "samples", "shakespeare", "`bigquery-public-data.samples.shakespeare`"},
		{"no scope", "", "main", "orders", "`main.orders`"},
		{"dataset only", "p", "samples", "", "`p.samples`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QualifiedID(tt.scope, tt.dataset, tt.table))
		})
	}
}

func TestDefaultQuery(t *testing.T) {
	assert.Equal(t,
		"SELECT * \nFROM `bigquery-public-data.<dataset_id>.<table_id>`\nLIMIT 10;",
		DefaultQuery("bigquery-public-data", "", ""))
	assert.Equal(t,
		"SELECT * \nFROM `bigquery-public-data.samples.natality`\nLIMIT 10;",
		DefaultQuery("bigquery-public-data", "samples", "natality"))
}

func TestBuildView_Initial(t *testing.T) {
	v := BuildView(context.Background(), session.NewWithDefaults(), "bigquery-public-data")

	assert.False(t, v.Connected)
	assert.Nil(t, v.Preview)
	assert.Nil(t, v.Error)
	assert.Empty(t, v.Warning)
	assert.Contains(t, v.QueryText, "<dataset_id>")

	assert.False(t, v.Chart.Available)
	assert.Equal(t, MsgChartNeedsResult, v.Chart.Placeholder)
	assert.Equal(t, MsgNoPlotData, v.Chart.NotReady)
	assert.Equal(t, NoResult, v.Chart.Readiness)
	assert.Equal(t, chart.Scatter, v.Chart.Type)
}

func TestBuildView_Preview(t *testing.T) {
	engine := testutil.NewFakeEngine()
	engine.SetMetadata("samples", "shakespeare", []core.FieldSchema{
		{Name: "word", Type: "STRING", Mode: core.ModeRequired},
		{Name: "word_count", Type: "INTEGER", Mode: core.ModeNullable},
	})
	client, err := engine.Connect(context.Background(), &core.Credentials{})
	require.NoError(t, err)

	s := session.NewWithDefaults()
	s.Set(session.Credentials, client)
	s.Set(session.SelectedDataset, "samples")
	s.Set(session.SelectedTable, "shakespeare")

	v := BuildView(context.Background(), s, "bigquery-public-data")
	assert.True(t, v.Connected)
	assert.Equal(t, "`bigquery-public-data.samples.shakespeare`", v.QualifiedID)
	require.NotNil(t, v.Preview)
	assert.Nil(t, v.Preview.Error)
	assert.Len(t, v.Preview.Fields, 2)
	assert.Contains(t, v.QueryText, "samples.shakespeare")

	s.Set(session.SelectedTable, "missing")
	v = BuildView(context.Background(), s, "bigquery-public-data")
	require.NotNil(t, v.Preview.Error)
	assert.Equal(t, ContextTableSchema, v.Preview.Error.Context)
	assert.Contains(t, v.Preview.Error.Message, "missing")
}

func TestBuildView_PreviewWithoutClient(t *testing.T) {
	s := session.NewWithDefaults()
	s.Set(session.SelectedDataset, "samples")
	s.Set(session.SelectedTable, "shakespeare")

	v := BuildView(context.Background(), s, "")
	require.NotNil(t, v.Preview)
	require.NotNil(t, v.Preview.Error)
	assert.Equal(t, core.ErrNotConnected.Error(), v.Preview.Error.Message)
}

func TestBuildView_Errors(t *testing.T) {
	t.Run("warning without context", func(t *testing.T) {
		s := session.NewWithDefaults()
		s.Set(session.QueryError, MsgEmptyQuery)

		v := BuildView(context.Background(), s, "")
		assert.Equal(t, MsgEmptyQuery, v.Warning)
		assert.Nil(t, v.Error)
	})

	t.Run("query failure panel", func(t *testing.T) {
		s := session.NewWithDefaults()
		s.Set(session.QueryError, "Unrecognized name: foo")
		s.Set(session.ErrorContext, ContextRunningQuery)

		v := BuildView(context.Background(), s, "")
		require.NotNil(t, v.Error)
		assert.Equal(t, MsgGenericError, v.Error.Headline)
		assert.Equal(t, MsgQueryFailed, v.Error.Summary)
		assert.Equal(t, "Unrecognized name: foo", v.Error.Message)
		assert.Equal(t, ErrorHints, v.Error.Hints)
	})

	t.Run("listing failure has no summary", func(t *testing.T) {
		s := session.NewWithDefaults()
		s.Set(session.QueryError, "permission denied")
		s.Set(session.ErrorContext, ContextListDatasets)

		v := BuildView(context.Background(), s, "")
		require.NotNil(t, v.Error)
		assert.Empty(t, v.Error.Summary)
		assert.Equal(t, ContextListDatasets, v.Error.Context)
	})
}

func TestBuildView_Chart(t *testing.T) {
	result := testutil.NewTable(t,
		[]core.Column{
			{Name: "year", Type: "INT64", Kind: core.KindInteger},
			{Name: "births", Type: "INT64", Kind: core.KindInteger},
			{Name: "state", Type: "STRING", Kind: core.KindString},
		},
		[]any{int64(2001), int64(10), "CA"},
		[]any{int64(2002), int64(12), "NY"},
	)

	tests := []struct {
		name      string
		x, y      string
		plot      bool
		readiness Readiness
		rendered  bool
		notReady  string
	}{
		{"axes unset", "", "", false, AxesUnset, false, MsgChartNotReady},
		{"axes set", "year", "births", false, AxesSet, false, MsgChartNotReady},
		{"plot ready", "year", "births", true, PlotReady, true, ""},
		{"stale field", "year", "deaths", true, PlotReady, false, MsgInvalidFields + "year, births, state"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session.NewWithDefaults()
			s.Set(session.QueryResult, result)
			s.Set(session.ChartX, tt.x)
			s.Set(session.ChartY, tt.y)
			s.Set(session.PlotReady, tt.plot)
			s.Set(session.ChartType, string(chart.Line))

			cv := BuildView(context.Background(), s, "").Chart
			assert.True(t, cv.Available)
			assert.Equal(t, []string{"year", "births", "state"}, cv.Columns)
			assert.Equal(t, tt.readiness, cv.Readiness)
			assert.Equal(t, tt.notReady, cv.NotReady)
			if tt.rendered {
				require.NotNil(t, cv.Spec)
				assert.Equal(t, chart.Line, cv.Spec.Mark)
				assert.False(t, cv.Spec.HasLegend(), "both axes are numeric")
				assert.Contains(t, cv.VegaLite, `"mark"`)
			} else {
				assert.Nil(t, cv.Spec)
				assert.Empty(t, cv.VegaLite)
			}
		})
	}
}

func TestReadiness_String(t *testing.T) {
	assert.Equal(t, "no result", NoResult.String())
	assert.Equal(t, "axes unset", AxesUnset.String())
	assert.Equal(t, "axes set", AxesSet.String())
	assert.Equal(t, "plot ready", PlotReady.String())
}
