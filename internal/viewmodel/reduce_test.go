package viewmodel

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapview/internal/session"
	"github.com/leapstack-labs/leapview/internal/testutil"
	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_DoesNotModifyInput(t *testing.T) {
	prev := session.NewWithDefaults()

	next, _ := Reduce(prev, SelectDataset{Dataset: "samples"})

	assert.Equal(t, "", session.Must[string](prev, session.SelectedDataset))
	assert.Equal(t, "samples", session.Must[string](next, session.SelectedDataset))
}

func TestReduce_SelectDataset(t *testing.T) {
	prev := session.NewWithDefaults()
	prev.Set(session.SelectedDataset, "old")
	prev.Set(session.SelectedTable, "t1")
	prev.Set(session.Schema, []string{"t1", "t2"})

	next, effects := Reduce(prev, SelectDataset{Dataset: "samples"})
	assert.Equal(t, []Effect{ListTables{Dataset: "samples"}}, effects)
	assert.Equal(t, "samples", session.Must[string](next, session.SelectedDataset))
	assert.Equal(t, "", session.Must[string](next, session.SelectedTable))
	assert.Empty(t, session.Must[[]string](next, session.Schema))

	same, effects := Reduce(next, SelectDataset{Dataset: "samples"})
	assert.Empty(t, effects, "reselecting the same dataset is a no-op")
	assert.Equal(t, "samples", session.Must[string](same, session.SelectedDataset))

	cleared, effects := Reduce(next, SelectDataset{Dataset: ""})
	assert.Empty(t, effects)
	assert.Equal(t, "", session.Must[string](cleared, session.SelectedDataset))
}

func TestReduce_SubmitQuery(t *testing.T) {
	tests := []struct {
		name        string
		sql         string
		wantEffects []Effect
		wantError   string
	}{
		{name: "empty", sql: "", wantError: MsgEmptyQuery},
		{name: "whitespace", sql: "  \n\t ", wantError: MsgEmptyQuery},
		{name: "query", sql: "SELECT 1", wantEffects: []Effect{ExecuteQuery{SQL: "SELECT 1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := session.NewWithDefaults()
			result := testutil.NewTable(t, []core.Column{{Name: "a", Kind: core.KindInteger}}, []any{int64(1)})
			prev.Set(session.QueryResult, result)

			next, effects := Reduce(prev, SubmitQuery{SQL: tt.sql})
			assert.Equal(t, tt.wantEffects, effects)
			assert.Equal(t, tt.wantError, session.Must[string](next, session.QueryError))
			assert.Same(t, result, session.Must[*core.Table](next, session.QueryResult), "result unchanged until completion")
		})
	}
}

func TestReduce_QueryCompleted(t *testing.T) {
	ab := testutil.NewTable(t,
		[]core.Column{{Name: "a", Kind: core.KindInteger}, {Name: "b", Kind: core.KindInteger}},
		[]any{int64(1), int64(2)},
	)

	t.Run("success clears error and records columns", func(t *testing.T) {
		prev := session.NewWithDefaults()
		prev.Set(session.QueryError, "old failure")
		prev.Set(session.ErrorContext, ContextRunningQuery)

		next, effects := Reduce(prev, QueryCompleted{SQL: "q", Table: ab})
		assert.Empty(t, effects)
		assert.Same(t, ab, session.Must[*core.Table](next, session.QueryResult))
		assert.Equal(t, "", session.Must[string](next, session.QueryError))
		assert.Equal(t, MsgQuerySucceeded, session.Must[string](next, session.Notice))
		assert.Equal(t, []string{"a", "b"}, session.Must[[]string](next, session.LastSeenColumns))
	})

	t.Run("same columns keep chart selections", func(t *testing.T) {
		prev, _ := Reduce(session.NewWithDefaults(), QueryCompleted{Table: ab})
		prev.Set(session.ChartX, "a")
		prev.Set(session.ChartY, "b")
		prev.Set(session.ChartType, "Bar")
		prev.Set(session.PlotReady, true)

		next, _ := Reduce(prev, QueryCompleted{Table: ab})
		assert.Equal(t, "a", session.Must[string](next, session.ChartX))
		assert.Equal(t, "Bar", session.Must[string](next, session.ChartType))
		assert.True(t, session.Must[bool](next, session.PlotReady))
	})

	t.Run("failure clears result", func(t *testing.T) {
		prev := session.NewWithDefaults()
		prev.Set(session.QueryResult, ab)

		engineErr := core.NewEngineError(ContextRunningQuery, errors.New("Syntax error: Unexpected end of script"))
		next, _ := Reduce(prev, QueryCompleted{SQL: "SELECT", Err: engineErr})
		assert.Nil(t, session.Must[*core.Table](next, session.QueryResult))
		assert.Equal(t, "Syntax error: Unexpected end of script", session.Must[string](next, session.QueryError))
		assert.Equal(t, ContextRunningQuery, session.Must[string](next, session.ErrorContext))
	})
}

func TestReduce_TablesLoaded(t *testing.T) {
	prev := session.NewWithDefaults()
	prev.Set(session.SelectedDataset, "samples")

	t.Run("success", func(t *testing.T) {
		next, _ := Reduce(prev, TablesLoaded{Dataset: "samples", Tables: []string{"natality", "shakespeare"}})
		assert.Equal(t, []string{"natality", "shakespeare"}, session.Must[[]string](next, session.Schema))
	})

	t.Run("stale listing ignored", func(t *testing.T) {
		next, _ := Reduce(prev, TablesLoaded{Dataset: "other", Tables: []string{"x"}})
		assert.Empty(t, session.Must[[]string](next, session.Schema))
	})

	t.Run("failure", func(t *testing.T) {
		withTables := prev.Clone()
		withTables.Set(session.Schema, []string{"stale"})

		next, _ := Reduce(withTables, TablesLoaded{Dataset: "samples", Err: errors.New("Access Denied")})
		assert.Empty(t, session.Must[[]string](next, session.Schema))
		assert.Equal(t, "Access Denied", session.Must[string](next, session.QueryError))
		assert.Equal(t, ContextDatasetSchema, session.Must[string](next, session.ErrorContext))
	})
}

func TestReduce_DatasetsLoaded(t *testing.T) {
	next, _ := Reduce(session.NewWithDefaults(), DatasetsLoaded{Datasets: []string{"austin_bikeshare", "samples"}})
	assert.Equal(t, []string{"austin_bikeshare", "samples"}, session.Must[[]string](next, session.Datasets))

	failed, _ := Reduce(next, DatasetsLoaded{Err: errors.New("quota exceeded")})
	assert.Equal(t, []string{"austin_bikeshare", "samples"}, session.Must[[]string](failed, session.Datasets))
	assert.Equal(t, ContextListDatasets, session.Must[string](failed, session.ErrorContext))

	recovered, _ := Reduce(failed, DatasetsLoaded{Datasets: []string{"samples"}})
	assert.Equal(t, "", session.Must[string](recovered, session.QueryError))
}

func TestReduce_ChartActions(t *testing.T) {
	s := session.NewWithDefaults()

	s, _ = Reduce(s, SetAxis{Axis: AxisX, Field: "year"})
	s, _ = Reduce(s, SetAxis{Axis: AxisY, Field: "births"})
	s, _ = Reduce(s, SetAxis{Axis: Axis("z"), Field: "ignored"})
	s, _ = Reduce(s, SetChartType{Type: "Line"})

	assert.Equal(t, "year", session.Must[string](s, session.ChartX))
	assert.Equal(t, "births", session.Must[string](s, session.ChartY))
	assert.Equal(t, "Line", session.Must[string](s, session.ChartType))
	assert.False(t, session.Must[bool](s, session.PlotReady), "axis and type selection do not plot")

	s, effects := Reduce(s, RequestPlot{})
	assert.Empty(t, effects)
	assert.True(t, session.Must[bool](s, session.PlotReady))
}

func TestReduce_SelectTable(t *testing.T) {
	next, effects := Reduce(session.NewWithDefaults(), SelectTable{Table: "shakespeare"})
	assert.Empty(t, effects, "preview is fetched by render")
	assert.Equal(t, "shakespeare", session.Must[string](next, session.SelectedTable))
}

func TestReduce_SaveCredentials(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		next, effects := Reduce(session.NewWithDefaults(), SaveCredentials{Blob: []byte("   ")})
		assert.Empty(t, effects)
		assert.Equal(t, MsgEmptyKey, session.Must[string](next, session.CredentialsError))
	})

	t.Run("malformed", func(t *testing.T) {
		prev := session.NewWithDefaults()
		existing := &testutil.FakeClient{ID: 7}
		prev.Set(session.Credentials, existing)

		blob := []byte(`{"type": "service_account", "private_key": "SECRET-MATERIAL"`)
		next, effects := Reduce(prev, SaveCredentials{Blob: blob})

		assert.Empty(t, effects)
		assert.Same(t, existing, session.Must[core.Client](next, session.Credentials), "credentials unchanged")
		assert.Contains(t, session.Must[string](next, session.CredentialsError), core.ErrInvalidFormat.Error())
		assertNotRetained(t, next, "SECRET-MATERIAL")
	})

	t.Run("valid", func(t *testing.T) {
		next, effects := Reduce(session.NewWithDefaults(), SaveCredentials{Blob: []byte(testutil.ServiceAccountKey)})
		require.Len(t, effects, 1)
		connect, ok := effects[0].(Connect)
		require.True(t, ok)
		assert.Equal(t, "demo-project", connect.Credentials.ProjectID)
		assertNotRetained(t, next, "PRIVATE KEY")
	})
}

func TestReduce_Connected(t *testing.T) {
	client := &testutil.FakeClient{ID: 1}

	next, effects := Reduce(session.NewWithDefaults(), Connected{Handle: client})
	assert.Equal(t, []Effect{ListDatasets{}}, effects)
	assert.Same(t, client, session.Must[core.Client](next, session.Credentials))
	assert.Equal(t, MsgKeySaved, session.Must[string](next, session.Notice))

	failed, effects := Reduce(next, Connected{Err: errors.New("invalid_grant")})
	assert.Empty(t, effects)
	assert.Same(t, client, session.Must[core.Client](failed, session.Credentials))
	assert.Contains(t, session.Must[string](failed, session.CredentialsError), MsgInvalidCredentials)
	assert.Contains(t, session.Must[string](failed, session.CredentialsError), "invalid_grant")
}

func TestReduce_RefreshDatasets(t *testing.T) {
	next, effects := Reduce(session.NewWithDefaults(), RefreshDatasets{})
	assert.Empty(t, effects)
	assert.Equal(t, core.ErrNotConnected.Error(), session.Must[string](next, session.QueryError))

	connected := session.NewWithDefaults()
	connected.Set(session.Credentials, &testutil.FakeClient{})
	_, effects = Reduce(connected, RefreshDatasets{})
	assert.Equal(t, []Effect{ListDatasets{}}, effects)
}

// assertNotRetained fails if any session slot renders to text containing secret.
func assertNotRetained(t *testing.T, s *session.Store, secret string) {
	t.Helper()
	for _, key := range s.Keys() {
		v, err := s.Get(key)
		require.NoError(t, err)
		assert.False(t, strings.Contains(fmt.Sprintf("%v", v), secret), "slot %s retains secret", key)
	}
}
