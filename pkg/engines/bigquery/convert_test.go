package bigquery

import (
	"context"
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/leapstack-labs/leapview/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = bigquery.Schema{
	{Name: "name", Type: bigquery.StringFieldType, Required: true},
	{Name: "total", Type: bigquery.IntegerFieldType},
	{Name: "price", Type: bigquery.NumericFieldType},
	{Name: "day", Type: bigquery.DateFieldType},
	{Name: "tags", Type: bigquery.StringFieldType, Repeated: true},
}

func TestFieldsFromSchema(t *testing.T) {
	assert.Equal(t, []core.FieldSchema{
		{Name: "name", Type: "STRING", Mode: core.ModeRequired},
		{Name: "total", Type: "INTEGER", Mode: core.ModeNullable},
		{Name: "price", Type: "NUMERIC", Mode: core.ModeNullable},
		{Name: "day", Type: "DATE", Mode: core.ModeNullable},
		{Name: "tags", Type: "STRING", Mode: core.ModeRepeated},
	}, fieldsFromSchema(testSchema))
}

func TestTableFromRows(t *testing.T) {
	rows := [][]bigquery.Value{
		{"alice", int64(3), big.NewRat(5, 2), civil.Date{Year: 2024, Month: time.March, Day: 1}, []bigquery.Value{"a", "b"}},
		{"bob", nil, nil, nil, []bigquery.Value{}},
	}

	tbl, err := tableFromRows(testSchema, rows, true)
	require.NoError(t, err)

	assert.True(t, tbl.Truncated())
	assert.Equal(t, []string{"name", "total", "price", "day", "tags"}, tbl.ColumnNames())

	cols := tbl.Columns()
	assert.Equal(t, core.KindString, cols[0].Kind)
	assert.Equal(t, core.KindInteger, cols[1].Kind)
	assert.Equal(t, core.KindFloat, cols[2].Kind)
	assert.Equal(t, core.KindTime, cols[3].Kind)
	assert.Equal(t, core.KindOther, cols[4].Kind)

	assert.Equal(t, []any{"alice", int64(3), 2.5, "2024-03-01", []any{"a", "b"}}, tbl.Row(0))
	assert.Equal(t, []any{"bob", nil, nil, nil, []any{}}, tbl.Row(1))
}

func TestTableFromRows_Empty(t *testing.T) {
	tbl, err := tableFromRows(testSchema, nil, false)
	require.NoError(t, err)
	assert.True(t, tbl.Empty())
	assert.Equal(t, 5, tbl.NumColumns())
}

func TestNew_DefaultScope(t *testing.T) {
	assert.Equal(t, DefaultScope, New(core.EngineConfig{}, nil).cfg.Scope)
	assert.Equal(t, "my-project", New(core.EngineConfig{Scope: "my-project"}, nil).cfg.Scope)
}

func TestConnect_RejectsIncompleteCredentials(t *testing.T) {
	conn := New(core.EngineConfig{}, nil)
	ctx := context.Background()

	_, err := conn.Connect(ctx, nil)
	assert.ErrorContains(t, err, "missing service account key")

	_, err = conn.Connect(ctx, &core.Credentials{Type: "service_account", ProjectID: "p"})
	assert.ErrorContains(t, err, "missing service account key")

	_, err = conn.Connect(ctx, &core.Credentials{Type: "service_account", Raw: []byte("{}")})
	assert.ErrorContains(t, err, "no project_id")
}

func TestRegistered(t *testing.T) {
	assert.True(t, engine.IsRegistered("bigquery"))
}
