package core

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(
		[]Column{
			{Name: "name", Type: "STRING", Kind: KindString},
			{Name: "count", Type: "INT64", Kind: KindInteger},
			{Name: "ratio", Type: "FLOAT64", Kind: KindFloat},
		},
		[][]any{
			{"alice", int64(3), 0.5},
			{"bob", int64(7), nil},
		},
		false,
	)
	require.NoError(t, err)
	return tbl
}

func TestNewTable_RejectsRaggedRows(t *testing.T) {
	_, err := NewTable(
		[]Column{{Name: "a"}, {Name: "b"}},
		[][]any{{1, 2}, {1}},
		false,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1 has 1 values, want 2")
}

func TestTable_Accessors(t *testing.T) {
	tbl := sampleTable(t)

	assert.Equal(t, []string{"name", "count", "ratio"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.NumColumns())
	assert.Equal(t, 2, tbl.NumRows())
	assert.False(t, tbl.Empty())
	assert.False(t, tbl.Truncated())

	idx, ok := tbl.ColumnIndex("count")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.False(t, tbl.HasColumn("missing"))

	assert.Equal(t, "bob", tbl.Value(1, 0))
	assert.Equal(t, []any{int64(3), int64(7)}, tbl.ColumnValues(1))
	assert.Equal(t, map[string]any{"name": "alice", "count": int64(3), "ratio": 0.5}, tbl.Records()[0])
}

func TestTable_IsImmutable(t *testing.T) {
	cols := []Column{{Name: "a", Kind: KindInteger}}
	rows := [][]any{{int64(1)}}
	tbl, err := NewTable(cols, rows, false)
	require.NoError(t, err)

	// Mutating the inputs or the returned copies must not leak into the table.
	cols[0].Name = "changed"
	rows[0][0] = int64(99)
	tbl.Columns()[0].Name = "changed"
	tbl.Row(0)[0] = int64(42)

	assert.Equal(t, []string{"a"}, tbl.ColumnNames())
	assert.Equal(t, int64(1), tbl.Value(0, 0))
}

func TestTable_JSONPreservesKinds(t *testing.T) {
	tbl := sampleTable(t)

	data, err := json.Marshal(tbl)
	require.NoError(t, err)

	var got Table
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, tbl.Columns(), got.Columns())
	assert.Equal(t, int64(3), got.Value(0, 1))
	assert.Equal(t, 0.5, got.Value(0, 2))
	assert.Nil(t, got.Value(1, 2))
	assert.Equal(t, "alice", got.Value(0, 0))
}

func nonFiniteTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(
		[]Column{
			{Name: "label", Type: "STRING", Kind: KindString},
			{Name: "ratio", Type: "FLOAT64", Kind: KindFloat},
		},
		[][]any{
			{"one", 1.0},
			{"nan", math.NaN()},
			{"pos", math.Inf(1)},
			{"neg", math.Inf(-1)},
			{"NaN", nil},
		},
		false,
	)
	require.NoError(t, err)
	return tbl
}

func TestTable_JSONNonFiniteFloats(t *testing.T) {
	tbl := nonFiniteTable(t)

	data, err := json.Marshal(tbl)
	require.NoError(t, err)

	var got Table
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, 1.0, got.Value(0, 1))
	assert.True(t, math.IsNaN(got.Value(1, 1).(float64)))
	assert.True(t, math.IsInf(got.Value(2, 1).(float64), 1))
	assert.True(t, math.IsInf(got.Value(3, 1).(float64), -1))
	assert.Nil(t, got.Value(4, 1))
	assert.Equal(t, "NaN", got.Value(4, 0), "strings in text columns stay strings")

	assert.True(t, math.IsNaN(tbl.Value(1, 1).(float64)), "encoding leaves the table untouched")
}

func TestTable_RecordsDropNonFiniteFloats(t *testing.T) {
	records := nonFiniteTable(t).Records()

	require.Len(t, records, 5)
	assert.Equal(t, 1.0, records[0]["ratio"])
	for _, rec := range records[1:] {
		assert.Nil(t, rec["ratio"], rec["label"])
	}

	_, err := json.Marshal(records)
	require.NoError(t, err)
}

func TestTable_JSONEmpty(t *testing.T) {
	tbl, err := NewTable([]Column{{Name: "a", Kind: KindString}}, nil, true)
	require.NoError(t, err)

	data, err := json.Marshal(tbl)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rows":[]`)

	var got Table
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Empty())
	assert.True(t, got.Truncated())
}
