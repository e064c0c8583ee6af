package core

import (
	"bytes"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// Column describes one column of a result set.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Kind Kind   `json:"kind"`
}

// FieldSchema is one row of a table schema preview.
type FieldSchema struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Mode string `json:"mode"`
}

// Field modes reported in a schema preview.
const (
	ModeNullable = "NULLABLE"
	ModeRequired = "REQUIRED"
	ModeRepeated = "REPEATED"
)

// Table is an immutable query result: ordered, typed columns and a fixed
// set of rows. A Table is only ever replaced, never modified; every accessor
// returns a copy.
type Table struct {
	columns   []Column
	rows      [][]any
	truncated bool
}

// NewTable creates a Table, copying columns and rows. Every row must have
// exactly one value per column. truncated marks a result cut at a row cap.
func NewTable(columns []Column, rows [][]any, truncated bool) (*Table, error) {
	t := &Table{
		columns:   append([]Column(nil), columns...),
		rows:      make([][]any, len(rows)),
		truncated: truncated,
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(columns))
		}
		t.rows[i] = append([]any(nil), row...)
	}
	return t, nil
}

// Columns returns the column descriptors in result order.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// ColumnNames returns the column names in result order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.columns {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// Truncated reports whether the engine stopped reading at its row cap.
func (t *Table) Truncated() bool { return t.truncated }

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	return append([]any(nil), t.rows[i]...)
}

// Value returns the value at row i, column j.
func (t *Table) Value(i, j int) any {
	return t.rows[i][j]
}

// ColumnValues returns a copy of every value in column j.
func (t *Table) ColumnValues(j int) []any {
	values := make([]any, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[j]
	}
	return values
}

// Records returns the rows as column-name keyed maps, the shape chart
// renderers expect for inline data. NaN and infinite floats become nil, as
// JSON has no representation for them.
func (t *Table) Records() []map[string]any {
	records := make([]map[string]any, len(t.rows))
	for i, row := range t.rows {
		rec := make(map[string]any, len(t.columns))
		for j, c := range t.columns {
			v := row[j]
			if _, ok := nonFinite(v); ok {
				v = nil
			}
			rec[c.Name] = v
		}
		records[i] = rec
	}
	return records
}

// tableJSON is the wire form used by result caches.
type tableJSON struct {
	Columns   []Column `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated,omitempty"`
}

// Spellings of non-finite floats on the wire.
const (
	wireNaN    = "NaN"
	wirePosInf = "+Inf"
	wireNegInf = "-Inf"
)

// MarshalJSON encodes the table with its column types. NaN and infinite
// floats are written as strings and restored for float columns on decode.
func (t *Table) MarshalJSON() ([]byte, error) {
	rows := make([][]any, len(t.rows))
	for i, row := range t.rows {
		rows[i] = row
		copied := false
		for j, v := range row {
			wire, ok := nonFinite(v)
			if !ok {
				continue
			}
			if !copied {
				rows[i] = append([]any(nil), row...)
				copied = true
			}
			rows[i][j] = wire
		}
	}
	return json.Marshal(tableJSON{Columns: t.columns, Rows: rows, Truncated: t.truncated})
}

// nonFinite reports whether v is a NaN or infinite float and returns its
// wire spelling.
func nonFinite(v any) (string, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		return "", false
	}
	switch {
	case math.IsNaN(f):
		return wireNaN, true
	case math.IsInf(f, 1):
		return wirePosInf, true
	case math.IsInf(f, -1):
		return wireNegInf, true
	}
	return "", false
}

// UnmarshalJSON decodes a table and restores integer and float values
// according to each column's kind.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var wire tableJSON
	if err := dec.Decode(&wire); err != nil {
		return err
	}

	for i, row := range wire.Rows {
		if len(row) != len(wire.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(wire.Columns))
		}
		for j, v := range row {
			row[j] = restoreNumber(v, wire.Columns[j].Kind)
		}
	}

	t.columns = wire.Columns
	t.rows = wire.Rows
	t.truncated = wire.Truncated
	return nil
}

func restoreNumber(v any, kind Kind) any {
	if s, ok := v.(string); ok && kind == KindFloat {
		switch s {
		case wireNaN:
			return math.NaN()
		case wirePosInf:
			return math.Inf(1)
		case wireNegInf:
			return math.Inf(-1)
		}
	}
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if kind == KindInteger {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
