package engine

import (
	"database/sql"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// ScanTable reads rows into a core.Table. When maxRows is positive, reading
// stops after maxRows rows and the table is marked truncated if more existed.
// The caller closes rows.
func ScanTable(rows *sql.Rows, maxRows int) (*core.Table, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	columns := make([]core.Column, len(types))
	for i, ct := range types {
		columns[i] = core.Column{
			Name: ct.Name(),
			Type: ct.DatabaseTypeName(),
			Kind: core.KindOf(ct.DatabaseTypeName()),
		}
	}

	var (
		data      [][]any
		truncated bool
	)
	for rows.Next() {
		if maxRows > 0 && len(data) == maxRows {
			truncated = true
			break
		}

		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			values[i] = NormalizeValue(v, columns[i].Kind)
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return core.NewTable(columns, data, truncated)
}

// NormalizeValue converts a driver value into one of the plain types a Table
// carries: nil, int64, float64, string, bool, time.Time, or a JSON-friendly
// composite.
func NormalizeValue(v any, kind core.Kind) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return normalizeString(string(x), kind)
	case string:
		return normalizeString(x, kind)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x <= 1<<63-1 {
			return int64(x)
		}
		return float64(x)
	case float32:
		return float64(x)
	case float64, bool, time.Time:
		return x
	case *big.Int:
		if x.IsInt64() {
			return x.Int64()
		}
		f, _ := new(big.Float).SetInt(x).Float64()
		return f
	case *big.Rat:
		f, _ := x.Float64()
		return f
	case interface{ Float64() float64 }:
		return x.Float64()
	case map[string]any, []any:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// normalizeString decodes numbers that drivers hand back as text.
func normalizeString(s string, kind core.Kind) any {
	switch kind {
	case core.KindInteger:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	case core.KindFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
