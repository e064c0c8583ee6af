package core

import "strings"

// =============================================================================
// Kind
// =============================================================================

// Kind is the engine-neutral classification of a column's type.
type Kind int

// Column kinds.
const (
	// KindOther is any type leapview has no special handling for (JSON, BYTES, GEOGRAPHY...).
	KindOther Kind = iota
	// KindInteger covers fixed-width and arbitrary integer types.
	KindInteger
	// KindFloat covers floating point and exact decimal types.
	KindFloat
	// KindString covers character types.
	KindString
	// KindBool covers boolean types.
	KindBool
	// KindTime covers dates, times and timestamps.
	KindTime
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "other"
	}
}

// IsNumeric reports whether values of this kind are numbers.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// KindOf maps an engine type name (BigQuery, DuckDB or PostgreSQL spelling)
// to a Kind. Parameterized types such as DECIMAL(10,2) or VARCHAR(255) are
// matched on their base name.
func KindOf(typeName string) Kind {
	name := strings.ToUpper(strings.TrimSpace(typeName))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}

	switch name {
	case "INT", "INT2", "INT4", "INT8", "INT16", "INT32", "INT64", "INT128",
		"INTEGER", "BIGINT", "SMALLINT", "TINYINT", "HUGEINT",
		"UINTEGER", "UBIGINT", "USMALLINT", "UTINYINT", "UHUGEINT",
		"SERIAL", "BIGSERIAL", "SMALLSERIAL":
		return KindInteger
	case "FLOAT", "FLOAT4", "FLOAT8", "FLOAT64", "DOUBLE", "DOUBLE PRECISION", "REAL",
		"DECIMAL", "NUMERIC", "BIGNUMERIC", "BIGDECIMAL":
		return KindFloat
	case "STRING", "VARCHAR", "CHAR", "BPCHAR", "TEXT", "CHARACTER", "CHARACTER VARYING",
		"UUID", "NAME":
		return KindString
	case "BOOL", "BOOLEAN":
		return KindBool
	case "DATE", "TIME", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ", "TIMETZ",
		"TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE",
		"TIME WITH TIME ZONE", "TIME WITHOUT TIME ZONE", "INTERVAL":
		return KindTime
	default:
		return KindOther
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Unknown names decode to KindOther.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "integer":
		*k = KindInteger
	case "float":
		*k = KindFloat
	case "string":
		*k = KindString
	case "bool":
		*k = KindBool
	case "time":
		*k = KindTime
	default:
		*k = KindOther
	}
	return nil
}
