package chart

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// Classify returns the encoding type of column j of t.
//
// Integer and float columns are quantitative. String and untyped columns are
// quantitative only when they hold at least one non-null value and every
// non-null value is a number or a string that parses fully as one. Booleans
// and temporal columns are nominal.
func Classify(t *core.Table, j int) EncodingType {
	switch t.Columns()[j].Kind {
	case core.KindInteger, core.KindFloat:
		return Quantitative
	case core.KindString, core.KindOther:
		if allNumeric(t.ColumnValues(j)) {
			return Quantitative
		}
		return Nominal
	default:
		return Nominal
	}
}

func allNumeric(values []any) bool {
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		if !isNumeric(v) {
			return false
		}
		seen = true
	}
	return seen
}

func isNumeric(v any) bool {
	switch x := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case string:
		_, ok := parseNumber(x)
		return ok
	default:
		return false
	}
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}
