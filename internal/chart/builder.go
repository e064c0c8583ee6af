package chart

import (
	"github.com/leapstack-labs/leapview/pkg/core"
)

// Build derives a Spec for plotting yField against xField of t.
// It fails with core.ErrEmptyTable when t has no rows and with a
// *core.FieldNotFoundError when either field is not a column of t.
func Build(t *core.Table, xField, yField string, chartType Type) (Spec, error) {
	if t == nil || t.Empty() {
		return Spec{}, core.ErrEmptyTable
	}

	xi, ok := t.ColumnIndex(xField)
	if !ok {
		return Spec{}, &core.FieldNotFoundError{Field: xField, Available: t.ColumnNames()}
	}
	yi, ok := t.ColumnIndex(yField)
	if !ok {
		return Spec{}, &core.FieldNotFoundError{Field: yField, Available: t.ColumnNames()}
	}

	spec := Spec{
		XField: xField,
		YField: yField,
		XType:  Classify(t, xi),
		YType:  Classify(t, yi),
		Mark:   ParseChartType(string(chartType)),
	}
	spec.Title = string(spec.Mark) + " Chart"

	switch {
	case spec.XType == Nominal:
		spec.LegendField = xField
	case spec.YType == Nominal:
		spec.LegendField = yField
	}
	return spec, nil
}
