// Package chart derives chart specifications from query results and renders
// them as Vega-Lite documents.
package chart

// EncodingType is the Vega-Lite measurement type of an axis.
type EncodingType string

// Encoding types.
const (
	Quantitative EncodingType = "quantitative"
	Nominal      EncodingType = "nominal"
)

// Type is a chart mark.
type Type string

// Chart types offered to the user.
const (
	Scatter Type = "Scatter"
	Line    Type = "Line"
	Bar     Type = "Bar"
)

// Types lists the chart types in the order they are offered.
var Types = []Type{Scatter, Line, Bar}

// ParseChartType maps a raw selection to a Type. Anything unrecognized,
// including the empty string, falls back to Scatter.
func ParseChartType(s string) Type {
	switch Type(s) {
	case Scatter, Line, Bar:
		return Type(s)
	default:
		return Scatter
	}
}

// Spec describes how to draw a result as a chart. It is derived on every
// render and never stored.
type Spec struct {
	XField      string
	YField      string
	XType       EncodingType
	YType       EncodingType
	LegendField string // empty means a single fixed colour
	Mark        Type
	Title       string
}

// HasLegend reports whether the chart colours marks by a nominal field.
func (s Spec) HasLegend() bool { return s.LegendField != "" }
