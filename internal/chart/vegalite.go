package chart

import (
	"math"
	"strings"

	"github.com/goccy/go-json"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// VegaLiteSchema is the schema URL written into every document.
const VegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"

// Chart layout.
const (
	chartHeight   = 600
	pointSize     = 80
	defaultColor  = "steelblue"
	legendScheme  = "category10"
	legendTitle   = "Legend"
	containerSize = "container"
)

type vlDocument struct {
	Schema   string     `json:"$schema"`
	Title    string     `json:"title"`
	Width    string     `json:"width"`
	Height   int        `json:"height"`
	Data     vlData     `json:"data"`
	Mark     vlMark     `json:"mark"`
	Encoding vlEncoding `json:"encoding"`
	Params   []vlParam  `json:"params"`
}

type vlData struct {
	Values []map[string]any `json:"values"`
}

type vlMark struct {
	Type  string `json:"type"`
	Size  int    `json:"size,omitempty"`
	Point bool   `json:"point,omitempty"`
}

type vlEncoding struct {
	X       vlField   `json:"x"`
	Y       vlField   `json:"y"`
	Color   vlColor   `json:"color"`
	Tooltip []vlField `json:"tooltip"`
}

type vlField struct {
	Field string       `json:"field"`
	Type  EncodingType `json:"type"`
	Title string       `json:"title,omitempty"`
}

type vlColor struct {
	Field string       `json:"field,omitempty"`
	Type  EncodingType `json:"type,omitempty"`
	Title string       `json:"title,omitempty"`
	Scale *vlScale     `json:"scale,omitempty"`
	Value string       `json:"value,omitempty"`
}

type vlScale struct {
	Scheme string `json:"scheme"`
}

type vlParam struct {
	Name   string `json:"name"`
	Select string `json:"select"`
	Bind   string `json:"bind"`
}

// VegaLite renders spec over the rows of t as a Vega-Lite v5 document with
// inline data.
func VegaLite(spec Spec, t *core.Table) ([]byte, error) {
	doc := vlDocument{
		Schema: VegaLiteSchema,
		Title:  spec.Title,
		Width:  containerSize,
		Height: chartHeight,
		Data:   vlData{Values: records(spec, t)},
		Mark:   markFor(spec.Mark),
		Encoding: vlEncoding{
			X: vlField{Field: fieldRef(spec.XField), Type: spec.XType, Title: spec.XField},
			Y: vlField{Field: fieldRef(spec.YField), Type: spec.YType, Title: spec.YField},
			Tooltip: []vlField{
				{Field: fieldRef(spec.XField), Type: spec.XType},
				{Field: fieldRef(spec.YField), Type: spec.YType},
			},
		},
		Params: []vlParam{{Name: "grid", Select: "interval", Bind: "scales"}},
	}

	if spec.HasLegend() {
		doc.Encoding.Color = vlColor{
			Field: fieldRef(spec.LegendField),
			Type:  Nominal,
			Title: legendTitle,
			Scale: &vlScale{Scheme: legendScheme},
		}
	} else {
		doc.Encoding.Color = vlColor{Value: defaultColor}
	}

	return json.Marshal(doc)
}

// records returns the inline data of the chart. Numeric text in a
// quantitative axis is written as numbers so scales and sorting are numeric.
func records(spec Spec, t *core.Table) []map[string]any {
	recs := t.Records()
	var numeric []string
	if spec.XType == Quantitative {
		numeric = append(numeric, spec.XField)
	}
	if spec.YType == Quantitative && spec.YField != spec.XField {
		numeric = append(numeric, spec.YField)
	}
	for _, rec := range recs {
		for _, field := range numeric {
			s, ok := rec[field].(string)
			if !ok {
				continue
			}
			f, ok := parseNumber(s)
			if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
				rec[field] = nil
				continue
			}
			rec[field] = f
		}
	}
	return recs
}

func markFor(t Type) vlMark {
	switch t {
	case Line:
		return vlMark{Type: "line", Point: true}
	case Bar:
		return vlMark{Type: "bar"}
	default:
		return vlMark{Type: "point", Size: pointSize}
	}
}

// fieldRef escapes characters Vega-Lite reads as nested field access.
var fieldEscaper = strings.NewReplacer(".", `\.`, "[", `\[`, "]", `\]`)

func fieldRef(name string) string {
	return fieldEscaper.Replace(name)
}
