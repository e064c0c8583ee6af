package bigquery

import (
	"cloud.google.com/go/bigquery"

	"github.com/leapstack-labs/leapview/pkg/core"
	"github.com/leapstack-labs/leapview/pkg/engine"
)

func kindOfField(f *bigquery.FieldSchema) core.Kind {
	if f.Repeated {
		return core.KindOther
	}
	return core.KindOf(string(f.Type))
}

func modeOfField(f *bigquery.FieldSchema) string {
	switch {
	case f.Repeated:
		return core.ModeRepeated
	case f.Required:
		return core.ModeRequired
	default:
		return core.ModeNullable
	}
}

func fieldsFromSchema(schema bigquery.Schema) []core.FieldSchema {
	fields := make([]core.FieldSchema, len(schema))
	for i, f := range schema {
		fields[i] = core.FieldSchema{
			Name: f.Name,
			Type: string(f.Type),
			Mode: modeOfField(f),
		}
	}
	return fields
}

func tableFromRows(schema bigquery.Schema, rows [][]bigquery.Value, truncated bool) (*core.Table, error) {
	columns := make([]core.Column, len(schema))
	for i, f := range schema {
		columns[i] = core.Column{Name: f.Name, Type: string(f.Type), Kind: kindOfField(f)}
	}

	data := make([][]any, len(rows))
	for i, row := range rows {
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = convertValue(v, columns[j].Kind)
		}
		data[i] = values
	}
	return core.NewTable(columns, data, truncated)
}

// convertValue maps BigQuery values (NUMERIC as *big.Rat, civil dates,
// repeated and record fields as []bigquery.Value) to Table values.
func convertValue(v bigquery.Value, kind core.Kind) any {
	switch x := v.(type) {
	case []bigquery.Value:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = convertValue(e, core.KindOther)
		}
		return out
	default:
		return engine.NormalizeValue(x, kind)
	}
}
