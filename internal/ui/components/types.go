package components

import (
	"github.com/leapstack-labs/leapview/internal/history"
	"github.com/leapstack-labs/leapview/internal/viewmodel"
)

// MaxDisplayRows caps the rows rendered in the result table.
const MaxDisplayRows = 500

// AppData is everything the #app element renders.
type AppData struct {
	View    viewmodel.View
	History []history.Entry
	Engine  string
}

// Signals are the client-side values bound to inputs.
type Signals struct {
	SQL       string `json:"sql"`
	Dataset   string `json:"dataset"`
	Table     string `json:"table"`
	X         string `json:"x"`
	Y         string `json:"y"`
	ChartType string `json:"chartType"`
	Key       string `json:"key"`
}

// Signals returns the initial signal values for the current view.
func (d AppData) Signals() Signals {
	v := d.View
	return Signals{
		SQL:       v.QueryText,
		Dataset:   v.SelectedDataset,
		Table:     v.SelectedTable,
		X:         v.Chart.X,
		Y:         v.Chart.Y,
		ChartType: string(v.Chart.Type),
	}
}
