package explorer

import (
	"context"

	"github.com/leapstack-labs/leapview/internal/history"
	"github.com/leapstack-labs/leapview/internal/viewmodel"
)

// Signals are the values the browser sends with every action.
type Signals struct {
	SQL       string `json:"sql"`
	Dataset   string `json:"dataset"`
	Table     string `json:"table"`
	X         string `json:"x"`
	Y         string `json:"y"`
	ChartType string `json:"chartType"`
	Key       string `json:"key"`
}

// signalPatch resets bound inputs to the session after an action. The SQL
// editor is left alone so typed text survives. The key is always cleared.
type signalPatch struct {
	Dataset   string `json:"dataset"`
	Table     string `json:"table"`
	X         string `json:"x"`
	Y         string `json:"y"`
	ChartType string `json:"chartType"`
	Key       string `json:"key"`
}

func patchFromView(v viewmodel.View) signalPatch {
	return signalPatch{
		Dataset:   v.SelectedDataset,
		Table:     v.SelectedTable,
		X:         v.Chart.X,
		Y:         v.Chart.Y,
		ChartType: string(v.Chart.Type),
	}
}

// HistoryReader lists recent queries of a workspace.
type HistoryReader interface {
	Recent(ctx context.Context, workspaceID string, limit int) ([]history.Entry, error)
}
