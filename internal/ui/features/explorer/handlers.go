// Package explorer is the dashboard: credentials, dataset browser, SQL
// editor, result table and chart builder, all driven by one workspace.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapview/internal/ui/components"
	"github.com/leapstack-labs/leapview/internal/ui/notifier"
	"github.com/leapstack-labs/leapview/internal/viewmodel"
	"github.com/leapstack-labs/leapview/internal/workspace"
	"github.com/starfederation/datastar-go/datastar"
)

const (
	cookieName   = "leapview"
	workspaceKey = "workspace"

	defaultHistoryLimit = 10
)

// Config holds the dependencies of the explorer handlers.
type Config struct {
	Registry     *workspace.Registry
	SessionStore sessions.Store
	Notifier     *notifier.Notifier

	// History is optional; nil hides the recent queries panel.
	History      HistoryReader
	HistoryLimit int

	Engine string
	IsDev  bool
	Logger *slog.Logger
}

// Handlers provides HTTP handlers for the explorer feature.
type Handlers struct {
	cfg    Config
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg Config) (*Handlers, error) {
	switch {
	case cfg.Registry == nil:
		return nil, errors.New("explorer: workspace registry is required")
	case cfg.SessionStore == nil:
		return nil, errors.New("explorer: session store is required")
	case cfg.Notifier == nil:
		return nil, errors.New("explorer: notifier is required")
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{cfg: cfg, logger: logger}, nil
}

// Page renders the full dashboard.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.Page("Explorer", h.cfg.IsDev, h.appData(r.Context(), ws)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Updates is the long-lived SSE stream of a tab. It re-renders the app
// whenever another request changes the same workspace. The initial state is
// already part of the page, so nothing is sent until the first change.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	sse := datastar.NewSSE(w, r)

	updates := h.cfg.Notifier.Subscribe(ws.ID)
	defer h.cfg.Notifier.Unsubscribe(ws.ID, updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := h.sendApp(ctx, sse, ws); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// SaveCredentials exchanges the pasted key for a warehouse client.
func (h *Handlers) SaveCredentials(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, func(s Signals) viewmodel.Action {
		return viewmodel.SaveCredentials{Blob: []byte(s.Key)}
	})
}

// RefreshDatasets reloads the dataset list.
func (h *Handlers) RefreshDatasets(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, func(Signals) viewmodel.Action { return viewmodel.RefreshDatasets{} })
}

// SelectDataset selects a dataset and loads its tables.
func (h *Handlers) SelectDataset(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, func(s Signals) viewmodel.Action { return viewmodel.SelectDataset{Dataset: s.Dataset} })
}

// SelectTable selects a table for the schema preview.
func (h *Handlers) SelectTable(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, func(s Signals) viewmodel.Action { return viewmodel.SelectTable{Table: s.Table} })
}

// SubmitQuery runs the SQL in the editor.
func (h *Handlers) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, func(s Signals) viewmodel.Action { return viewmodel.SubmitQuery{SQL: s.SQL} })
}

// SetAxis stores the field of the axis named in the path.
func (h *Handlers) SetAxis(w http.ResponseWriter, r *http.Request) {
	axis := viewmodel.Axis(chi.URLParam(r, "axis"))
	if axis != viewmodel.AxisX && axis != viewmodel.AxisY {
		http.Error(w, fmt.Sprintf("unknown axis %q", axis), http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, func(s Signals) viewmodel.Action {
		field := s.X
		if axis == viewmodel.AxisY {
			field = s.Y
		}
		return viewmodel.SetAxis{Axis: axis, Field: field}
	})
}

// SetChartType stores the chart type.
func (h *Handlers) SetChartType(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, func(s Signals) viewmodel.Action { return viewmodel.SetChartType{Type: s.ChartType} })
}

// RequestPlot draws the chart.
func (h *Handlers) RequestPlot(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, func(Signals) viewmodel.Action { return viewmodel.RequestPlot{} })
}

// dispatch reads the signals, applies the action built from them and
// patches the re-rendered app into the page.
func (h *Handlers) dispatch(w http.ResponseWriter, r *http.Request, build func(Signals) viewmodel.Action) {
	// The workspace cookie must be set before the SSE stream writes headers,
	// and the signals must be read before the stream consumes the body.
	ws := h.workspace(w, r)

	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(fmt.Errorf("failed to read signals: %w", err))
		return
	}

	action := build(signals)
	ws = h.apply(w, r, ws, action)
	if save, ok := action.(viewmodel.SaveCredentials); ok {
		clear(save.Blob)
	}

	sse := datastar.NewSSE(w, r)
	if err := h.sendApp(r.Context(), sse, ws); err != nil {
		_ = sse.ConsoleError(err)
	}
	h.cfg.Notifier.Notify(ws.ID)
}

// apply dispatches a on ws. When ws expired between lookup and dispatch, the
// browser is moved to a fresh workspace and a is applied there instead.
func (h *Handlers) apply(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, a viewmodel.Action) *workspace.Workspace {
	_, err := ws.Dispatch(r.Context(), a)
	if !errors.Is(err, workspace.ErrClosed) {
		return ws
	}
	h.logger.Debug("workspace closed mid-request, starting a new one", slog.String("workspace", ws.ID))
	ws = h.bind(w, r, h.cfg.Registry.Create(r.Context()))
	if _, err := ws.Dispatch(r.Context(), a); err != nil {
		h.logger.Warn("failed to dispatch action", slog.String("workspace", ws.ID), slog.String("error", err.Error()))
	}
	return ws
}

func (h *Handlers) sendApp(ctx context.Context, sse *datastar.ServerSentEventGenerator, ws *workspace.Workspace) error {
	data := h.appData(ctx, ws)
	if err := sse.PatchElementTempl(components.App(data)); err != nil {
		return err
	}
	return sse.MarshalAndPatchSignals(patchFromView(data.View))
}

func (h *Handlers) appData(ctx context.Context, ws *workspace.Workspace) components.AppData {
	data := components.AppData{
		View:   ws.View(ctx),
		Engine: h.cfg.Engine,
	}
	if h.cfg.History != nil {
		entries, err := h.cfg.History.Recent(ctx, ws.ID, h.cfg.HistoryLimit)
		if err != nil {
			h.logger.Warn("failed to load query history", slog.String("error", err.Error()))
		}
		data.History = entries
	}
	return data
}

// workspace returns the workspace of the browser session, creating one
// and setting the cookie when the session has none or it expired.
func (h *Handlers) workspace(w http.ResponseWriter, r *http.Request) *workspace.Workspace {
	sess, err := h.cfg.SessionStore.Get(r, cookieName)
	if err != nil {
		h.logger.Debug("ignoring unreadable session cookie", slog.String("error", err.Error()))
	}

	id, _ := sess.Values[workspaceKey].(string)
	ws, created := h.cfg.Registry.GetOrCreate(r.Context(), id)
	if created {
		h.save(w, r, sess, ws)
	}
	return ws
}

// bind points the browser session at ws.
func (h *Handlers) bind(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) *workspace.Workspace {
	sess, err := h.cfg.SessionStore.Get(r, cookieName)
	if err != nil {
		h.logger.Debug("ignoring unreadable session cookie", slog.String("error", err.Error()))
	}
	h.save(w, r, sess, ws)
	return ws
}

func (h *Handlers) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session, ws *workspace.Workspace) {
	sess.Values[workspaceKey] = ws.ID
	if err := sess.Save(r, w); err != nil {
		h.logger.Warn("failed to save session cookie", slog.String("error", err.Error()))
	}
}
