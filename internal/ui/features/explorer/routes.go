package explorer

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the dashboard page, its update stream and its actions.
func SetupRoutes(router chi.Router, cfg Config) error {
	h, err := NewHandlers(cfg)
	if err != nil {
		return err
	}

	router.Get("/", h.Page)
	router.Get("/updates", h.Updates)

	router.Route("/api", func(r chi.Router) {
		r.Post("/credentials", h.SaveCredentials)
		r.Post("/datasets/refresh", h.RefreshDatasets)
		r.Post("/datasets/select", h.SelectDataset)
		r.Post("/tables/select", h.SelectTable)
		r.Post("/query", h.SubmitQuery)
		r.Post("/chart/axis/{axis}", h.SetAxis)
		r.Post("/chart/type", h.SetChartType)
		r.Post("/chart/plot", h.RequestPlot)
	})
	return nil
}
