// Package router sets up HTTP routes for the UI server.
package router

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	explorerFeature "github.com/leapstack-labs/leapview/internal/ui/features/explorer"
	"github.com/leapstack-labs/leapview/internal/ui/resources"
	"github.com/starfederation/datastar-go/datastar"
)

// SetupRoutes configures all routes for the UI server. In dev mode every
// value sent on reload reloads one open tab.
func SetupRoutes(router chi.Router, explorer explorerFeature.Config, reload chan struct{}) error {
	if explorer.IsDev {
		setupReload(router, reload)
	}

	router.Handle("/static/*", resources.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return explorerFeature.SetupRoutes(router, explorer)
}

// setupReload lets a dev build reload open tabs: /reload reloads the page
// once on connect (after a restart) and again on every /hotreload hit.
func setupReload(router chi.Router, reloadChan chan struct{}) {
	var once sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		once.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Post("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
