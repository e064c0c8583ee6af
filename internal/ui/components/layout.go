package components

import (
	"github.com/a-h/templ"
	"github.com/goccy/go-json"
	"github.com/leapstack-labs/leapview/internal/ui/resources"
)

const (
	datastarScript  = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"
	vegaScript      = "https://cdn.jsdelivr.net/npm/vega@5"
	vegaLiteScript  = "https://cdn.jsdelivr.net/npm/vega-lite@5"
	vegaEmbedScript = "https://cdn.jsdelivr.net/npm/vega-embed@6"
)

// Page renders the full HTML document. The body subscribes to /updates so
// that changes made in another tab of the same workspace are pushed here.
func Page(title string, isDev bool, data AppData) templ.Component {
	return component(func(h *htmlWriter) {
		signals, err := json.Marshal(data.Signals())
		if err != nil {
			h.err = err
			return
		}

		h.raw("<!doctype html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title + " - leapview")
		h.raw("</title>")
		h.raw(`<link rel="stylesheet"`)
		h.attr("href", resources.StaticPath("app.css"))
		h.raw(">")
		for _, src := range []string{vegaScript, vegaLiteScript, vegaEmbedScript} {
			h.raw("<script")
			h.attr("src", src)
			h.raw("></script>")
		}
		h.raw(`<script type="module"`)
		h.attr("src", datastarScript)
		h.raw("></script>")
		h.raw("<script defer")
		h.attr("src", resources.StaticPath("app.js"))
		h.raw("></script>")
		if isDev {
			h.raw(`<meta name="leapview-dev" content="true">`)
		}
		h.raw("</head><body")
		h.attr("data-signals", string(signals))
		h.attr("data-init", "@get('/updates')")
		h.raw(">")
		h.render(App(data))
		if isDev {
			h.raw(`<div data-init="@get('/reload', {retryMaxCount: 1000, retryInterval: 20, retryMaxWaitMs: 200})"></div>`)
		}
		h.raw("</body></html>")
	})
}
