package components

import (
	"github.com/a-h/templ"
	"github.com/leapstack-labs/leapview/internal/viewmodel"
)

// Chart renders the chart builder and, when ready, the chart itself.
// app.js embeds the Vega-Lite document found in data-vega-spec.
func Chart(cv viewmodel.ChartView) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section id="chart" class="panel"><h2>Chart</h2>`)
		if !cv.Available {
			h.raw(`<p class="muted">`)
			h.text(cv.Placeholder)
			h.raw("</p></section>")
			return
		}

		h.raw(`<div class="chart-builder">`)
		axisSelect(h, "X axis", viewmodel.AxisX, cv.X, cv.Columns)
		axisSelect(h, "Y axis", viewmodel.AxisY, cv.Y, cv.Columns)

		h.raw(`<label>Chart type<select data-bind:chart-type data-on:change="@post('/api/chart/type')">`)
		for _, t := range cv.Types {
			h.raw("<option")
			h.attr("value", string(t))
			h.flag("selected", t == cv.Type)
			h.raw(">")
			h.text(string(t))
			h.raw("</option>")
		}
		h.raw("</select></label>")
		h.raw(`<button data-on:click="@post('/api/chart/plot')">Plot</button>`)
		h.raw("</div>")

		if cv.Spec == nil {
			h.raw(`<p class="muted not-ready">`)
			h.text(cv.NotReady)
			h.raw("</p></section>")
			return
		}

		h.raw(`<div class="chart"`)
		h.attr("data-readiness", cv.Readiness.String())
		h.attr("data-vega-spec", cv.VegaLite)
		h.raw(">")
		h.raw(`<p class="muted">`)
		h.text(cv.Spec.Title)
		h.raw("</p></div></section>")
	})
}

func axisSelect(h *htmlWriter, label string, axis viewmodel.Axis, selected string, columns []string) {
	h.raw("<label>")
	h.text(label)
	h.raw("<select")
	h.raw(" data-bind:" + string(axis))
	h.attr("data-on:change", "@post('/api/chart/axis/"+string(axis)+"')")
	h.raw(`><option value="">Choose a field</option>`)
	for _, c := range columns {
		h.raw("<option")
		h.attr("value", c)
		h.flag("selected", c == selected)
		h.raw(">")
		h.text(c)
		h.raw("</option>")
	}
	h.raw("</select></label>")
}
