package components

import (
	"strconv"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/leapview/internal/history"
	"github.com/leapstack-labs/leapview/internal/viewmodel"
	"github.com/leapstack-labs/leapview/pkg/core"
)

// App renders the #app element. Every action response patches it whole.
func App(data AppData) templ.Component {
	return component(func(h *htmlWriter) {
		v := data.View
		h.raw(`<div id="app" class="app">`)

		h.raw(`<aside class="sidebar">`)
		h.raw(`<h1 class="brand">leapview</h1>`)
		if data.Engine != "" {
			h.raw(`<p class="muted">Engine: `)
			h.text(data.Engine)
			if v.Scope != "" {
				h.raw(" &middot; ")
				h.text(v.Scope)
			}
			h.raw("</p>")
		}
		h.render(Credentials(v))
		h.render(Datasets(v))
		h.render(History(data.History))
		h.raw("</aside>")

		h.raw(`<main class="content">`)
		if v.Notice != "" {
			h.raw(`<div class="notice success">`)
			h.text(v.Notice)
			h.raw("</div>")
		}
		if v.Preview != nil {
			h.render(Preview(v.QualifiedID, v.Preview))
		}
		h.render(Editor(v))
		if v.Warning != "" {
			h.raw(`<div class="notice warning">`)
			h.text(v.Warning)
			h.raw("</div>")
		}
		if v.Error != nil {
			h.render(ErrorPanel(v.Error))
		}
		if v.Result != nil {
			h.render(Results(v.Result))
		}
		h.render(Chart(v.Chart))
		h.raw("</main>")

		h.raw("</div>")
	})
}

// Credentials renders the key form and connection status.
func Credentials(v viewmodel.View) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section id="credentials" class="panel">`)
		h.raw("<h2>Warehouse key</h2>")
		if v.Connected {
			h.raw(`<p class="status connected">Connected</p>`)
		} else {
			h.raw(`<p class="status">Not connected</p>`)
		}
		h.raw(`<textarea data-bind:key rows="6" placeholder="Paste your service account key (JSON)"></textarea>`)
		h.raw(`<button data-on:click="@post('/api/credentials')">Save key</button>`)
		if v.CredentialsError != "" {
			h.raw(`<div class="notice error">`)
			h.text(v.CredentialsError)
			h.raw("</div>")
		}
		h.raw("</section>")
	})
}

// Datasets renders the dataset and table pickers.
func Datasets(v viewmodel.View) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section id="datasets" class="panel">`)
		h.raw("<h2>Datasets</h2>")
		h.raw(`<button class="link" data-on:click="@post('/api/datasets/refresh')">Refresh</button>`)

		h.raw(`<label>Dataset<select data-bind:dataset data-on:change="@post('/api/datasets/select')">`)
		h.raw(`<option value="">Select a dataset</option>`)
		for _, ds := range v.Datasets {
			h.raw("<option")
			h.attr("value", ds)
			h.flag("selected", ds == v.SelectedDataset)
			h.raw(">")
			h.text(ds)
			h.raw("</option>")
		}
		h.raw("</select></label>")

		if v.SelectedDataset != "" {
			h.raw(`<label>Table<select data-bind:table data-on:change="@post('/api/tables/select')">`)
			h.raw(`<option value="">Select a table</option>`)
			for _, t := range v.Tables {
				h.raw("<option")
				h.attr("value", t)
				h.flag("selected", t == v.SelectedTable)
				h.raw(">")
				h.text(t)
				h.raw("</option>")
			}
			h.raw("</select></label>")
		}
		h.raw("</section>")
	})
}

// Preview renders the qualified id and schema of the selected table.
func Preview(qualifiedID string, p *viewmodel.Preview) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section id="preview" class="panel">`)
		h.raw("<h2>")
		h.text(p.Table)
		h.raw("</h2>")
		h.raw(`<code class="copyable">`)
		h.text(qualifiedID)
		h.raw("</code>")

		if p.Error != nil {
			h.render(ErrorPanel(p.Error))
			h.raw("</section>")
			return
		}

		h.raw(`<table class="schema"><thead><tr><th>Field</th><th>Type</th><th>Mode</th></tr></thead><tbody>`)
		for _, f := range p.Fields {
			h.raw("<tr><td>")
			h.text(f.Name)
			h.raw("</td><td>")
			h.text(f.Type)
			h.raw("</td><td>")
			h.text(f.Mode)
			h.raw("</td></tr>")
		}
		h.raw("</tbody></table></section>")
	})
}

// Editor renders the SQL editor.
func Editor(v viewmodel.View) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section id="editor" class="panel">`)
		h.raw("<h2>Query</h2>")
		h.raw(`<textarea class="sql" data-bind:sql rows="8" spellcheck="false">`)
		h.text(v.QueryText)
		h.raw("</textarea>")
		h.raw(`<button data-on:click="@post('/api/query')"`)
		h.flag("disabled", !v.Connected)
		h.raw(">Run query</button>")
		h.raw("</section>")
	})
}

// ErrorPanel renders the generic error display.
func ErrorPanel(e *viewmodel.ErrorPanel) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="error-panel" role="alert">`)
		h.raw("<strong>")
		h.text(e.Headline)
		h.raw("</strong>")
		if e.Summary != "" {
			h.raw("<p>")
			h.text(e.Summary)
			h.raw("</p>")
		}
		if e.Context != "" {
			h.raw(`<p class="context">While: `)
			h.text(e.Context)
			h.raw("</p>")
		}
		h.raw("<pre>")
		h.text(e.Message)
		h.raw("</pre>")
		if len(e.Hints) > 0 {
			h.raw("<ul>")
			for _, hint := range e.Hints {
				h.raw("<li>")
				h.text(hint)
				h.raw("</li>")
			}
			h.raw("</ul>")
		}
		h.raw("</div>")
	})
}

// Results renders the query result table.
func Results(t *core.Table) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section id="results" class="panel">`)
		h.raw("<h2>Results</h2>")
		h.raw(`<p class="muted">`)
		h.text(strconv.Itoa(t.NumRows()) + " rows")
		if t.Truncated() {
			h.text(" (truncated by the row limit)")
		}
		if t.NumRows() > MaxDisplayRows {
			h.text(", showing the first " + strconv.Itoa(MaxDisplayRows))
		}
		h.raw("</p>")

		h.raw(`<div class="scroll"><table class="results"><thead><tr>`)
		for _, c := range t.Columns() {
			h.raw("<th")
			h.attr("title", c.Type)
			h.raw(">")
			h.text(c.Name)
			h.raw("</th>")
		}
		h.raw("</tr></thead><tbody>")
		for i := 0; i < t.NumRows() && i < MaxDisplayRows; i++ {
			h.raw("<tr>")
			for _, v := range t.Row(i) {
				if v == nil {
					h.raw(`<td class="null">NULL</td>`)
					continue
				}
				h.raw("<td>")
				h.text(FormatValue(v))
				h.raw("</td>")
			}
			h.raw("</tr>")
		}
		h.raw("</tbody></table></div></section>")
	})
}

// History renders recently executed queries.
func History(entries []history.Entry) templ.Component {
	return component(func(h *htmlWriter) {
		if len(entries) == 0 {
			return
		}
		h.raw(`<section id="history" class="panel"><h2>Recent queries</h2><ol class="history">`)
		for _, e := range entries {
			h.raw("<li")
			h.attr("class", string(e.Status))
			h.attr("title", e.ExecutedAt.Format("2006-01-02 15:04:05"))
			h.raw("><code>")
			h.text(e.SQL)
			h.raw(`</code><span class="muted">`)
			if e.Status == history.StatusSucceeded {
				h.text(strconv.Itoa(e.RowCount) + " rows, " + e.Duration.String())
			} else {
				h.text("failed")
			}
			h.raw("</span></li>")
		}
		h.raw("</ol></section>")
	})
}
