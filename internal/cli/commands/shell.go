package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapview/internal/chart"
	"github.com/leapstack-labs/leapview/internal/viewmodel"
	"github.com/leapstack-labs/leapview/internal/workspace"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	shellPrompt     = "leapview> "
	shellContPrompt = "     ...> "
)

// ShellOptions holds options for the shell command.
type ShellOptions struct {
	Format string
}

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	opts := &ShellOptions{}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Explore the warehouse interactively",
		Long: `Start an interactive shell that drives the same view model as the dashboard.

SQL statements end with a semicolon. Dot commands browse datasets and
tables and build a chart over the latest result; type .help for the list.`,
		Example: `  leapview shell --credentials ./service-account.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Result format: table, json, csv, md")
	return cmd
}

func runShell(cmd *cobra.Command, opts *ShellOptions) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	rt, err := cc.NewRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	ws := rt.Registry.Create(ctx)
	sh := newShell(ws, cc.Out, cc.ErrOut, formatOrDefault(opts.Format, cc.Cfg.Output))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     shellHistoryFile(cc.Cfg.History.Path),
		AutoComplete:    sh.completer(ctx),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cc.Out,
		Stderr:          cc.ErrOut,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sh.welcome(ctx, cc.Cfg.Engine.Type)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sh.reset()
			rl.SetPrompt(sh.prompt())
			continue
		}
		if err != nil {
			break
		}
		if sh.feed(ctx, line) {
			break
		}
		rl.SetPrompt(sh.prompt())
	}
	return nil
}

// shellHistoryFile keeps the readline history next to the query history.
func shellHistoryFile(historyPath string) string {
	dir := filepath.Dir(historyPath)
	if historyPath == "" || historyPath == ":memory:" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "shell_history")
}

type shellStyles struct {
	notice  lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
	title   lipgloss.Style
}

func newShellStyles(w io.Writer) shellStyles {
	r := lipgloss.NewRenderer(w)
	return shellStyles{
		notice:  r.NewStyle().Foreground(lipgloss.Color("2")),
		warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		err:     r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		title:   r.NewStyle().Bold(true),
	}
}

// shell turns input lines into view model actions and prints the view.
type shell struct {
	ws     *workspace.Workspace
	out    io.Writer
	errOut io.Writer
	format string
	styles shellStyles
	titler cases.Caser

	buf strings.Builder
}

func newShell(ws *workspace.Workspace, out, errOut io.Writer, format string) *shell {
	return &shell{
		ws:     ws,
		out:    out,
		errOut: errOut,
		format: format,
		styles: newShellStyles(out),
		titler: cases.Title(language.English),
	}
}

func (sh *shell) prompt() string {
	if sh.buf.Len() > 0 {
		return shellContPrompt
	}
	return shellPrompt
}

func (sh *shell) reset() { sh.buf.Reset() }

func (sh *shell) welcome(ctx context.Context, engineType string) {
	v := sh.ws.View(ctx)
	sh.println(sh.styles.title.Render("leapview shell") + sh.styles.muted.Render(" ("+engineType+")"))
	if v.Connected {
		sh.println(sh.styles.notice.Render(fmt.Sprintf("Connected, %d datasets", len(v.Datasets))))
	} else {
		sh.println(sh.styles.muted.Render("Not connected. Use .key <file> to load a warehouse key."))
	}
	sh.println("Type .help for commands, .quit to exit")
	sh.println("")
}

// feed consumes one input line. It reports whether the shell should exit.
func (sh *shell) feed(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if sh.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return sh.command(ctx, line)
	}

	sh.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		sh.buf.WriteString("\n")
		return false
	}

	sqlText := strings.TrimSuffix(sh.buf.String(), ";")
	sh.buf.Reset()
	sh.query(ctx, sqlText)
	return false
}

func (sh *shell) command(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	name := strings.ToLower(parts[0])
	arg := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch name {
	case ".quit", ".exit":
		return true
	case ".help":
		sh.help()
	case ".key":
		sh.saveKey(ctx, arg)
	case ".datasets":
		sh.listDatasets(ctx)
	case ".refresh":
		sh.dispatch(ctx, viewmodel.RefreshDatasets{})
		v := sh.ws.View(ctx)
		if !sh.panelFor(v, viewmodel.ContextListDatasets) {
			sh.listDatasets(ctx)
		}
	case ".use":
		if !sh.requireArg(arg, ".use <dataset>") {
			return false
		}
		sh.dispatch(ctx, viewmodel.SelectDataset{Dataset: arg})
		v := sh.ws.View(ctx)
		if !sh.panelFor(v, viewmodel.ContextDatasetSchema) {
			sh.listTables(v)
		}
	case ".tables":
		sh.listTables(sh.ws.View(ctx))
	case ".table":
		if !sh.requireArg(arg, ".table <table>") {
			return false
		}
		sh.dispatch(ctx, viewmodel.SelectTable{Table: arg})
		sh.describe(sh.ws.View(ctx))
	case ".describe":
		sh.describe(sh.ws.View(ctx))
	case ".x", ".y":
		if !sh.requireArg(arg, name+" <column>") {
			return false
		}
		axis := viewmodel.AxisX
		if name == ".y" {
			axis = viewmodel.AxisY
		}
		sh.dispatch(ctx, viewmodel.SetAxis{Axis: axis, Field: arg})
		sh.chartState(sh.ws.View(ctx))
	case ".type":
		if !sh.requireArg(arg, ".type scatter|line|bar") {
			return false
		}
		chartType := sh.titler.String(strings.ToLower(arg))
		if !slices.Contains(chart.Types, chart.Type(chartType)) {
			sh.warn(fmt.Sprintf("Unknown chart type %q, using %s", arg, chart.Scatter))
		}
		sh.dispatch(ctx, viewmodel.SetChartType{Type: chartType})
		sh.chartState(sh.ws.View(ctx))
	case ".plot":
		sh.dispatch(ctx, viewmodel.RequestPlot{})
		sh.plot(sh.ws.View(ctx))
	case ".query":
		sh.println(sh.ws.View(ctx).QueryText)
	case ".state":
		sh.state(sh.ws.View(ctx))
	case ".clear":
		_, _ = fmt.Fprint(sh.out, "\033[H\033[2J")
	default:
		sh.fail(fmt.Sprintf("Unknown command: %s (type .help for commands)", name))
	}
	return false
}

func (sh *shell) query(ctx context.Context, sqlText string) {
	sh.dispatch(ctx, viewmodel.SubmitQuery{SQL: sqlText})
	v := sh.ws.View(ctx)

	switch {
	case v.Warning != "":
		sh.warn(v.Warning)
	case v.Error != nil:
		sh.panel(v.Error)
	case v.Result != nil:
		if err := renderTable(sh.out, v.Result, sh.format); err != nil {
			sh.fail(err.Error())
			return
		}
		if v.Notice != "" {
			sh.notice(v.Notice)
		}
	}
}

func (sh *shell) saveKey(ctx context.Context, path string) {
	if !sh.requireArg(path, ".key <file>") {
		return
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		sh.fail(fmt.Sprintf("failed to read key file: %v", err))
		return
	}
	sh.dispatch(ctx, viewmodel.SaveCredentials{Blob: blob})
	clear(blob)

	v := sh.ws.View(ctx)
	if v.CredentialsError != "" {
		sh.fail(v.CredentialsError)
		return
	}
	sh.notice(v.Notice)
	sh.panelFor(v, viewmodel.ContextListDatasets)
}

func (sh *shell) listDatasets(ctx context.Context) {
	v := sh.ws.View(ctx)
	if !v.Connected {
		sh.warn("Not connected. Use .key <file> first.")
		return
	}
	items := make([]string, len(v.Datasets))
	for i, d := range v.Datasets {
		items[i] = d
		if d == v.SelectedDataset {
			items[i] = d + " *"
		}
	}
	_ = renderList(sh.out, "Dataset", items, sh.format)
}

func (sh *shell) listTables(v viewmodel.View) {
	if v.SelectedDataset == "" {
		sh.warn("No dataset selected. Use .use <dataset>.")
		return
	}
	_ = renderList(sh.out, "Table ("+v.SelectedDataset+")", v.Tables, sh.format)
}

func (sh *shell) describe(v viewmodel.View) {
	if v.Preview == nil {
		sh.warn("No table selected. Use .table <table>.")
		return
	}
	if v.Preview.Error != nil {
		sh.panel(v.Preview.Error)
		return
	}
	sh.println(sh.styles.title.Render(v.QualifiedID))
	rows := make([]table.Row, len(v.Preview.Fields))
	for i, f := range v.Preview.Fields {
		rows[i] = table.Row{f.Name, f.Type, f.Mode}
	}
	_ = renderRows(sh.out, table.Row{"Name", "Type", "Mode"}, rows, sh.format)
}

func (sh *shell) chartState(v viewmodel.View) {
	cv := v.Chart
	if !cv.Available {
		sh.warn(cv.Placeholder)
	}
	sh.println(sh.styles.muted.Render(fmt.Sprintf("chart: x=%s y=%s type=%s (%s)",
		orDash(cv.X), orDash(cv.Y), cv.Type, cv.Readiness)))
}

func (sh *shell) plot(v viewmodel.View) {
	cv := v.Chart
	if cv.Spec == nil {
		sh.warn(cv.NotReady)
		return
	}

	spec := cv.Spec
	sh.println(sh.styles.title.Render(spec.Title))
	sh.println(fmt.Sprintf("x: %s (%s)", spec.XField, spec.XType))
	sh.println(fmt.Sprintf("y: %s (%s)", spec.YField, spec.YType))
	if spec.HasLegend() {
		sh.println("legend: " + spec.LegendField)
	}
	if sh.format == "json" {
		sh.println(cv.VegaLite)
	} else {
		sh.println(sh.styles.muted.Render("Open the dashboard (leapview serve) to see the chart, or use --format json for the Vega-Lite spec."))
	}
}

func (sh *shell) state(v viewmodel.View) {
	rows := []table.Row{
		{"connected", v.Connected},
		{"dataset", orDash(v.SelectedDataset)},
		{"table", orDash(v.SelectedTable)},
		{"result rows", resultRows(v)},
		{"chart x", orDash(v.Chart.X)},
		{"chart y", orDash(v.Chart.Y)},
		{"chart type", v.Chart.Type},
		{"readiness", v.Chart.Readiness.String()},
	}
	_ = renderRows(sh.out, table.Row{"Key", "Value"}, rows, "table")
}

func (sh *shell) help() {
	sh.println(`
Commands:
  .key <file>       Save a warehouse key from a file
  .datasets         List datasets (* marks the selected one)
  .refresh          Reload the dataset list
  .use <dataset>    Select a dataset and list its tables
  .tables           List tables of the selected dataset
  .table <table>    Select a table and show its schema
  .describe         Show the schema of the selected table
  .x <column>       Set the chart X axis
  .y <column>       Set the chart Y axis
  .type <type>      Set the chart type (scatter, line, bar)
  .plot             Build the chart from the latest result
  .query            Show the current query text
  .state            Show the session state
  .clear            Clear the screen
  .quit / .exit     Exit the shell

SQL statements end with a semicolon (;) and may span several lines.`)
}

// completer offers dot commands and, dynamically, datasets, tables and columns.
func (sh *shell) completer(ctx context.Context) *readline.PrefixCompleter {
	datasets := func(string) []string { return sh.ws.View(ctx).Datasets }
	tables := func(string) []string { return sh.ws.View(ctx).Tables }
	columns := func(string) []string { return sh.ws.View(ctx).Chart.Columns }
	chartTypes := func(string) []string {
		names := make([]string, len(chart.Types))
		for i, t := range chart.Types {
			names[i] = strings.ToLower(string(t))
		}
		return names
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".key"),
		readline.PcItem(".datasets"),
		readline.PcItem(".refresh"),
		readline.PcItem(".use", readline.PcItemDynamic(datasets)),
		readline.PcItem(".tables"),
		readline.PcItem(".table", readline.PcItemDynamic(tables)),
		readline.PcItem(".describe"),
		readline.PcItem(".x", readline.PcItemDynamic(columns)),
		readline.PcItem(".y", readline.PcItemDynamic(columns)),
		readline.PcItem(".type", readline.PcItemDynamic(chartTypes)),
		readline.PcItem(".plot"),
		readline.PcItem(".query"),
		readline.PcItem(".state"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

// panelFor prints the view's error panel if it belongs to the given context.
func (sh *shell) panelFor(v viewmodel.View, label string) bool {
	if v.Error == nil || v.Error.Context != label {
		return false
	}
	sh.panel(v.Error)
	return true
}

func (sh *shell) panel(p *viewmodel.ErrorPanel) {
	sh.errorln(sh.styles.err.Render(p.Headline))
	if p.Summary != "" {
		sh.errorln(p.Summary)
	}
	sh.errorln(sh.styles.muted.Render("While: " + p.Context))
	sh.errorln(p.Message)
	for _, hint := range p.Hints {
		sh.errorln(sh.styles.muted.Render("  - " + hint))
	}
}

func (sh *shell) requireArg(arg, usage string) bool {
	if arg == "" {
		sh.fail("Usage: " + usage)
		return false
	}
	return true
}

func (sh *shell) dispatch(ctx context.Context, a viewmodel.Action) {
	if _, err := sh.ws.Dispatch(ctx, a); err != nil {
		sh.fail(err.Error())
	}
}

func (sh *shell) notice(msg string) {
	if msg != "" {
		sh.println(sh.styles.notice.Render(msg))
	}
}

func (sh *shell) warn(msg string) {
	if msg != "" {
		sh.errorln(sh.styles.warning.Render(msg))
	}
}

func (sh *shell) fail(msg string) { sh.errorln(sh.styles.err.Render("Error: ") + msg) }

func (sh *shell) println(s string) { _, _ = fmt.Fprintln(sh.out, s) }

func (sh *shell) errorln(s string) { _, _ = fmt.Fprintln(sh.errOut, s) }

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func resultRows(v viewmodel.View) string {
	if v.Result == nil {
		return "-"
	}
	return fmt.Sprintf("%d", v.Result.NumRows())
}
