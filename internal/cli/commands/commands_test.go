package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapview/internal/cli/config"
	"github.com/leapstack-labs/leapview/internal/history"
	"github.com/leapstack-labs/leapview/internal/testutil"
	"github.com/leapstack-labs/leapview/pkg/core"
)

// useFakeEngine makes every command connect to a fake engine.
func useFakeEngine(t *testing.T) *testutil.FakeEngine {
	t.Helper()
	fake := testutil.NewFakeEngine()
	prev := newConnector
	newConnector = func(core.EngineConfig, *slog.Logger) (core.Connector, error) { return fake, nil }
	t.Cleanup(func() { newConnector = prev })
	return fake
}

// testConfig returns a config with history in a temp dir and a saved key file.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.json")
	require.NoError(t, os.WriteFile(keyPath, []byte(testutil.ServiceAccountKey), 0o600))

	cfg := config.Defaults()
	cfg.Engine.Scope = "demo-project"
	cfg.Engine.CredentialsFile = keyPath
	cfg.History.Path = filepath.Join(dir, "history.db")
	cfg.Cache.Enabled = false
	return cfg
}

func runCommand(t *testing.T, cfg *config.Config, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	ctx := config.WithLogger(config.WithConfig(context.Background(), cfg), testutil.NewTestLogger(t))
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func salesTable(t *testing.T) *core.Table {
	return testutil.NewTable(t,
		[]core.Column{
			{Name: "state", Type: "STRING", Kind: core.KindString},
			{Name: "total", Type: "INT64", Kind: core.KindInteger},
		},
		[]any{"CA", int64(10)},
		[]any{"NY", nil},
	)
}

func recentHistory(t *testing.T, cfg *config.Config) []history.Entry {
	t.Helper()
	store := history.NewStore(nil)
	require.NoError(t, store.Open(cfg.History.Path))
	defer func() { _ = store.Close() }()
	entries, err := store.RecentAll(context.Background(), 10)
	require.NoError(t, err)
	return entries
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd     *cobra.Command
		use     string
		flags   []string
		aliases []string
	}{
		{cmd: NewServeCommand(), use: "serve", flags: []string{"port", "dev", "no-browser"}, aliases: []string{"ui"}},
		{cmd: NewQueryCommand(), use: "query [SQL]", flags: []string{"format", "input"}},
		{cmd: NewShellCommand(), use: "shell", flags: []string{"format"}},
		{cmd: NewDatasetsCommand(), use: "datasets", flags: []string{"format"}},
		{cmd: NewTablesCommand(), use: "tables <dataset>", flags: []string{"format"}},
		{cmd: NewDescribeCommand(), use: "describe <dataset> <table>", flags: []string{"format"}},
		{cmd: NewHistoryCommand(), use: "history", flags: []string{"format", "limit", "workspace"}},
		{cmd: NewInitCommand(), use: "init [directory]", flags: []string{"force"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
			assert.Equal(t, tt.aliases, tt.cmd.Aliases)
		})
	}
}

func TestQueryCommand(t *testing.T) {
	fake := useFakeEngine(t)
	fake.SetResult("SELECT state, total FROM sales", salesTable(t))
	cfg := testConfig(t)

	out, _, err := runCommand(t, cfg, NewQueryCommand(), "SELECT state, total", "FROM sales")
	require.NoError(t, err)

	assert.Contains(t, out, "STATE", "headers are upper-cased")
	assert.Contains(t, out, "CA")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
	assert.Equal(t, 1, fake.Calls("execute"))
	assert.Equal(t, 1, fake.Calls("close"), "client is closed after the command")

	entries := recentHistory(t, cfg)
	require.Len(t, entries, 1)
	assert.Equal(t, "cli", entries[0].WorkspaceID)
	assert.Equal(t, history.StatusSucceeded, entries[0].Status)
	assert.Equal(t, 2, entries[0].RowCount)
}

func TestQueryCommand_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   []string
		absent string
	}{
		{format: "json", want: []string{`"state": "CA"`, `"total": null`}, absent: "rows)"},
		{format: "csv", want: []string{"state,total", "CA,10", "NY,NULL"}, absent: "rows)"},
		{format: "md", want: []string{"| state | total |", "| CA | 10 |"}, absent: "rows)"},
		{format: "table", want: []string{"(2 rows)"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			fake := useFakeEngine(t)
			fake.SetResult("SELECT 1", salesTable(t))

			out, _, err := runCommand(t, testConfig(t), NewQueryCommand(), "--format", tt.format, "SELECT 1")
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
			if tt.absent != "" {
				assert.NotContains(t, out, tt.absent)
			}
		})
	}
}

func TestQueryCommand_DefaultFormatFromConfig(t *testing.T) {
	fake := useFakeEngine(t)
	fake.SetResult("SELECT 1", salesTable(t))
	cfg := testConfig(t)
	cfg.Output = "csv"

	out, _, err := runCommand(t, cfg, NewQueryCommand(), "SELECT 1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "state,total"), out)
}

func TestQueryCommand_InputFile(t *testing.T) {
	fake := useFakeEngine(t)
	fake.SetResult("SELECT 1", salesTable(t))

	path := filepath.Join(t.TempDir(), "q.sql")
	require.NoError(t, os.WriteFile(path, []byte("\n  SELECT 1\n"), 0o600))

	out, _, err := runCommand(t, testConfig(t), NewQueryCommand(), "--input", path)
	require.NoError(t, err)
	assert.Contains(t, out, "CA")
}

func TestQueryCommand_Stdin(t *testing.T) {
	fake := useFakeEngine(t)
	fake.SetResult("SELECT 1", salesTable(t))

	prev := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdinIsTerminal = prev })

	cmd := NewQueryCommand()
	cmd.SetIn(strings.NewReader("SELECT 1\n"))
	out, _, err := runCommand(t, testConfig(t), cmd)
	require.NoError(t, err)
	assert.Contains(t, out, "NY")
}

func TestQueryCommand_Errors(t *testing.T) {
	t.Run("blank sql", func(t *testing.T) {
		fake := useFakeEngine(t)
		_, _, err := runCommand(t, testConfig(t), NewQueryCommand(), "   ")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrEmptyInput)
		assert.Zero(t, fake.Calls("connect"))
	})

	t.Run("engine error is recorded", func(t *testing.T) {
		fake := useFakeEngine(t)
		fake.SetQueryError("SELECT nope", errors.New("Unrecognized name: nope"))
		cfg := testConfig(t)

		_, _, err := runCommand(t, cfg, NewQueryCommand(), "SELECT nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrEngine)
		assert.Contains(t, err.Error(), "Unrecognized name: nope")

		entries := recentHistory(t, cfg)
		require.Len(t, entries, 1)
		assert.Equal(t, history.StatusFailed, entries[0].Status)
	})

	t.Run("connect rejected", func(t *testing.T) {
		fake := useFakeEngine(t)
		fake.SetConnectError(errors.New("permission denied"))

		_, _, err := runCommand(t, testConfig(t), NewQueryCommand(), "SELECT 1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Connecting to the warehouse")
	})

	t.Run("malformed key", func(t *testing.T) {
		useFakeEngine(t)
		cfg := testConfig(t)
		require.NoError(t, os.WriteFile(cfg.Engine.CredentialsFile, []byte(`{"type":"service_account"}`), 0o600))

		_, _, err := runCommand(t, cfg, NewQueryCommand(), "SELECT 1")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		useFakeEngine(t)
		_, _, err := runCommand(t, testConfig(t), NewQueryCommand(), "--input", filepath.Join(t.TempDir(), "none.sql"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read file")
	})
}

func TestQueryCommand_ConnectsWithKeyFingerprint(t *testing.T) {
	fake := useFakeEngine(t)
	fake.SetResult("SELECT 1", salesTable(t))

	_, _, err := runCommand(t, testConfig(t), NewQueryCommand(), "SELECT 1")
	require.NoError(t, err)

	fps := fake.Fingerprints()
	require.Len(t, fps, 1)
	assert.Len(t, fps[0], 16)
}

func TestDatasetsCommand(t *testing.T) {
	fake := useFakeEngine(t)
	fake.SetDatasets("marketing", "sales")

	out, _, err := runCommand(t, testConfig(t), NewDatasetsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "DATASET")
	assert.Contains(t, out, "marketing")
	assert.Contains(t, out, "(2 rows)")

	out, _, err = runCommand(t, testConfig(t), NewDatasetsCommand(), "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `["marketing","sales"]`, out)
}

func TestDatasetsCommand_Empty(t *testing.T) {
	useFakeEngine(t)

	out, _, err := runCommand(t, testConfig(t), NewDatasetsCommand(), "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestTablesCommand(t *testing.T) {
	fake := useFakeEngine(t)
	fake.SetTables("sales", "orders", "customers")

	out, _, err := runCommand(t, testConfig(t), NewTablesCommand(), "sales")
	require.NoError(t, err)
	assert.Contains(t, out, "orders")
	assert.Contains(t, out, "customers")

	_, _, err = runCommand(t, testConfig(t), NewTablesCommand(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Loading tables: Not found: Dataset missing")

	_, _, err = runCommand(t, testConfig(t), NewTablesCommand())
	require.Error(t, err, "dataset argument is required")
}

func TestDescribeCommand(t *testing.T) {
	fake := useFakeEngine(t)
	fake.SetMetadata("sales", "orders", []core.FieldSchema{
		{Name: "id", Type: "INT64", Mode: core.ModeRequired},
		{Name: "state", Type: "STRING", Mode: core.ModeNullable},
	})

	out, _, err := runCommand(t, testConfig(t), NewDescribeCommand(), "sales", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "Table: `demo-project.sales.orders`")
	assert.Contains(t, out, "REQUIRED")
	assert.Contains(t, out, "STRING")

	out, _, err = runCommand(t, testConfig(t), NewDescribeCommand(), "--format", "json", "sales", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "`+"`demo-project.sales.orders`"+`"`)
	assert.Contains(t, out, `"mode": "REQUIRED"`)
	assert.Contains(t, out, `LIMIT 10;`)

	_, _, err = runCommand(t, testConfig(t), NewDescribeCommand(), "sales", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Loading table schema")
}

func TestHistoryCommand(t *testing.T) {
	cfg := testConfig(t)
	store := history.NewStore(nil)
	require.NoError(t, store.Open(cfg.History.Path))
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, history.Entry{WorkspaceID: "cli", SQL: "SELECT 1", Status: history.StatusSucceeded, RowCount: 1}))
	require.NoError(t, store.Record(ctx, history.Entry{WorkspaceID: "ws-1", SQL: "SELECT\n  broken", Status: history.StatusFailed, Error: "syntax error"}))
	require.NoError(t, store.Close())

	out, _, err := runCommand(t, cfg, NewHistoryCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT 1")
	assert.Contains(t, out, "SELECT broken", "whitespace is collapsed")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "(2 rows)")

	out, _, err = runCommand(t, cfg, NewHistoryCommand(), "--workspace", "ws-1", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"workspace": "ws-1"`)
	assert.Contains(t, out, `"error": "syntax error"`)
	assert.NotContains(t, out, `"workspace": "cli"`)
}

func TestHistoryCommand_Disabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Enabled = false

	_, _, err := runCommand(t, cfg, NewHistoryCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history is disabled")
}

func TestNewRuntime(t *testing.T) {
	fake := useFakeEngine(t)
	fake.SetDatasets("sales")
	cfg := testConfig(t)
	cfg.Cache.Enabled = true

	cc := &CommandContext{Cfg: cfg, Logger: testutil.NewTestLogger(t)}
	rt, err := cc.NewRuntime(context.Background())
	require.NoError(t, err)

	ws := rt.Registry.Create(context.Background())
	v := ws.View(context.Background())
	assert.True(t, v.Connected, "bootstrapped from the credentials file")
	assert.Equal(t, []string{"sales"}, v.Datasets)
	require.NotNil(t, rt.History)

	require.NoError(t, rt.Close())
	assert.Equal(t, 1, fake.Calls("close"))
}

func TestNewRuntime_UnknownCacheBackend(t *testing.T) {
	useFakeEngine(t)
	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.Backend = "memcached"

	cc := &CommandContext{Cfg: cfg, Logger: testutil.NewTestLogger(t)}
	_, err := cc.NewRuntime(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cache backend")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, "x", formatValue("x"))
	assert.Equal(t, "1.5", formatValue(1.5))
	assert.Equal(t, "42", formatValue(int64(42)))
	assert.Equal(t, "AQI=", formatValue([]byte{1, 2}))
}

func TestRenderTable_Truncated(t *testing.T) {
	tbl, err := core.NewTable([]core.Column{{Name: "n", Kind: core.KindInteger}}, [][]any{{int64(1)}}, true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderTable(&buf, tbl, "table"))
	assert.Contains(t, buf.String(), "truncated")

	buf.Reset()
	require.NoError(t, renderTable(&buf, tbl, "csv"))
	assert.NotContains(t, buf.String(), "truncated")
}
