package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapview/internal/cli/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = `# leapview configuration.
# Every key can be overridden with a LEAPVIEW_ environment variable,
# e.g. LEAPVIEW_UI_PORT=9000 or LEAPVIEW_ENGINE_SCOPE=my-project.
`

// starterConfig is the file written by init. Field order is the order in the file.
type starterConfig struct {
	Engine struct {
		Type            string `yaml:"type"`
		Scope           string `yaml:"scope"`
		Location        string `yaml:"location,omitempty"`
		Path            string `yaml:"path,omitempty"`
		MaxRows         int    `yaml:"max_rows"`
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"engine"`
	UI struct {
		Port          int    `yaml:"port"`
		AutoOpen      bool   `yaml:"auto_open"`
		SessionSecret string `yaml:"session_secret"`
		SessionTTL    string `yaml:"session_ttl"`
		QueryTimeout  string `yaml:"query_timeout"`
		HistoryLimit  int    `yaml:"history_limit"`
	} `yaml:"ui"`
	Cache struct {
		Enabled    bool   `yaml:"enabled"`
		Backend    string `yaml:"backend"`
		TTL        string `yaml:"ttl"`
		MaxEntries int    `yaml:"max_entries"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	History struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"history"`
	LogLevel string `yaml:"log_level"`
	Output   string `yaml:"output"`
}

func newStarterConfig(engineType string) starterConfig {
	d := config.Defaults()

	var s starterConfig
	s.Engine.Type = engineType
	s.Engine.MaxRows = d.Engine.MaxRows
	switch engineType {
	case "bigquery":
		s.Engine.Scope = "my-gcp-project"
		s.Engine.Location = "US"
		s.Engine.CredentialsFile = "./service-account.json"
	case "duckdb":
		s.Engine.Scope = "warehouse"
		s.Engine.Path = "warehouse.duckdb"
	default:
		s.Engine.Scope = "analytics"
	}

	s.UI.Port = d.UI.Port
	s.UI.AutoOpen = d.UI.AutoOpen
	s.UI.SessionTTL = d.UI.SessionTTL.String()
	s.UI.QueryTimeout = d.UI.QueryTimeout.String()
	s.UI.HistoryLimit = d.UI.HistoryLimit

	s.Cache.Enabled = d.Cache.Enabled
	s.Cache.Backend = d.Cache.Backend
	s.Cache.TTL = d.Cache.TTL.String()
	s.Cache.MaxEntries = d.Cache.MaxEntries
	s.Cache.Redis.Addr = "localhost:6379"

	s.History.Enabled = d.History.Enabled
	s.History.Path = d.History.Path

	s.LogLevel = d.LogLevel
	s.Output = d.Output
	return s
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter leapview.yaml",
		Long: `Write a starter leapview.yaml with every setting at its default value.

The engine section is filled in with placeholders for the engine chosen
with --engine.`,
		Example: `  # Initialize in the current directory
  leapview init

  # Initialize for a local DuckDB file
  leapview init --engine duckdb

  # Overwrite an existing file
  leapview init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			engineType := config.DefaultEngine
			if f := cmd.Flags().Lookup("engine"); f != nil && f.Changed {
				engineType = f.Value.String()
			}
			path, err := runInit(dir, engineType, force)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Next steps:")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "  1. Fill in engine.scope and your credentials")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "  2. Run 'leapview datasets' to check the connection")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "  3. Run 'leapview serve' to open the dashboard")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")

	return cmd
}

func runInit(dir, engineType string, force bool) (string, error) {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	path := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists. Use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(newStarterConfig(engineType)); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
