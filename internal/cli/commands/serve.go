package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/leapview/internal/ui"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	NoBrowser bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the leapview dashboard",
		Long: `Start a local web server with the warehouse dashboard.

The dashboard provides:
- Saving a warehouse key
- Dataset and table browsing with schema previews
- A SQL editor with result tables
- A chart builder over the latest result
- Recent query history`,
		Example: `  # Start on the default port
  leapview serve

  # Start on a custom port without opening a browser
  leapview serve --port 3000 --no-browser

  # Connect every new workspace with a key file
  leapview serve --credentials ./service-account.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: ui.port)")
	cmd.Flags().Bool("dev", false, "Serve assets from disk and enable live reload")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open the browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	secret := cfg.UI.SessionSecret
	if secret == "" {
		var err error
		secret, err = generateSessionSecret()
		if err != nil {
			return err
		}
		cc.Logger.Info("no ui.session_secret configured, sessions will not survive a restart")
	}

	rt, err := cc.NewRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			cc.Logger.Warn("failed to shut down cleanly", slog.String("error", err.Error()))
		}
	}()

	serverCfg := ui.Config{
		Registry:      rt.Registry,
		HistoryLimit:  cfg.UI.HistoryLimit,
		Engine:        cfg.Engine.Type,
		Port:          cfg.UI.Port,
		SessionSecret: secret,
		SessionTTL:    cfg.UI.SessionTTL,
		Dev:           cfg.UI.Dev,
		Logger:        cc.Logger,
	}
	if rt.History != nil {
		serverCfg.History = rt.History
	}

	server, err := ui.NewServer(serverCfg)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d", cfg.UI.Port)
	if cfg.UI.AutoOpen && !opts.NoBrowser {
		go openBrowser(url)
	}

	_, _ = fmt.Fprintf(cc.Out, "Starting leapview on %s\n", url)
	_, _ = fmt.Fprintln(cc.Out, "Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// generateSessionSecret returns a random cookie signing key.
func generateSessionSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
