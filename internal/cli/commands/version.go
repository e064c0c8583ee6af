package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/leapstack-labs/leapview/pkg/engine"
	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leapview version, build information and the compiled-in engines.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "leapview v%s\n", info.Version)
			_, _ = fmt.Fprintf(out, "commit %s, built %s, %s\n", info.GitCommit, info.BuildDate, runtime.Version())
			_, _ = fmt.Fprintf(out, "engines: %s\n", strings.Join(engine.ListEngines(), ", "))
		},
	}
}
