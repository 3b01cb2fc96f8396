// Package cli implements the wakesim command line.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"wakeos/internal/buildinfo"
	"wakeos/internal/logging"
)

var (
	flagLogLevel  string
	flagLogFormat string
	flagConfig    string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the wakesim CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "wakesim",
		Short:   "Simulate the wake-driven executor on the host",
		Long:    "wakesim runs the demo board headless and stress-tests the interrupt wake path.",
		Version: buildinfo.String(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Board profile (YAML)")

	root.AddCommand(
		newRunCmd(),
		newStressCmd(),
		newVersionCmd(),
	)

	return root
}
