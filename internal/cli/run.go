package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wakeos/app"
	"wakeos/hal"
	"wakeos/internal/config"
	"wakeos/internal/logging"
)

func newRunCmd() *cobra.Command {
	var ticks uint64
	var fast bool
	var hz int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the demo board without a window",
		Long: `Boots the board profile on the simulated host HAL and raises tick
interrupts until every task completes, --ticks is reached, or the process
is interrupted. LED transitions and panel frames are written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := loadBoard(cmd)
			if err != nil {
				return err
			}
			if hz > 0 {
				board.TickHz = hz
				if err := board.Validate(); err != nil {
					return err
				}
			}

			logger = logging.NewLogger(logging.ParseLevel(board.Log.Level), board.Log.Format, cmd.ErrOrStderr())
			out := cmd.OutOrStdout()
			logger.Debug("run", "hz", board.TickHz, "ticks", ticks, "fast", fast, "tasks", board.Tasks)
			err = hal.RunHeadless(cmd.Context(), app.Factory(board, logger), hal.HeadlessConfig{
				Board: app.HostConfig(board, out),
				Ticks: ticks,
				Fast:  fast,
			})
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&ticks, "ticks", 0, "Stop after N tick interrupts (0 = until every task completes)")
	cmd.Flags().BoolVar(&fast, "fast", false, "Raise ticks back to back instead of at the board tick rate")
	cmd.Flags().IntVar(&hz, "hz", 0, "Override the board tick rate")

	return cmd
}

// loadBoard returns the --config profile, or the built-in one. The root
// --log-level and --log-format flags override the profile when set
// explicitly.
func loadBoard(cmd *cobra.Command) (config.Board, error) {
	board := config.Default()
	if flagConfig != "" {
		b, err := config.Load(flagConfig)
		if err != nil {
			return config.Board{}, err
		}
		board = b
	}
	if cmd.Flags().Changed("log-level") {
		board.Log.Level = flagLogLevel
	}
	if cmd.Flags().Changed("log-format") {
		board.Log.Format = flagLogFormat
	}
	return board, nil
}
