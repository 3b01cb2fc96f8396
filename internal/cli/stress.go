package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"wakeos/internal/stress"
)

func newStressCmd() *cobra.Command {
	var cfg stress.Config
	var mode string

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Hammer the interrupt wake path with random interleavings",
		Long: `Spawns one consumer task per producer goroutine. Producers write
increasing values through a Signal or a bare wake token with random pauses;
the run fails if any consumer misses its producer's final write.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Mode = stress.Mode(mode)
			if cfg.Seed == 0 {
				cfg.Seed = uint64(time.Now().UnixNano())
			}
			logger.Debug("stress", "seed", cfg.Seed, "producers", cfg.Producers, "mode", mode)

			rep, err := stress.Run(cmd.Context(), cfg)
			printReport(cmd.OutOrStdout(), rep)
			if err != nil {
				return fmt.Errorf("stress (seed %d): %w", rep.Config.Seed, err)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 0, "Random seed (0 = time based)")
	cmd.Flags().IntVar(&cfg.Producers, "producers", 8, "Producer goroutines, one consumer task each")
	cmd.Flags().IntVar(&cfg.Writes, "writes", 1000, "Writes per producer")
	cmd.Flags().StringVar(&mode, "mode", string(stress.ModeMixed), "Wake primitive: signal, token, mixed")
	cmd.Flags().StringVar(&cfg.Idle, "idle", "", "Idle strategy: event, spin, gosched")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "Give up after this long")

	return cmd
}

func printReport(w io.Writer, rep stress.Report) {
	c := rep.Config
	fmt.Fprintf(w, "seed:      %d\n", c.Seed)
	fmt.Fprintf(w, "mode:      %s x %d producers, %d writes\n", c.Mode, c.Producers, c.Writes)
	fmt.Fprintf(w, "observed:  %d\n", rep.Observed)
	fmt.Fprintf(w, "collapsed: %d\n", rep.Collapsed)
	fmt.Fprintf(w, "stuck:     %d\n", rep.Stuck)
	fmt.Fprintf(w, "cycles:    %d (polls %d, idle waits %d)\n", rep.Stats.Cycles, rep.Stats.Polls, rep.Stats.IdleWaits)
	fmt.Fprintf(w, "elapsed:   %s\n", rep.Elapsed.Round(time.Millisecond))
}
