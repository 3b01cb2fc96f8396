//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"wakeos/app"
	"wakeos/hal"
	"wakeos/internal/config"
	"wakeos/internal/logging"
)

func main() {
	var (
		headless   bool
		fast       bool
		hz         int
		ticks      uint64
		configPath string
		logLevel   string
	)
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.BoolVar(&fast, "fast", false, "Raise ticks back to back in headless mode.")
	flag.IntVar(&hz, "hz", 0, "Tick rate (0 = board profile).")
	flag.Uint64Var(&ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run until done).")
	flag.StringVar(&configPath, "config", "", "Board profile (YAML).")
	flag.StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn, error.")
	flag.Parse()

	board := config.Default()
	if configPath != "" {
		b, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		board = b
	}
	if hz > 0 {
		board.TickHz = hz
	}
	if logLevel != "" {
		board.Log.Level = logLevel
	}
	if err := board.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logging.NewLogger(logging.ParseLevel(board.Log.Level), board.Log.Format, os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if headless {
		err = hal.RunHeadless(ctx, app.Factory(board, log), hal.HeadlessConfig{
			Board: app.HostConfig(board, os.Stdout),
			Ticks: ticks,
			Fast:  fast,
		})
	} else {
		err = hal.RunWindow(ctx, app.Factory(board, log), app.HostConfig(board, os.Stdout))
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
