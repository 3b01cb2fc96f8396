//go:build !tinygo

package app

import (
	"io"
	"log/slog"

	"wakeos/hal"
	"wakeos/internal/config"
)

// HostConfig maps a board profile onto the simulated host board.
func HostConfig(b config.Board, out io.Writer) hal.HostConfig {
	return hal.HostConfig{
		Width:        b.Display.Width,
		Height:       b.Display.Height,
		TickHz:       b.TickHz,
		ButtonPeriod: b.Button.Period,
		ButtonHold:   b.Button.Hold,
		TraceLED:     b.Log.Level == "debug",
		Out:          out,
	}
}

// Factory returns the constructor the host runners call with their HAL.
func Factory(b config.Board, log *slog.Logger) func(hal.HAL) (hal.Runner, error) {
	return func(h hal.HAL) (hal.Runner, error) {
		return New(h, b, log)
	}
}
