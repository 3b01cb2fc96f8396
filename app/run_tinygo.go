//go:build tinygo && baremetal

package app

import (
	"context"
	"machine"
	"time"

	"wakeos/hal"
	"wakeos/internal/config"
	"wakeos/internal/logging"
)

// Run starts the system and never returns (TinyGo entrypoint). A task fault
// resets the board.
func Run(h hal.HAL, board config.Board) {
	log := logging.NewLogger(logging.ParseLevel(board.Log.Level), board.Log.Format, logging.NewLineWriter(h.Logger()))
	s, err := New(h, board, log)
	if err != nil {
		h.Logger().WriteLineString("app: " + err.Error())
		halt()
	}
	if err := s.Run(context.Background()); err != nil {
		time.Sleep(2 * time.Second)
		machine.CPUReset()
	}
	halt()
}

func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
