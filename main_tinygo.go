//go:build tinygo && baremetal

package main

import (
	"wakeos/app"
	"wakeos/hal"
	"wakeos/internal/config"
)

func main() {
	board := config.Default()
	app.Run(hal.New(board.TickHz), board)
}
