// Package hal is the board boundary: every interrupt source and peripheral
// the runtime talks to is reached through the HAL interface.
package hal

import (
	"errors"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp little-endian: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Time is the periodic tick interrupt source.
//
// The handler runs in interrupt context: it must not block and may only touch
// wake tokens, signals and the kernel timer.
type Time interface {
	SetTickHandler(fn func(seq uint64))
	TickHz() int
}

// Button is an edge-triggered input interrupt source.
//
// The handler runs in interrupt context on every press and release.
type Button interface {
	SetHandler(fn func(pressed bool))
}

// RTC is a battery-backed real-time clock with a temperature sensor.
type RTC interface {
	ReadTime() (time.Time, error)
	// ReadTemperature returns the die temperature in milli-degrees Celsius.
	ReadTemperature() (int32, error)
}

// HAL provides the only contact point between the runtime and the outside world.
type HAL interface {
	Logger() Logger
	LED() LED
	Time() Time
	Button() Button
	RTC() RTC
	Display() Display
}
