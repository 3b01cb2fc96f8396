// Package heartbeat blinks the board LED in a repeating on/off pattern.
package heartbeat

import (
	"wakeos/hal"
	"wakeos/kernel"
	"wakeos/tasks/event"
)

// Task steps through Pattern, turning the LED on for even steps and off for
// odd ones. Each step sleeps on the kernel timer.
type Task struct {
	led     hal.LED
	timer   *kernel.Timer
	bus     *event.Bus
	pattern []uint64
	limit   int

	step    int
	beats   int
	delay   kernel.Delay
	started bool
}

// New returns a heartbeat that stops after beats full patterns, or never
// when beats is zero.
func New(led hal.LED, timer *kernel.Timer, pattern []int, beats int, bus *event.Bus) *Task {
	p := make([]uint64, 0, len(pattern))
	for _, n := range pattern {
		if n > 0 {
			p = append(p, uint64(n))
		}
	}
	if len(p) == 0 {
		p = []uint64{1}
	}
	return &Task{led: led, timer: timer, bus: bus, pattern: p, limit: beats}
}

func (t *Task) Name() string { return "heartbeat" }

// Beats returns the number of completed patterns.
func (t *Task) Beats() int { return t.beats }

func (t *Task) Poll(cx *kernel.Context) kernel.Status {
	if !t.started {
		t.started = true
		t.apply()
	}
	for {
		if _, ok := t.delay.Poll(cx); !ok {
			return kernel.Pending
		}
		t.step++
		if t.step == len(t.pattern) {
			t.step = 0
			t.beats++
			event.Post(t.bus, event.Event{Kind: event.KindHeartbeat, Tick: t.timer.Now(), Count: uint32(t.beats)})
			if t.limit > 0 && t.beats >= t.limit {
				t.led.Low()
				cx.Logger().Debug("heartbeat done", "beats", t.beats)
				return kernel.Complete
			}
		}
		t.apply()
	}
}

func (t *Task) apply() {
	if t.step%2 == 0 {
		t.led.High()
	} else {
		t.led.Low()
	}
	t.delay = t.timer.Delay(t.pattern[t.step])
}
