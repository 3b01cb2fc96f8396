// Package button counts button presses delivered by the edge interrupt.
package button

import (
	"wakeos/kernel"
	"wakeos/tasks/event"
)

// Edge is what the interrupt handler publishes.
type Edge struct {
	Pressed bool
	Tick    uint64
}

// Handler returns the interrupt handler for a hal.Button. It stamps each
// edge with the timer's tick and publishes it on sig.
func Handler(sig *kernel.Signal[Edge], timer *kernel.Timer) func(pressed bool) {
	return func(pressed bool) {
		sig.Write(Edge{Pressed: pressed, Tick: timer.Now()})
	}
}

// Task consumes edges and forwards presses to the status bus. Edges that
// arrive faster than the task runs collapse to the latest one.
type Task struct {
	sig   *kernel.Signal[Edge]
	bus   *event.Bus
	limit uint32

	presses  uint32
	releases uint32
	missed   uint32
}

// New returns a task that completes after limit presses, or never when
// limit is zero.
func New(sig *kernel.Signal[Edge], bus *event.Bus, limit uint32) *Task {
	return &Task{sig: sig, bus: bus, limit: limit}
}

func (t *Task) Name() string { return "button" }

// Presses returns the number of press edges seen.
func (t *Task) Presses() uint32 { return t.presses }

// Missed returns the number of edges overwritten before the task saw them.
func (t *Task) Missed() uint32 { return t.missed }

func (t *Task) Poll(cx *kernel.Context) kernel.Status {
	for {
		e, ok := t.sig.PollTake(cx)
		if !ok {
			return kernel.Pending
		}
		if m := t.sig.Overwrites(); m != t.missed {
			cx.Logger().Debug("button edges collapsed", "missed", m-t.missed)
			t.missed = m
		}
		if !e.Pressed {
			t.releases++
			continue
		}
		t.presses++
		event.Post(t.bus, event.Event{Kind: event.KindButton, Tick: e.Tick, Pressed: true, Count: t.presses})
		if t.limit > 0 && t.presses >= t.limit {
			return kernel.Complete
		}
	}
}
