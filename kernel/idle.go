package kernel

import (
	"runtime"
	"sync/atomic"
)

// Idle is the strategy the executor uses when no task is ready.
//
// Notify is called after every wake token set, possibly from interrupt
// context, and must latch: a Wait that starts after a Notify must return
// promptly. Wait may return spuriously; the executor re-checks the ready-set.
type Idle interface {
	Notify()
	Wait(ready func() bool)
}

// EventIdle blocks on a latched event, like SEV/WFE on Cortex-M.
//
// The zero value is not usable; create one with NewEventIdle.
type EventIdle struct {
	ev chan struct{}
}

func NewEventIdle() *EventIdle {
	return &EventIdle{ev: make(chan struct{}, 1)}
}

func (i *EventIdle) Notify() {
	select {
	case i.ev <- struct{}{}:
	default:
	}
}

func (i *EventIdle) Wait(ready func() bool) {
	if ready() {
		return
	}
	<-i.ev
}

// SpinIdle never sleeps.
type SpinIdle struct{}

func (SpinIdle) Notify()          {}
func (SpinIdle) Wait(func() bool) {}

// GoschedIdle yields the processor until notified.
//
// It suits TinyGo targets whose interrupt sources are goroutines.
type GoschedIdle struct {
	flag atomic.Bool
}

func (i *GoschedIdle) Notify() { i.flag.Store(true) }

func (i *GoschedIdle) Wait(ready func() bool) {
	for !i.flag.Swap(false) {
		if ready() {
			return
		}
		runtime.Gosched()
	}
}

// ParseIdle returns the named strategy: "event", "spin", "gosched" or
// "default" (the best choice for the build).
func ParseIdle(name string) (Idle, bool) {
	switch name {
	case "", "default":
		return defaultIdle(), true
	case "event":
		return NewEventIdle(), true
	case "spin":
		return SpinIdle{}, true
	case "gosched":
		return &GoschedIdle{}, true
	}
	return platformIdle(name)
}
