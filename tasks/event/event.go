// Package event is the record the demo tasks post to the status console.
package event

import (
	"fmt"
	"time"

	"wakeos/kernel"
)

type Kind uint8

const (
	KindButton Kind = iota + 1
	KindClock
	KindPingPong
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindClock:
		return "clock"
	case KindPingPong:
		return "pingpong"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Event is one line of activity from a task.
type Event struct {
	Kind Kind
	Tick uint64

	Pressed bool
	Count   uint32

	Time   time.Time
	TempMC int32

	Err error
}

func (e Event) String() string {
	switch e.Kind {
	case KindButton:
		state := "up"
		if e.Pressed {
			state = "down"
		}
		return fmt.Sprintf("%6d btn %s #%d", e.Tick, state, e.Count)
	case KindClock:
		if e.Err != nil {
			return fmt.Sprintf("%6d rtc err %v", e.Tick, e.Err)
		}
		sign, mc := "", e.TempMC
		if mc < 0 {
			sign, mc = "-", -mc
		}
		return fmt.Sprintf("%6d rtc %s %s%d.%02dC", e.Tick, e.Time.Format("15:04:05"), sign, mc/1000, mc%1000/10)
	case KindPingPong:
		return fmt.Sprintf("%6d ping %d", e.Tick, e.Count)
	case KindHeartbeat:
		return fmt.Sprintf("%6d beat %d", e.Tick, e.Count)
	default:
		return fmt.Sprintf("%6d ?", e.Tick)
	}
}

// Bus carries events from the demo tasks to the status task.
type Bus = kernel.Channel[Event]

// Post queues e without blocking. A nil bus or a full queue drops the event.
func Post(bus *Bus, e Event) bool {
	if bus == nil {
		return false
	}
	return bus.TrySend(e)
}
