// Package clock samples the real-time clock on a fixed tick period.
package clock

import (
	"time"

	"wakeos/hal"
	"wakeos/kernel"
	"wakeos/tasks/event"
)

// Reading is one RTC sample.
type Reading struct {
	Tick   uint64
	Time   time.Time
	TempMC int32
	Err    error
}

// Task reads the RTC every period ticks and posts the reading.
type Task struct {
	rtc    hal.RTC
	timer  *kernel.Timer
	bus    *event.Bus
	period uint64
	limit  int

	delay   kernel.Delay
	started bool
	last    Reading
	samples int
	errors  int
}

// New returns a task that stops after samples readings, or never when
// samples is zero.
func New(rtc hal.RTC, timer *kernel.Timer, periodTicks, samples int, bus *event.Bus) *Task {
	if periodTicks <= 0 {
		periodTicks = 1
	}
	return &Task{rtc: rtc, timer: timer, bus: bus, period: uint64(periodTicks), limit: samples}
}

func (t *Task) Name() string { return "clock" }

// Last returns the most recent reading.
func (t *Task) Last() Reading { return t.last }

// Samples returns the number of readings taken, including failed ones.
func (t *Task) Samples() int { return t.samples }

func (t *Task) Poll(cx *kernel.Context) kernel.Status {
	if !t.started {
		t.started = true
		t.delay = t.timer.Delay(t.period)
	}
	for {
		if _, ok := t.delay.Poll(cx); !ok {
			return kernel.Pending
		}
		t.sample(cx)
		if t.limit > 0 && t.samples >= t.limit {
			return kernel.Complete
		}
		t.delay.Reset()
	}
}

func (t *Task) sample(cx *kernel.Context) {
	r := Reading{Tick: t.timer.Now()}
	r.Time, r.Err = t.rtc.ReadTime()
	if r.Err == nil {
		r.TempMC, r.Err = t.rtc.ReadTemperature()
	}
	if r.Err != nil {
		t.errors++
		if t.errors == 1 {
			cx.Logger().Warn("rtc read failed", "err", r.Err)
		}
	}
	t.last = r
	t.samples++
	event.Post(t.bus, event.Event{Kind: event.KindClock, Tick: r.Tick, Time: r.Time, TempMC: r.TempMC, Err: r.Err})
}
