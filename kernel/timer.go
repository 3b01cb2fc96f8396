package kernel

import "sync/atomic"

// MaxTimers is the number of deadlines a Timer can track at once.
const MaxTimers = 16

type timerEntry struct {
	inUse atomic.Bool
	armed atomic.Bool
	due   atomic.Uint64
	owner atomic.Pointer[waker]
}

// Timer is a tick counter with a fixed table of one-shot deadlines.
//
// Tick is meant to be called from the tick interrupt; everything else runs
// in task context. The zero value is ready to use.
type Timer struct {
	_ [0]func() // prevent accidental copying.

	now     atomic.Uint64
	entries [MaxTimers]timerEntry
}

// Now returns the current tick count.
func (t *Timer) Now() uint64 { return t.now.Load() }

// Tick sets the clock to now and wakes the owners of expired deadlines.
func (t *Timer) Tick(now uint64) {
	t.now.Store(now)
	for i := range t.entries {
		en := &t.entries[i]
		if !en.armed.Load() || en.due.Load() > now {
			continue
		}
		if !en.armed.CompareAndSwap(true, false) {
			continue
		}
		if w := en.owner.Load(); w != nil {
			w.rs.set(w.h)
		}
	}
}

// Advance moves the clock forward by n ticks.
func (t *Timer) Advance(n uint64) { t.Tick(t.Now() + n) }

// Armed returns the number of deadlines waiting to expire.
func (t *Timer) Armed() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].armed.Load() {
			n++
		}
	}
	return n
}

func (t *Timer) claim() int8 {
	for i := range t.entries {
		if t.entries[i].inUse.CompareAndSwap(false, true) {
			return int8(i)
		}
	}
	return -1
}

// Delay returns a future that completes ticks after its first poll.
func (t *Timer) Delay(ticks uint64) Delay {
	return Delay{t: t, ticks: ticks, slot: -1}
}

// Delay is a one-shot sleep on a Timer. Keep it in the task's state and poll
// it until it completes; Reset makes it reusable.
type Delay struct {
	t       *Timer
	ticks   uint64
	due     uint64
	started bool
	slot    int8
}

func (d *Delay) Poll(cx *Context) (struct{}, bool) {
	if !d.started {
		d.due = d.t.Now() + d.ticks
		d.started = true
	}
	if d.t.Now() >= d.due {
		d.release()
		return struct{}{}, true
	}
	if d.slot < 0 {
		d.slot = d.t.claim()
	}
	if d.slot < 0 {
		// Table full: poll again next cycle.
		cx.Waker().Set()
		return struct{}{}, false
	}
	en := &d.t.entries[d.slot]
	en.owner.Store(cx.Waker().w)
	en.due.Store(d.due)
	en.armed.Store(true)
	if d.t.Now() >= d.due {
		d.release()
		return struct{}{}, true
	}
	return struct{}{}, false
}

// Due returns the absolute deadline, valid after the first poll.
func (d *Delay) Due() uint64 { return d.due }

// Reset cancels the delay so the next poll starts a new wait.
func (d *Delay) Reset() {
	d.release()
	d.started = false
}

func (d *Delay) release() {
	if d.slot < 0 {
		return
	}
	en := &d.t.entries[d.slot]
	en.armed.Store(false)
	en.owner.Store(nil)
	en.inUse.Store(false)
	d.slot = -1
}
