package kernel

import "sync/atomic"

// ReadySet is the set of task handles marked for polling.
//
// Bit i is set when handle i should be polled again. Interrupt handlers set
// bits through WakeTokens; only the executor clears them.
type ReadySet struct {
	_      [0]func() // prevent accidental copying.
	bits   atomic.Uint32
	bound  atomic.Uint32
	idle   Idle
	wakers [MaxTasks]waker
}

type waker struct {
	rs *ReadySet
	h  Handle
}

// NewReadySet creates a ready-set that notifies idle after every set.
func NewReadySet(idle Idle) *ReadySet {
	rs := &ReadySet{}
	rs.init(idle)
	return rs
}

func (r *ReadySet) init(idle Idle) {
	r.idle = idle
	for i := range r.wakers {
		r.wakers[i] = waker{rs: r, h: Handle(i)}
	}
}

// Token returns the wake token for handle h.
func (r *ReadySet) Token(h Handle) WakeToken {
	if int(h) >= MaxTasks || r.wakers[h].rs == nil {
		return WakeToken{}
	}
	return WakeToken{w: &r.wakers[h]}
}

// Snapshot returns the current bitmask.
func (r *ReadySet) Snapshot() uint32 { return r.bits.Load() }

// Empty reports whether no task is marked ready.
func (r *ReadySet) Empty() bool { return r.bits.Load() == 0 }

func (r *ReadySet) set(h Handle) {
	m := uint32(1) << h
	for {
		old := r.bits.Load()
		if old&m != 0 || r.bits.CompareAndSwap(old, old|m) {
			break
		}
	}
	// Notify even when the bit was already set: the executor may be between
	// its empty check and the wait.
	if r.idle != nil {
		r.idle.Notify()
	}
}

func (r *ReadySet) take(h Handle) bool {
	m := uint32(1) << h
	for {
		old := r.bits.Load()
		if old&m == 0 {
			return false
		}
		if r.bits.CompareAndSwap(old, old&^m) {
			return true
		}
	}
}

// bind records that an interrupt source holds h's token.
func (r *ReadySet) bind(h Handle) {
	m := uint32(1) << h
	for {
		old := r.bound.Load()
		if old&m != 0 || r.bound.CompareAndSwap(old, old|m) {
			return
		}
	}
}

func (r *ReadySet) isBound(h Handle) bool {
	return r.bound.Load()&(uint32(1)<<h) != 0
}

func (r *ReadySet) isSet(h Handle) bool {
	return r.bits.Load()&(uint32(1)<<h) != 0
}

// WakeToken marks one task ready to be polled again.
//
// Set may be called from any context, including interrupt handlers.
// The zero WakeToken is inert.
type WakeToken struct {
	w *waker
}

// Set marks the task ready. Setting an already set token has no further effect.
func (t WakeToken) Set() {
	if t.w == nil {
		return
	}
	t.w.rs.set(t.w.h)
}

// TakeAndClear atomically reports whether the token was set and clears it.
func (t WakeToken) TakeAndClear() bool {
	if t.w == nil {
		return false
	}
	return t.w.rs.take(t.w.h)
}

// IsSet reports whether the token is currently set.
func (t WakeToken) IsSet() bool {
	if t.w == nil {
		return false
	}
	return t.w.rs.isSet(t.w.h)
}

// Valid reports whether the token is bound to a task.
func (t WakeToken) Valid() bool { return t.w != nil }

// Handle returns the task handle the token is bound to.
func (t WakeToken) Handle() (Handle, bool) {
	if t.w == nil {
		return 0, false
	}
	return t.w.h, true
}
