package kernel

// Mutex is a lock shared by tasks of one executor.
//
// A task that fails to lock is parked in a wait mask; Unlock hands the wake
// to the lowest waiting handle. Mutex is not safe for use from interrupt
// handlers. The zero value is unlocked.
type Mutex struct {
	_ [0]func() // prevent accidental copying.

	locked bool
	wait   uint32
	rs     *ReadySet
}

// TryLock acquires the lock if it is free.
func (m *Mutex) TryLock() bool {
	if m.locked {
		return false
	}
	m.locked = true
	return true
}

// PollLock acquires the lock, or registers the task to be woken by Unlock.
func (m *Mutex) PollLock(cx *Context) bool {
	if m.TryLock() {
		m.wait &^= 1 << cx.h
		return true
	}
	m.rs = cx.readySet()
	cx.armed = true
	m.wait |= 1 << cx.h
	return false
}

// Locked reports whether the mutex is held.
func (m *Mutex) Locked() bool { return m.locked }

// Unlock releases the lock and wakes one waiter.
func (m *Mutex) Unlock() {
	if !m.locked {
		panic("kernel: unlock of unlocked Mutex")
	}
	m.locked = false
	if m.wait == 0 || m.rs == nil {
		return
	}
	h := lowestBit(m.wait)
	m.wait &^= 1 << h
	m.rs.set(h)
}
