package kernel

import "sync/atomic"

// PanicInfo describes the first task fault seen by any executor.
type PanicInfo struct {
	Handle Handle
	Task   string
	Value  any
	Stack  []byte
}

// faultLatch is process wide: one board, one fault screen, one reset.
type faultLatch struct {
	first   atomic.Pointer[PanicInfo]
	handler atomic.Pointer[func(PanicInfo)]
}

var latch faultLatch

// trip records info and runs the handler if this is the first fault.
func (l *faultLatch) trip(info PanicInfo) {
	if !l.first.CompareAndSwap(nil, &info) {
		return
	}
	if fn := l.handler.Load(); fn != nil && *fn != nil {
		(*fn)(info)
	}
}

func (l *faultLatch) reset() {
	l.first.Store(nil)
	l.handler.Store(nil)
}

// InPanicMode reports whether a task has faulted since start.
func InPanicMode() bool { return latch.first.Load() != nil }

// FirstFault returns the fault that tripped panic mode.
func FirstFault() (PanicInfo, bool) {
	p := latch.first.Load()
	if p == nil {
		return PanicInfo{}, false
	}
	return *p, true
}

// SetPanicHandler installs the handler run on the first fault. It must not
// panic.
func SetPanicHandler(fn func(PanicInfo)) { latch.handler.Store(&fn) }

// triggerPanic fills in the stack of the faulting goroutine and trips the
// latch. It must be called from the deferred recover.
func triggerPanic(info *PanicInfo) {
	info.Stack = captureStack()
	latch.trip(*info)
}
