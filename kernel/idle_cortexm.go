//go:build tinygo && cortexm

package kernel

import (
	"device/arm"
	"runtime/interrupt"
)

// WFEIdle sleeps with WFE. Notify raises the event register with SEV so a
// wake that lands before the WFE makes it fall through.
type WFEIdle struct{}

func (WFEIdle) Notify() { arm.Asm("sev") }

func (WFEIdle) Wait(ready func() bool) {
	if ready() {
		return
	}
	arm.Asm("wfe")
}

// WFIIdle sleeps with WFI, checking the ready-set with interrupts masked.
// A pending interrupt still ends WFI while masked.
type WFIIdle struct{}

func (WFIIdle) Notify() {}

func (WFIIdle) Wait(ready func() bool) {
	state := interrupt.Disable()
	if !ready() {
		arm.Asm("wfi")
	}
	interrupt.Restore(state)
}

func defaultIdle() Idle { return &GoschedIdle{} }

func platformIdle(name string) (Idle, bool) {
	switch name {
	case "wfe":
		return WFEIdle{}, true
	case "wfi":
		return WFIIdle{}, true
	}
	return nil, false
}
