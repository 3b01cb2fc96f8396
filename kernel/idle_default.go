//go:build !tinygo

package kernel

func defaultIdle() Idle { return NewEventIdle() }

func platformIdle(string) (Idle, bool) { return nil, false }
