//go:build tinygo && !cortexm

package kernel

func defaultIdle() Idle { return &GoschedIdle{} }

func platformIdle(string) (Idle, bool) { return nil, false }
