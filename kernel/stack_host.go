//go:build !tinygo

package kernel

import "runtime/debug"

const maxFaultStack = 8 << 10

func captureStack() []byte {
	st := debug.Stack()
	if len(st) > maxFaultStack {
		st = st[:maxFaultStack]
	}
	return st
}
