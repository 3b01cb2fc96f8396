package pingpong

import (
	"context"
	"testing"
	"time"

	"wakeos/kernel"
	"wakeos/tasks/event"
)

func TestMatchRunsAllRounds(t *testing.T) {
	var bus event.Bus
	m := NewMatch(30, nil, &bus)

	e := kernel.New()
	if _, err := e.Spawn(m.Ping()); err != nil {
		t.Fatalf("Spawn ping: %v", err)
	}
	if _, err := e.Spawn(m.Pong()); err != nil {
		t.Fatalf("Spawn pong: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Tally() != 30 {
		t.Fatalf("Tally() = %d, want 30", m.Tally())
	}
	if m.Faults() != 0 {
		t.Fatalf("Faults() = %d, want 0", m.Faults())
	}
	if bus.Len() != 3 {
		t.Fatalf("posted %d events, want 3", bus.Len())
	}
}

func TestMatchResponderFirst(t *testing.T) {
	m := NewMatch(5, nil, nil)
	e := kernel.New(kernel.WithIdle(kernel.SpinIdle{}))
	if _, err := e.Spawn(m.Pong()); err != nil {
		t.Fatalf("Spawn pong: %v", err)
	}
	if _, err := e.Spawn(m.Ping()); err != nil {
		t.Fatalf("Spawn ping: %v", err)
	}
	for i := 0; i < 200 && !e.Done(); i++ {
		if _, err := e.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !e.Done() || m.Tally() != 5 || m.Faults() != 0 {
		t.Fatalf("done=%v tally=%d faults=%d", e.Done(), m.Tally(), m.Faults())
	}
}
