package button

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"wakeos/kernel"
	"wakeos/tasks/event"
)

func TestButtonCountsPresses(t *testing.T) {
	var sig kernel.Signal[Edge]
	var tm kernel.Timer
	var bus event.Bus
	isr := Handler(&sig, &tm)

	task := New(&sig, &bus, 2)
	e := kernel.New(kernel.WithIdle(kernel.SpinIdle{}))
	if _, err := e.Spawn(task); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if _, err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	tm.Tick(5)
	isr(true)
	if _, err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	isr(false)
	if _, err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if task.Presses() != 1 {
		t.Fatalf("Presses() = %d, want 1", task.Presses())
	}

	ev, ok := bus.TryRecv()
	if !ok || ev.Kind != event.KindButton || ev.Tick != 5 || ev.Count != 1 {
		t.Fatalf("event = %+v, %v; want button press at tick 5", ev, ok)
	}

	isr(true)
	if _, err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !e.Done() {
		t.Fatal("task should complete after the press limit")
	}
}

func TestButtonInterruptGoroutine(t *testing.T) {
	prev := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(prev)

	var sig kernel.Signal[Edge]
	var tm kernel.Timer
	isr := Handler(&sig, &tm)

	const presses = 200
	task := New(&sig, nil, 0)
	e := kernel.New(kernel.WithIdle(kernel.NewEventIdle()))
	h, err := e.Spawn(task)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	tok, err := e.Token(h)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	sig.Bind(tok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < presses; i++ {
			isr(true)
			isr(false)
			runtime.Gosched()
		}
		// A final press that can no longer be overwritten.
		isr(true)
	}()
	wg.Wait()

	deadline := time.Now().Add(5 * time.Second)
	for {
		time.Sleep(time.Millisecond)
		if !sig.Pending() || time.Now().After(deadline) {
			break
		}
	}
	cancel()
	<-done

	if sig.Pending() {
		t.Fatal("final edge was never consumed")
	}
	got := task.Presses() + task.Missed()
	if task.Presses() == 0 || got > 2*presses+1 {
		t.Fatalf("presses %d missed %d", task.Presses(), task.Missed())
	}
}
