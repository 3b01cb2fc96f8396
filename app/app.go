// Package app wires the board's interrupt sources to the kernel and spawns
// the demo tasks named by the board profile.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"wakeos/hal"
	"wakeos/internal/config"
	"wakeos/internal/logging"
	"wakeos/kernel"
	"wakeos/tasks/button"
	"wakeos/tasks/clock"
	"wakeos/tasks/event"
	"wakeos/tasks/heartbeat"
	"wakeos/tasks/pingpong"
	"wakeos/tasks/status"
)

// System is one board's executor plus the state its tasks share with the
// interrupt handlers.
type System struct {
	h     hal.HAL
	board config.Board
	log   *slog.Logger
	exec  *kernel.Executor

	timer kernel.Timer
	edges kernel.Signal[button.Edge]
	bus   event.Bus

	Heartbeat *heartbeat.Task
	Button    *button.Task
	Clock     *clock.Task
	Match     *pingpong.Match
	Status    *status.Task
}

// New builds the system and installs its interrupt handlers. Nothing runs
// until Run.
func New(h hal.HAL, board config.Board, log *slog.Logger) (*System, error) {
	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	if log == nil {
		log = logging.Discard()
	}
	idle, ok := kernel.ParseIdle(board.Idle)
	if !ok {
		return nil, fmt.Errorf("board: idle strategy %q not available on this build", board.Idle)
	}

	s := &System{h: h, board: board, log: log}
	s.exec = kernel.New(
		kernel.WithIdle(idle),
		kernel.WithLogger(log.With("component", "executor")),
		kernel.WithStarvationLimit(board.StarvationLimit),
	)

	var bus *event.Bus
	if board.Enabled(config.TaskStatus) {
		bus = &s.bus
	}

	if board.Enabled(config.TaskButton) {
		s.Button = button.New(&s.edges, bus, uint32(board.Button.Presses))
		hnd, err := s.spawn(s.Button)
		if err != nil {
			return nil, err
		}
		tok, err := s.exec.Token(hnd)
		if err != nil {
			return nil, err
		}
		s.edges.Bind(tok)
	}
	if board.Enabled(config.TaskHeartbeat) {
		s.Heartbeat = heartbeat.New(h.LED(), &s.timer, board.Heartbeat.Pattern, board.Heartbeat.Beats, bus)
		if _, err := s.spawn(s.Heartbeat); err != nil {
			return nil, err
		}
	}
	if board.Enabled(config.TaskClock) {
		s.Clock = clock.New(h.RTC(), &s.timer, board.Clock.PeriodTicks, board.Clock.Samples, bus)
		if _, err := s.spawn(s.Clock); err != nil {
			return nil, err
		}
	}
	if board.Enabled(config.TaskPingPong) {
		s.Match = pingpong.NewMatch(board.PingPong.Rounds, &s.timer, bus)
		if _, err := s.spawn(s.Match.Ping()); err != nil {
			return nil, err
		}
		if _, err := s.spawn(s.Match.Pong()); err != nil {
			return nil, err
		}
	}
	if bus != nil {
		var fb hal.Framebuffer
		if d := h.Display(); d != nil {
			fb = d.Framebuffer()
		}
		if fb != nil {
			s.Status = status.New(fb, &s.timer, bus, s.exec.Stats, board.Display.RefreshTicks)
			if _, err := s.spawn(s.Status); err != nil {
				return nil, err
			}
		}
	}

	bootScreen(h, "starting")
	installPanicHandler(h, log)

	if t := h.Time(); t != nil {
		t.SetTickHandler(s.timer.Tick)
	}
	if b := h.Button(); b != nil && s.Button != nil {
		b.SetHandler(button.Handler(&s.edges, &s.timer))
	}

	log.Info("system ready", "tasks", s.exec.Len(), "tick_hz", board.TickHz, "idle", board.Idle)
	return s, nil
}

func (s *System) spawn(t kernel.Task) (kernel.Handle, error) {
	h, err := s.exec.Spawn(t)
	if err != nil {
		name := "task"
		if n, ok := t.(kernel.Namer); ok {
			name = n.Name()
		}
		return 0, fmt.Errorf("spawn %q: %w", name, err)
	}
	return h, nil
}

// Executor exposes the executor for inspection.
func (s *System) Executor() *kernel.Executor { return s.exec }

// Timer returns the tick timer driven by the tick interrupt.
func (s *System) Timer() *kernel.Timer { return &s.timer }

// Run drives the executor until every task completes, ctx is cancelled or a
// task faults.
func (s *System) Run(ctx context.Context) error {
	err := s.exec.Run(ctx)
	st := s.exec.Stats()
	attrs := []any{
		"cycles", st.Cycles,
		"polls", st.Polls,
		"idle_waits", st.IdleWaits,
		"completed", st.Completed,
		"starved", st.Starved,
	}
	var fault *kernel.FaultError
	switch {
	case err == nil:
		s.log.Info("all tasks complete", attrs...)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.log.Info("stopped", attrs...)
	case errors.As(err, &fault):
		s.log.Error("task fault", append(attrs, "handle", fault.Handle, "err", err)...)
	default:
		s.log.Error("executor stopped", append(attrs, "err", err)...)
	}
	return err
}
