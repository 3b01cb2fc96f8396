package stress

import (
	"context"
	"errors"
	"testing"
	"time"

	"wakeos/kernel"
)

func TestNoMissedWakeups(t *testing.T) {
	for _, mode := range []Mode{ModeSignal, ModeToken, ModeMixed} {
		for _, idle := range []string{"event", "gosched", "spin"} {
			t.Run(string(mode)+"/"+idle, func(t *testing.T) {
				rep, err := Run(context.Background(), Config{
					Seed:      42,
					Producers: 6,
					Writes:    500,
					Mode:      mode,
					Idle:      idle,
					Timeout:   20 * time.Second,
				})
				if err != nil {
					t.Fatalf("Run: %v (report %+v)", err, rep)
				}
				if rep.Stuck != 0 {
					t.Fatalf("Stuck = %d, want 0", rep.Stuck)
				}
				if rep.Stats.Completed != 6 {
					t.Fatalf("Completed = %d, want 6", rep.Stats.Completed)
				}
				if rep.Observed == 0 {
					t.Fatal("no values observed")
				}
			})
		}
	}
}

func TestRunClampsProducers(t *testing.T) {
	rep, err := Run(context.Background(), Config{Producers: 100, Writes: 10, Mode: ModeToken})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Config.Producers != 32 {
		t.Fatalf("Producers = %d, want 32", rep.Config.Producers)
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	if _, err := Run(context.Background(), Config{Mode: "smoke"}); err == nil {
		t.Fatal("Run accepted an unknown mode")
	}
	if _, err := Run(context.Background(), Config{Idle: "nap"}); err == nil {
		t.Fatal("Run accepted an unknown idle strategy")
	}
}

// deafConsumer drops its wake token, so it is never polled after its first
// Pending.
type deafConsumer struct{ tokenConsumer }

func (c *deafConsumer) bind(kernel.WakeToken) {}

func TestMissedWakeIsReported(t *testing.T) {
	cfg := Config{Producers: 2, Writes: 50, Idle: "event", Timeout: 200 * time.Millisecond}
	cfg.setDefaults()
	rep, err := run(context.Background(), cfg, func(i int) (consumer, error) {
		if i == 0 {
			return &deafConsumer{tokenConsumer{last: uint64(cfg.Writes) + 1}}, nil
		}
		return &tokenConsumer{last: uint64(cfg.Writes)}, nil
	})
	if !errors.Is(err, ErrMissedWake) {
		t.Fatalf("err = %v, want ErrMissedWake", err)
	}
	if rep.Stuck != 1 {
		t.Fatalf("Stuck = %d, want 1", rep.Stuck)
	}
}
