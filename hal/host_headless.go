//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Runner is an application bound to a HAL.
type Runner interface {
	Run(ctx context.Context) error
}

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Board HostConfig

	// Ticks stops the run after this many tick interrupts. Zero runs until
	// the application returns or ctx is cancelled.
	Ticks uint64

	// Fast raises ticks back to back instead of at Board.TickHz.
	Fast bool
}

// RunHeadless runs the application without opening a window. The tick and
// button interrupt sources run on their own goroutine next to the
// application.
func RunHeadless(ctx context.Context, newApp func(HAL) (Runner, error), cfg HeadlessConfig) error {
	h := newHost(cfg.Board)
	app, err := newApp(h)
	if err != nil {
		return err
	}
	return runHeadless(ctx, h, app, cfg)
}

func runHeadless(ctx context.Context, h *hostHAL, app Runner, cfg HeadlessConfig) error {
	d := time.Second / time.Duration(h.t.TickHz())
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", h.t.TickHz())
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		defer stop()
		err := app.Run(runCtx)
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			// Stopped by the tick limit.
			return nil
		}
		return err
	})

	g.Go(func() error {
		var tick uint64
		var c <-chan time.Time
		if !cfg.Fast {
			t := time.NewTicker(d)
			defer t.Stop()
			c = t.C
		}
		for {
			if c != nil {
				select {
				case <-runCtx.Done():
					return nil
				case <-c:
				}
			} else {
				if runCtx.Err() != nil {
					return nil
				}
				runtime.Gosched()
			}
			h.tick()
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				stop()
				return nil
			}
		}
	})

	return g.Wait()
}
