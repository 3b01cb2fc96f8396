// Package stress hammers the wake path with randomized interrupt
// interleavings and reports whether any wake was lost.
package stress

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"wakeos/kernel"
)

// ErrMissedWake is returned when a consumer never observed its producer's
// final write.
var ErrMissedWake = errors.New("missed wakeup")

// Mode selects the interrupt-to-task primitive under test.
type Mode string

const (
	ModeSignal Mode = "signal"
	ModeToken  Mode = "token"
	ModeMixed  Mode = "mixed"
)

type Config struct {
	Seed      uint64
	Producers int
	Writes    int
	Mode      Mode
	Idle      string
	Timeout   time.Duration
}

func (c *Config) setDefaults() {
	if c.Producers <= 0 {
		c.Producers = 8
	}
	if c.Producers > kernel.MaxTasks {
		c.Producers = kernel.MaxTasks
	}
	if c.Writes <= 0 {
		c.Writes = 1000
	}
	if c.Mode == "" {
		c.Mode = ModeMixed
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// Report summarizes one run.
type Report struct {
	Config    Config
	Observed  uint64
	Collapsed uint64
	Stuck     int
	Stats     kernel.Stats
	Elapsed   time.Duration
}

type consumer interface {
	kernel.Task
	bind(tok kernel.WakeToken)
	produce(v uint64)
	observed() uint64
	collapsed() uint64
}

// Run spawns one consumer task per producer goroutine. Each producer writes
// 1..Writes with random pauses; each consumer completes once it has seen
// the final value.
func Run(ctx context.Context, cfg Config) (Report, error) {
	cfg.setDefaults()
	return run(ctx, cfg, func(i int) (consumer, error) {
		switch {
		case cfg.Mode == ModeSignal, cfg.Mode == ModeMixed && i%2 == 0:
			return &signalConsumer{last: uint64(cfg.Writes)}, nil
		case cfg.Mode == ModeToken, cfg.Mode == ModeMixed:
			return &tokenConsumer{last: uint64(cfg.Writes)}, nil
		default:
			return nil, fmt.Errorf("stress: unknown mode %q", cfg.Mode)
		}
	})
}

func run(ctx context.Context, cfg Config, newConsumer func(i int) (consumer, error)) (Report, error) {
	rep := Report{Config: cfg}

	idle, ok := kernel.ParseIdle(cfg.Idle)
	if !ok {
		return rep, fmt.Errorf("stress: unknown idle strategy %q", cfg.Idle)
	}
	e := kernel.New(kernel.WithIdle(idle))

	consumers := make([]consumer, cfg.Producers)
	handles := make([]kernel.Handle, cfg.Producers)
	for i := range consumers {
		c, err := newConsumer(i)
		if err != nil {
			return rep, err
		}
		h, err := e.Spawn(c)
		if err != nil {
			return rep, err
		}
		tok, err := e.Token(h)
		if err != nil {
			return rep, err
		}
		c.bind(tok)
		consumers[i] = c
		handles[i] = h
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	start := time.Now()
	g.Go(func() error { return e.Run(gctx) })
	for i, c := range consumers {
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)))
		g.Go(func() error {
			for v := uint64(1); v <= uint64(cfg.Writes); v++ {
				if gctx.Err() != nil {
					return nil
				}
				c.produce(v)
				switch rng.IntN(8) {
				case 0:
					runtime.Gosched()
				case 1:
					for spin := rng.IntN(64); spin > 0; spin-- {
					}
				}
			}
			return nil
		})
	}
	err := g.Wait()
	rep.Elapsed = time.Since(start)
	rep.Stats = e.Stats()
	for i, c := range consumers {
		rep.Observed += c.observed()
		rep.Collapsed += c.collapsed()
		if !e.Finished(handles[i]) {
			rep.Stuck++
		}
	}

	if rep.Stuck > 0 && ctx.Err() == nil {
		return rep, fmt.Errorf("%w: %d of %d consumers never saw their last write", ErrMissedWake, rep.Stuck, cfg.Producers)
	}
	return rep, err
}

// signalConsumer reads values through a Signal; values must never go
// backwards.
type signalConsumer struct {
	sig  kernel.Signal[uint64]
	last uint64
	seen uint64
	n    uint64
}

func (c *signalConsumer) bind(tok kernel.WakeToken) { c.sig.Bind(tok) }
func (c *signalConsumer) produce(v uint64)          { c.sig.Write(v) }
func (c *signalConsumer) observed() uint64          { return c.n }
func (c *signalConsumer) collapsed() uint64         { return uint64(c.sig.Overwrites()) }

func (c *signalConsumer) Poll(cx *kernel.Context) kernel.Status {
	for {
		v, ok := c.sig.PollTake(cx)
		if !ok {
			return kernel.Pending
		}
		if v <= c.seen {
			panic(fmt.Sprintf("stress: signal went from %d to %d", c.seen, v))
		}
		c.seen = v
		c.n++
		if v == c.last {
			return kernel.Complete
		}
	}
}

// tokenConsumer watches a counter that the producer bumps before setting
// the raw wake token.
type tokenConsumer struct {
	tok   kernel.WakeToken
	count atomic.Uint64
	last  uint64
	n     uint64
	sets  atomic.Uint64
}

func (c *tokenConsumer) bind(tok kernel.WakeToken) { c.tok = tok }

func (c *tokenConsumer) produce(v uint64) {
	c.count.Store(v)
	c.sets.Add(1)
	c.tok.Set()
}

func (c *tokenConsumer) observed() uint64 { return c.n }

func (c *tokenConsumer) collapsed() uint64 {
	if s := c.sets.Load(); s > c.n {
		return s - c.n
	}
	return 0
}

func (c *tokenConsumer) Poll(cx *kernel.Context) kernel.Status {
	_ = cx.Waker()
	c.n++
	if c.count.Load() == c.last {
		return kernel.Complete
	}
	return kernel.Pending
}
