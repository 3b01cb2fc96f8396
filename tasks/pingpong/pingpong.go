// Package pingpong bounces a counter between two tasks over channels. The
// responder bumps a mutex-guarded tally and yields while holding the lock.
package pingpong

import (
	"fmt"

	"wakeos/kernel"
	"wakeos/tasks/event"
)

// Match is the state shared by the two players.
type Match struct {
	rounds int
	timer  *kernel.Timer
	bus    *event.Bus

	serve  kernel.Channel[int]
	reply  kernel.Channel[int]
	mu     kernel.Mutex
	tally  int
	faults int
}

func NewMatch(rounds int, timer *kernel.Timer, bus *event.Bus) *Match {
	return &Match{rounds: rounds, timer: timer, bus: bus}
}

// Tally returns the number of rounds the responder has scored.
func (m *Match) Tally() int { return m.tally }

// Faults returns the number of out-of-order replies the server saw.
func (m *Match) Faults() int { return m.faults }

// Ping returns the serving task.
func (m *Match) Ping() kernel.Task { return &pinger{m: m} }

// Pong returns the responding task.
func (m *Match) Pong() kernel.Task { return &ponger{m: m} }

type pinger struct {
	m       *Match
	round   int
	waiting bool
	locked  bool
}

func (p *pinger) Name() string { return "ping" }

func (p *pinger) Poll(cx *kernel.Context) kernel.Status {
	m := p.m
	for p.round < m.rounds {
		if !p.waiting {
			if !m.serve.PollSend(cx, p.round) {
				return kernel.Pending
			}
			p.waiting = true
		}
		if !p.locked {
			v, ok := m.reply.PollRecv(cx)
			if !ok {
				return kernel.Pending
			}
			if v != p.round+1 {
				m.faults++
				cx.Logger().Error("pingpong reply out of order", "got", v, "want", p.round+1)
			}
			p.locked = true
		}
		if !m.mu.PollLock(cx) {
			return kernel.Pending
		}
		if m.tally != p.round+1 {
			m.faults++
		}
		m.mu.Unlock()
		p.locked = false
		p.waiting = false
		p.round++
		if p.round%10 == 0 {
			event.Post(m.bus, event.Event{Kind: event.KindPingPong, Tick: m.now(), Count: uint32(p.round)})
		}
	}
	cx.Logger().Debug("pingpong done", "rounds", p.round, "faults", m.faults)
	return kernel.Complete
}

type pongState uint8

const (
	pongRecv pongState = iota
	pongLock
	pongHold
	pongSend
)

type ponger struct {
	m      *Match
	state  pongState
	ball   int
	served int
	yield  kernel.Yield
}

func (p *ponger) Name() string { return "pong" }

func (p *ponger) Poll(cx *kernel.Context) kernel.Status {
	m := p.m
	for {
		switch p.state {
		case pongRecv:
			if p.served == m.rounds {
				return kernel.Complete
			}
			v, ok := m.serve.PollRecv(cx)
			if !ok {
				return kernel.Pending
			}
			p.ball = v
			p.state = pongLock
		case pongLock:
			if !m.mu.PollLock(cx) {
				return kernel.Pending
			}
			m.tally++
			p.state = pongHold
		case pongHold:
			if _, ok := p.yield.Poll(cx); !ok {
				return kernel.Pending
			}
			m.mu.Unlock()
			p.state = pongSend
		case pongSend:
			if !m.reply.PollSend(cx, p.ball+1) {
				return kernel.Pending
			}
			p.served++
			p.state = pongRecv
		default:
			panic(fmt.Sprintf("pingpong: bad state %d", p.state))
		}
	}
}

func (m *Match) now() uint64 {
	if m.timer == nil {
		return 0
	}
	return m.timer.Now()
}
