package kernel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWakeTokenSetIsIdempotent(t *testing.T) {
	rs := NewReadySet(SpinIdle{})
	tok := rs.Token(3)

	tok.Set()
	tok.Set()
	tok.Set()
	require.Equal(t, uint32(1<<3), rs.Snapshot())

	require.True(t, tok.TakeAndClear())
	require.False(t, tok.TakeAndClear(), "second take must observe a cleared bit")
	require.True(t, rs.Empty())
}

func TestZeroWakeTokenIsInert(t *testing.T) {
	var tok WakeToken
	tok.Set()
	require.False(t, tok.Valid())
	require.False(t, tok.IsSet())
	require.False(t, tok.TakeAndClear())
	_, ok := tok.Handle()
	require.False(t, ok)
}

func TestReadySetTokenOutOfRange(t *testing.T) {
	rs := NewReadySet(SpinIdle{})
	require.False(t, rs.Token(MaxTasks).Valid())

	var uninit ReadySet
	require.False(t, uninit.Token(0).Valid())
}

type countingIdle struct {
	mu       sync.Mutex
	notifies int
}

func (c *countingIdle) Notify() {
	c.mu.Lock()
	c.notifies++
	c.mu.Unlock()
}

func (c *countingIdle) Wait(func() bool) {}

func TestWakeTokenNotifiesOnEverySet(t *testing.T) {
	idle := &countingIdle{}
	rs := NewReadySet(idle)
	tok := rs.Token(0)

	tok.Set()
	tok.Set()
	require.Equal(t, 2, idle.notifies)
}

func TestConcurrentSetsAreAllObserved(t *testing.T) {
	rs := NewReadySet(NewEventIdle())

	var wg sync.WaitGroup
	for h := 0; h < MaxTasks; h++ {
		wg.Add(1)
		go func(h Handle) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				rs.Token(h).Set()
			}
		}(Handle(h))
	}
	wg.Wait()

	require.Equal(t, ^uint32(0), rs.Snapshot())
	for h := 0; h < MaxTasks; h++ {
		tok := rs.Token(Handle(h))
		got, ok := tok.Handle()
		require.True(t, ok)
		require.Equal(t, Handle(h), got)
		require.True(t, tok.TakeAndClear())
	}
	require.True(t, rs.Empty())
}
