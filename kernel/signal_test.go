package kernel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignalZeroValueIsEmpty(t *testing.T) {
	var s Signal[int]
	_, ok := s.TryTake()
	require.False(t, ok)
	require.False(t, s.Pending())
}

func TestSignalLatestValueWins(t *testing.T) {
	var s Signal[int]
	s.Write(1)
	s.Write(2)
	s.Write(3)

	v, ok := s.TryTake()
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Equal(t, uint32(2), s.Overwrites())

	_, ok = s.TryTake()
	require.False(t, ok, "a value is taken at most once")
}

func TestSignalRotatesBuffers(t *testing.T) {
	var s Signal[int]
	for i := 0; i < 10; i++ {
		s.Write(i)
		v, ok := s.TryTake()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	require.Zero(t, s.Overwrites())
}

func TestSignalWriteWakesOwnerAfterStore(t *testing.T) {
	rs := NewReadySet(SpinIdle{})
	var s Signal[string]
	s.Bind(rs.Token(5))

	s.Write("edge")
	require.True(t, rs.Token(5).IsSet())
	require.True(t, s.Pending())

	v, ok := s.TryTake()
	require.True(t, ok)
	require.Equal(t, "edge", v)
}

func TestSignalPollTakeRegistersWaker(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))
	var s Signal[int]
	var got []int
	h, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		v, ok := s.PollTake(cx)
		if !ok {
			return Pending
		}
		got = append(got, v)
		if v == 2 {
			return Complete
		}
		return Pending
	}))
	require.NoError(t, err)

	_, err = e.Step()
	require.NoError(t, err)
	require.Zero(t, e.Ready(), "no value yet, task must be parked")

	s.Write(1)
	tok, err := e.Token(h)
	require.NoError(t, err)
	require.True(t, tok.IsSet())

	_, err = e.Step()
	require.NoError(t, err)
	s.Write(2)
	_, err = e.Step()
	require.NoError(t, err)

	require.Equal(t, []int{1, 2}, got)
	require.True(t, e.Done())
}

type pair struct{ a, b uint64 }

func TestSignalNeverTears(t *testing.T) {
	e := New(WithIdle(NewEventIdle()))
	var s Signal[pair]
	const last = 20000

	var seen uint64
	_, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		for {
			v, ok := s.PollTake(cx)
			if !ok {
				return Pending
			}
			if v.a != v.b {
				panic("torn read")
			}
			if v.a < seen {
				panic("value went backwards")
			}
			seen = v.a
			if v.a == last {
				return Complete
			}
		}
	}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(1); i <= last; i++ {
			s.Write(pair{i, i})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	wg.Wait()
	require.Equal(t, uint64(last), seen)
}
