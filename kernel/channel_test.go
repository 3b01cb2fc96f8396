package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelFIFO(t *testing.T) {
	var ch Channel[int]
	for i := 0; i < ChannelSlots; i++ {
		require.True(t, ch.TrySend(i))
	}
	require.False(t, ch.TrySend(99), "send to a full channel")
	require.Equal(t, ChannelSlots, ch.Len())

	for i := 0; i < ChannelSlots; i++ {
		v, ok := ch.TryRecv()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := ch.TryRecv()
	require.False(t, ok)
}

func TestChannelWrapsAround(t *testing.T) {
	var ch Channel[int]
	for i := 0; i < 1000; i++ {
		require.True(t, ch.TrySend(i))
		v, ok := ch.TryRecv()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestChannelProducerConsumer(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))
	var ch Channel[int]
	const total = 100

	next := 0
	_, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		for next < total {
			if !ch.PollSend(cx, next) {
				return Pending
			}
			next++
		}
		return Complete
	}))
	require.NoError(t, err)

	var got []int
	_, err = e.Spawn(TaskFunc(func(cx *Context) Status {
		for {
			v, ok := ch.PollRecv(cx)
			if !ok {
				return Pending
			}
			got = append(got, v)
			if v == total-1 {
				return Complete
			}
		}
	}))
	require.NoError(t, err)

	for i := 0; i < 1000 && !e.Done(); i++ {
		_, err := e.Step()
		require.NoError(t, err)
	}
	require.True(t, e.Done())
	require.Len(t, got, total)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestChannelReceiverParksUntilSend(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))
	var ch Channel[string]
	_, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		if _, ok := ch.PollRecv(cx); ok {
			return Complete
		}
		return Pending
	}))
	require.NoError(t, err)

	_, err = e.Step()
	require.NoError(t, err)
	require.Zero(t, e.Ready())

	require.True(t, ch.TrySend("x"))
	require.Equal(t, uint32(1), e.Ready())
	_, err = e.Step()
	require.NoError(t, err)
	require.True(t, e.Done())
}
