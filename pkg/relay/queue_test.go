package relay

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stepnav/stepnav.go/pkg/proto"
)

func TestQueueOrder(t *testing.T) {
	q := NewQueue(5)
	cmds := []proto.Command{
		proto.Mac("AA:BB:CC:DD:EE:FF"),
		proto.NewStep(proto.Coordinates{Lat: 1, Long: 2}),
		proto.Ok,
	}
	for _, cmd := range cmds {
		require.True(t, q.TryPush(cmd))
	}
	require.Equal(t, len(cmds), q.Len())
	for _, want := range cmds {
		got, ok := q.TryPop()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	_, ok := q.TryPop()
	require.False(t, ok)
}

func TestQueueFullDropsWithoutCorruption(t *testing.T) {
	q := NewQueue(2)
	require.True(t, q.TryPush(proto.Ok))
	require.True(t, q.TryPush(proto.None))
	require.False(t, q.TryPush(proto.Mac("AA:BB:CC:DD:EE:FF")))
	require.Equal(t, 2, q.Len())

	got, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, proto.Ok, got)
	got, ok = q.TryPop()
	require.True(t, ok)
	require.Equal(t, proto.None, got)
}

func TestQueuePushFront(t *testing.T) {
	q := NewQueue(5)
	require.True(t, q.TryPush(proto.Ok))
	require.True(t, q.TryPush(proto.None))

	// Simulate a failed send: pop, then reinsert ahead of later commands.
	first, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, proto.Ok, first)
	require.True(t, q.TryPush(proto.Command{Op: proto.OpGetMac}))
	require.True(t, q.PushFront(first))

	want := []proto.Command{proto.Ok, proto.None, {Op: proto.OpGetMac}}
	for _, w := range want {
		got, ok := q.TryPop()
		require.True(t, ok)
		require.Equal(t, w, got)
	}
}

func TestQueuePushFrontFullFails(t *testing.T) {
	q := NewQueue(1)
	require.True(t, q.TryPush(proto.Ok))
	require.False(t, q.PushFront(proto.None))
}

func TestQueuePopWait(t *testing.T) {
	q := NewQueue(5)

	_, ok := q.PopWait(10 * time.Millisecond)
	require.False(t, ok)

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.TryPush(proto.Ok)
	}()
	cmd, ok := q.PopWait(time.Second)
	require.True(t, ok)
	require.Equal(t, proto.Ok, cmd)
}

func TestQueueConcurrentPushPop(t *testing.T) {
	q := NewQueue(DefaultCapacity)
	const total = 500

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			for !q.TryPush(proto.WirelessState(proto.LinkState(i % 4))) {
				time.Sleep(time.Millisecond)
			}
		}
	}()

	received := 0
	for received < total {
		if _, ok := q.PopWait(time.Second); ok {
			received++
		}
	}
	wg.Wait()
	require.Equal(t, 0, q.Len())
}
