package gatt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stepnav/stepnav.go/pkg/proto"
	"github.com/stepnav/stepnav.go/pkg/relay"
)

type recorder struct {
	responses [][]byte
}

func (r *recorder) Respond(b []byte) error {
	r.responses = append(r.responses, b)
	return nil
}

func (r *recorder) last(t *testing.T) []byte {
	t.Helper()
	require.NotEmpty(t, r.responses)
	return r.responses[len(r.responses)-1]
}

func (r *recorder) lastCommand(t *testing.T) proto.Command {
	t.Helper()
	cmd, _, err := proto.Decode(r.last(t))
	require.NoError(t, err)
	return cmd
}

func newTestAdapter() *Adapter {
	return NewAdapter(relay.NewQueue(5), relay.NewQueue(5))
}

func TestAdapterReadDefaultsToNone(t *testing.T) {
	a := newTestAdapter()
	rec := &recorder{}
	require.NoError(t, a.HandleEvent(ReadEvent{Resp: rec}))
	require.Equal(t, proto.None, rec.lastCommand(t))
}

func TestAdapterReadStreamsChunks(t *testing.T) {
	a := newTestAdapter()
	mac := proto.Mac(strings.Repeat("A:", 21) + "B") // 45-byte frame
	require.True(t, a.Out.TryPush(mac))
	require.True(t, a.Out.TryPush(proto.Ok))

	rec := &recorder{}
	var asm proto.Assembler
	var got proto.Command
	var done bool
	for reads := 0; !done; reads++ {
		require.Less(t, reads, 4)
		require.NoError(t, a.HandleEvent(ReadEvent{Resp: rec}))
		var err error
		got, done, err = asm.Feed(rec.last(t))
		require.NoError(t, err)
	}
	require.Equal(t, mac, got)
	require.Len(t, rec.responses, 3)

	// Only after the frame is drained does a read start the next command.
	require.NoError(t, a.HandleEvent(ReadEvent{Resp: rec}))
	require.Equal(t, proto.Ok, rec.lastCommand(t))
}

func TestAdapterWriteSingleChunk(t *testing.T) {
	a := newTestAdapter()
	rec := &recorder{}
	want := proto.NewStep(proto.Coordinates{Lat: -5.6, Long: 3.5})
	require.NoError(t, a.HandleEvent(WriteEvent{Value: want.Encode(), NeedRsp: true, Resp: rec}))
	require.Equal(t, proto.Ok, rec.lastCommand(t))

	got, ok := a.In.TryPop()
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestAdapterWriteChunkedFrame(t *testing.T) {
	a := newTestAdapter()
	rec := &recorder{}
	mac := proto.Mac(strings.Repeat("A:", 21) + "B")
	var splitter proto.Splitter
	require.NoError(t, splitter.Load(mac.Encode()))

	for splitter.Pending() {
		require.Equal(t, 0, a.In.Len())
		require.NoError(t, a.HandleEvent(WriteEvent{Value: splitter.Next(), NeedRsp: true, Resp: rec}))
		require.Equal(t, proto.Ok, rec.lastCommand(t))
	}
	got, ok := a.In.TryPop()
	require.True(t, ok)
	require.Equal(t, mac, got)
}

func TestAdapterWriteMalformedAcksNone(t *testing.T) {
	a := newTestAdapter()
	rec := &recorder{}
	require.NoError(t, a.HandleEvent(WriteEvent{Value: []byte{byte(proto.OpMac)}, NeedRsp: true, Resp: rec}))
	require.Equal(t, proto.None, rec.lastCommand(t))
	require.Equal(t, 0, a.In.Len())
}

func TestAdapterWriteQueueFullAcksNone(t *testing.T) {
	a := NewAdapter(relay.NewQueue(5), relay.NewQueue(1))
	require.True(t, a.In.TryPush(proto.Ok))
	rec := &recorder{}
	require.NoError(t, a.HandleEvent(WriteEvent{Value: proto.Command{Op: proto.OpGetNextStep}.Encode(), NeedRsp: true, Resp: rec}))
	require.Equal(t, proto.None, rec.lastCommand(t))
	require.Equal(t, 1, a.In.Len())
}

func TestAdapterWriteWithoutResponse(t *testing.T) {
	a := newTestAdapter()
	require.NoError(t, a.HandleEvent(WriteEvent{Value: proto.Ok.Encode()}))
	got, ok := a.In.TryPop()
	require.True(t, ok)
	require.Equal(t, proto.Ok, got)
}

func TestAdapterAnswersStateQueryLocally(t *testing.T) {
	a := newTestAdapter()
	require.NoError(t, a.HandleEvent(ConnectEvent{}))

	rec := &recorder{}
	require.NoError(t, a.HandleEvent(WriteEvent{Value: proto.Command{Op: proto.OpGetWirelessState}.Encode(), NeedRsp: true, Resp: rec}))
	require.Equal(t, proto.Ok, rec.lastCommand(t))
	require.Equal(t, 0, a.In.Len())

	require.NoError(t, a.HandleEvent(ReadEvent{Resp: rec}))
	require.Equal(t, proto.WirelessState(proto.LinkConnected), rec.lastCommand(t))
}

func TestAdapterStateNotifications(t *testing.T) {
	a := newTestAdapter()
	var states []proto.LinkState
	a.OnState = func(s proto.LinkState) { states = append(states, s) }

	require.NoError(t, a.HandleEvent(ConnectEvent{}))
	require.NoError(t, a.HandleEvent(ConnectEvent{})) // no repeat notify
	require.NoError(t, a.HandleEvent(DisconnectEvent{}))
	require.Equal(t, []proto.LinkState{proto.LinkConnected, proto.LinkDisconnected}, states)
	require.Equal(t, proto.LinkDisconnected, a.State())
}

func TestAdapterStopAndStart(t *testing.T) {
	a := newTestAdapter()
	require.True(t, a.Out.TryPush(proto.Mac("AA:BB:CC:DD:EE:FF")))

	a.Stop()
	require.False(t, a.Enabled())

	// A stopped adapter answers None and drops writes.
	rec := &recorder{}
	require.NoError(t, a.HandleEvent(ReadEvent{Resp: rec}))
	require.Equal(t, proto.None, rec.lastCommand(t))
	require.NoError(t, a.HandleEvent(WriteEvent{Value: proto.Ok.Encode(), NeedRsp: true, Resp: rec}))
	require.Equal(t, proto.None, rec.lastCommand(t))
	require.Equal(t, 0, a.In.Len())

	a.Start()
	require.Equal(t, proto.LinkAdvertising, a.State())
	require.NoError(t, a.HandleEvent(ReadEvent{Resp: rec}))
	require.Equal(t, proto.Mac("AA:BB:CC:DD:EE:FF"), rec.lastCommand(t))
}

func TestLifecycleHandler(t *testing.T) {
	a := newTestAdapter()
	lc := &Lifecycle{Adapter: a}

	reply, handled := lc.HandleBusCommand(proto.Command{Op: proto.OpStopWireless})
	require.True(t, handled)
	require.Equal(t, proto.None, reply)
	require.False(t, a.Enabled())

	reply, handled = lc.HandleBusCommand(proto.Command{Op: proto.OpStartWireless})
	require.True(t, handled)
	require.Equal(t, proto.None, reply)
	require.True(t, a.Enabled())

	reply, handled = lc.HandleBusCommand(proto.Command{Op: proto.OpGetWirelessState})
	require.True(t, handled)
	require.Equal(t, proto.WirelessState(proto.LinkAdvertising), reply)

	_, handled = lc.HandleBusCommand(proto.Ok)
	require.False(t, handled)
}
