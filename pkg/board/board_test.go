package board

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stepnav/stepnav.go/pkg/bus"
	"github.com/stepnav/stepnav.go/pkg/config"
	"github.com/stepnav/stepnav.go/pkg/gatt"
	"github.com/stepnav/stepnav.go/pkg/proto"
)

func testConf() *config.Board {
	conf := config.New()
	// Empty polls should not slow the test down.
	conf.Bus.ReadTimeoutMs = 1
	conf.Bus.WriteTimeoutMs = 50
	return conf
}

// tick runs one bus cycle on both boards, nav side first as the master.
func tick(t *testing.T, nb *Nav, link *Link, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		require.NoError(t, nb.Bridge.Control(nil))
		require.NoError(t, link.Bridge.Control(nil))
	}
}

// companionWrite streams cmd to the adapter in chunks and returns the
// framing acknowledgement.
func companionWrite(t *testing.T, a *gatt.Adapter, cmd proto.Command) proto.Command {
	t.Helper()
	splitter := proto.Splitter{MTU: proto.DefaultMTU}
	require.NoError(t, splitter.Load(cmd.Encode()))
	var raw []byte
	resp := gatt.ResponderFunc(func(b []byte) error {
		raw = b
		return nil
	})
	for splitter.Pending() {
		require.NoError(t, a.HandleEvent(gatt.WriteEvent{Value: splitter.Next(), NeedRsp: true, Resp: resp}))
	}
	ack, _, err := proto.Decode(raw)
	require.NoError(t, err)
	return ack
}

// companionRead polls the adapter until one full command is assembled.
func companionRead(t *testing.T, a *gatt.Adapter) proto.Command {
	t.Helper()
	asm := proto.Assembler{MTU: proto.DefaultMTU}
	var chunk []byte
	resp := gatt.ResponderFunc(func(b []byte) error {
		chunk = b
		return nil
	})
	for i := 0; i < 16; i++ {
		require.NoError(t, a.HandleEvent(gatt.ReadEvent{Resp: resp}))
		cmd, done, err := asm.Feed(chunk)
		require.NoError(t, err)
		if done {
			return cmd
		}
	}
	t.Fatal("no complete frame after 16 reads")
	return proto.Command{}
}

func TestBootstrapIdentityAndLinkState(t *testing.T) {
	conf := testConf()
	linkPort, navPort := bus.Pipe(conf.Link.QueueDepth)
	defer linkPort.Close()

	link := NewLink(linkPort, conf, "AA:BB:CC:DD:EE:FF")
	nb := NewNav(navPort, conf)

	var macs []string
	var states []proto.LinkState
	nb.Handler.OnMac = func(mac string) { macs = append(macs, mac) }
	nb.Handler.OnLinkState = func(s proto.LinkState) { states = append(states, s) }

	nb.Bootstrap()
	tick(t, nb, link, 6)

	require.Equal(t, []string{"AA:BB:CC:DD:EE:FF"}, macs)
	require.Contains(t, states, proto.LinkAdvertising)
	require.Equal(t, proto.LinkAdvertising, link.Adapter.State())
}

func TestStepsTravelFromCompanionToNav(t *testing.T) {
	conf := testConf()
	linkPort, navPort := bus.Pipe(conf.Link.QueueDepth)
	defer linkPort.Close()

	link := NewLink(linkPort, conf, "AA:BB:CC:DD:EE:FF")
	nb := NewNav(navPort, conf)

	step := proto.Coordinates{Lat: 52.3702, Long: 4.8952}
	require.Equal(t, proto.Ok, companionWrite(t, link.Adapter, proto.NewStep(step)))
	tick(t, nb, link, 2)
	require.Equal(t, 1, nb.Steps.Len())

	// The companion asks the step back; the nav board answers on the same
	// bus transaction and the reply surfaces on the next read.
	require.Equal(t, proto.Ok, companionWrite(t, link.Adapter, proto.Command{Op: proto.OpGetNextStep}))
	tick(t, nb, link, 2)

	reply := companionRead(t, link.Adapter)
	require.Equal(t, proto.NextStep(step), reply)
	require.Equal(t, 0, nb.Steps.Len())
}

func TestStateQueryAnsweredWithoutBusRoundTrip(t *testing.T) {
	conf := testConf()
	linkPort, navPort := bus.Pipe(conf.Link.QueueDepth)
	defer linkPort.Close()

	link := NewLink(linkPort, conf, "AA:BB:CC:DD:EE:FF")
	NewNav(navPort, conf)

	require.NoError(t, link.Adapter.HandleEvent(gatt.ConnectEvent{}))
	require.Equal(t, proto.Ok, companionWrite(t, link.Adapter, proto.Command{Op: proto.OpGetWirelessState}))
	require.Equal(t, proto.WirelessState(proto.LinkConnected), companionRead(t, link.Adapter))
}

func TestConnectionStateReachesNavBoard(t *testing.T) {
	conf := testConf()
	linkPort, navPort := bus.Pipe(conf.Link.QueueDepth)
	defer linkPort.Close()

	link := NewLink(linkPort, conf, "AA:BB:CC:DD:EE:FF")
	nb := NewNav(navPort, conf)

	var states []proto.LinkState
	nb.Handler.OnLinkState = func(s proto.LinkState) { states = append(states, s) }

	require.NoError(t, link.Adapter.HandleEvent(gatt.ConnectEvent{}))
	tick(t, nb, link, 2)
	require.NoError(t, link.Adapter.HandleEvent(gatt.DisconnectEvent{}))
	tick(t, nb, link, 2)

	require.Equal(t, []proto.LinkState{proto.LinkConnected, proto.LinkDisconnected}, states)
}
