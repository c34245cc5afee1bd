package gatt

import (
	"sync"

	"github.com/golang/glog"

	"github.com/stepnav/stepnav.go/pkg/proto"
	"github.com/stepnav/stepnav.go/pkg/relay"
)

// Adapter is the wireless endpoint of the relay. Read events pop one
// command from the outbound queue and stream it in MTU-sized chunks;
// write events feed the inbound assembler and queue completed commands
// toward the bus. All work here runs in radio callback context, so it is
// bounded and never waits.
type Adapter struct {
	// MTU is the chunk size of the wireless transport. Zero means
	// proto.DefaultMTU.
	MTU int
	// Out holds commands surfaced to the remote client on read events.
	Out *relay.Queue
	// In receives commands written by the remote client.
	In *relay.Queue
	// OnState, when set, is invoked after every link state change. It
	// runs in callback context and must not block.
	OnState func(proto.LinkState)

	mu       sync.Mutex
	enabled  bool
	state    proto.LinkState
	splitter proto.Splitter
	asm      proto.Assembler
}

// NewAdapter creates an enabled Adapter over the given queues.
func NewAdapter(out, in *relay.Queue) *Adapter {
	return &Adapter{Out: out, In: in, enabled: true}
}

// Start enables the adapter, as commanded by the peer board.
func (a *Adapter) Start() {
	a.mu.Lock()
	a.enabled = true
	a.mu.Unlock()
	a.setState(proto.LinkAdvertising)
}

// Stop disables the adapter. Subsequent reads answer the neutral command
// and writes are dropped.
func (a *Adapter) Stop() {
	a.mu.Lock()
	a.enabled = false
	a.asm.Reset()
	a.mu.Unlock()
	a.setState(proto.LinkNone)
}

// Enabled reports whether the adapter is accepting traffic.
func (a *Adapter) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// State returns the current link state.
func (a *Adapter) State() proto.LinkState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// HandleEvent processes one characteristic event.
func (a *Adapter) HandleEvent(ev Event) error {
	switch ev := ev.(type) {
	case ReadEvent:
		return a.handleRead(ev)
	case WriteEvent:
		return a.handleWrite(ev)
	case ConnectEvent:
		a.setState(proto.LinkConnected)
	case DisconnectEvent:
		a.setState(proto.LinkDisconnected)
	}
	return nil
}

func (a *Adapter) handleRead(ev ReadEvent) error {
	a.mu.Lock()
	if !a.splitter.Pending() {
		cmd := proto.None
		if a.enabled {
			if next, ok := a.Out.TryPop(); ok {
				cmd = next
			}
		}
		a.splitter.MTU = a.MTU
		if err := a.splitter.Load(cmd.Encode()); err != nil {
			a.mu.Unlock()
			return err
		}
	}
	chunk := a.splitter.Next()
	a.mu.Unlock()
	return ev.Resp.Respond(chunk)
}

func (a *Adapter) handleWrite(ev WriteEvent) error {
	ack := proto.Ok
	a.mu.Lock()
	enabled := a.enabled
	var cmd proto.Command
	var done bool
	var err error
	if enabled {
		a.asm.MTU = a.MTU
		cmd, done, err = a.asm.Feed(ev.Value)
	}
	a.mu.Unlock()

	switch {
	case !enabled:
		ack = proto.None
	case err != nil:
		glog.Warningf("dropped wireless frame: %v", err)
		ack = proto.None
	case done:
		if !a.deliver(cmd) {
			ack = proto.None
		}
	}
	if !ev.NeedRsp || ev.Resp == nil {
		return nil
	}
	// The acknowledgement confirms framing, not end-to-end delivery.
	return ev.Resp.Respond(ack.Encode())
}

func (a *Adapter) deliver(cmd proto.Command) bool {
	// The state query never crosses the bus; the adapter owns the answer.
	if cmd.Op == proto.OpGetWirelessState {
		if !a.Out.TryPush(proto.WirelessState(a.State())) {
			glog.Warningf("outbound queue full, dropping state answer")
			return false
		}
		return true
	}
	if !a.In.TryPush(cmd) {
		glog.Warningf("inbound queue full, dropping %v", cmd)
		return false
	}
	glog.V(2).Infof("wireless received %v", cmd)
	return true
}

func (a *Adapter) setState(s proto.LinkState) {
	a.mu.Lock()
	changed := a.state != s
	a.state = s
	notify := a.OnState
	a.mu.Unlock()
	if changed && notify != nil {
		notify(s)
	}
}

// Lifecycle adapts bus-side wireless control commands onto the adapter.
// Its method set satisfies the bridge's Handler interface.
type Lifecycle struct {
	Adapter *Adapter
}

// HandleBusCommand starts/stops the adapter and answers state queries.
func (l *Lifecycle) HandleBusCommand(cmd proto.Command) (proto.Command, bool) {
	switch cmd.Op {
	case proto.OpStartWireless:
		l.Adapter.Start()
		return proto.None, true
	case proto.OpStopWireless:
		l.Adapter.Stop()
		return proto.None, true
	case proto.OpGetWirelessState:
		return proto.WirelessState(l.Adapter.State()), true
	}
	return proto.None, false
}
