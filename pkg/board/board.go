// Package board assembles the two board roles from their parts: the link
// board (bus slave carrying the wireless adapter) and the nav board (bus
// master owning the route steps).
package board

import (
	"github.com/golang/glog"

	"github.com/stepnav/stepnav.go/pkg/bridge"
	"github.com/stepnav/stepnav.go/pkg/bus"
	"github.com/stepnav/stepnav.go/pkg/config"
	"github.com/stepnav/stepnav.go/pkg/framework"
	"github.com/stepnav/stepnav.go/pkg/gatt"
	"github.com/stepnav/stepnav.go/pkg/nav"
	"github.com/stepnav/stepnav.go/pkg/proto"
	"github.com/stepnav/stepnav.go/pkg/relay"
)

// Link is the wireless board: characteristic events on one side, the bus
// on the other, decoupled by the relay queues.
type Link struct {
	Adapter *gatt.Adapter
	Bridge  *bridge.Bridge
}

// NewLink wires a link board over port. mac is the identity announced on
// GetMac queries.
func NewLink(port bus.Port, conf *config.Board, mac string) *Link {
	toWireless := relay.NewQueue(conf.Link.QueueDepth)
	toBus := relay.NewQueue(conf.Link.QueueDepth)

	adapter := gatt.NewAdapter(toWireless, toBus)
	adapter.MTU = conf.Link.MTU
	adapter.OnState = func(s proto.LinkState) {
		if !toBus.TryPush(proto.WirelessState(s)) {
			glog.Warningf("state update %v dropped, queue full", s)
		}
	}

	br := bridge.New(port, toBus, toWireless)
	br.ReadTimeout = conf.Bus.ReadTimeout()
	br.WriteTimeout = conf.Bus.WriteTimeout()
	br.RetryLimit = conf.Bus.RetryLimit
	br.Local = bridge.HandlerChain{
		&bridge.Identity{Mac: mac},
		&gatt.Lifecycle{Adapter: adapter},
	}
	return &Link{Adapter: adapter, Bridge: br}
}

// AddToLoop registers the board's per-tick work.
func (l *Link) AddToLoop(loop *framework.Loop) {
	loop.AddController(l.Bridge)
}

// Nav is the navigation board: the bus master feeding the step store.
type Nav struct {
	Steps   *nav.StepStore
	Handler *nav.Handler
	Bridge  *bridge.Bridge

	out *relay.Queue
}

// NewNav wires a nav board over port.
func NewNav(port bus.Port, conf *config.Board) *Nav {
	out := relay.NewQueue(conf.Link.QueueDepth)
	in := relay.NewQueue(conf.Link.QueueDepth)

	steps := &nav.StepStore{}
	handler := &nav.Handler{
		Steps: steps,
		Send: func(cmd proto.Command) bool {
			return out.TryPush(cmd)
		},
	}

	br := bridge.New(port, out, in)
	br.ReadTimeout = conf.Bus.ReadTimeout()
	br.WriteTimeout = conf.Bus.WriteTimeout()
	br.RetryLimit = conf.Bus.RetryLimit
	br.Local = handler
	return &Nav{Steps: steps, Handler: handler, Bridge: br, out: out}
}

// AddToLoop registers the board's per-tick work.
func (n *Nav) AddToLoop(loop *framework.Loop) {
	loop.AddController(n.Bridge)
}

// Queue enqueues a command toward the link board.
func (n *Nav) Queue(cmd proto.Command) bool {
	if !n.out.TryPush(cmd) {
		glog.Warningf("outbound queue full, dropping %v", cmd)
		return false
	}
	return true
}

// Bootstrap queues the commands a nav board sends at power-on: learn the
// peer identity and bring the wireless link up.
func (n *Nav) Bootstrap() {
	n.Queue(proto.Command{Op: proto.OpGetMac})
	n.Queue(proto.Command{Op: proto.OpStartWireless})
}
