// Package bridge drives the polled inter-board bus from the cooperative
// main loop: one bounded write attempt and one bounded read attempt per
// tick, with failed sends rescheduled ahead of later commands.
package bridge

import (
	"time"

	"github.com/golang/glog"

	"github.com/stepnav/stepnav.go/pkg/bus"
	"github.com/stepnav/stepnav.go/pkg/framework"
	"github.com/stepnav/stepnav.go/pkg/proto"
	"github.com/stepnav/stepnav.go/pkg/relay"
)

// Handler processes a command received over the bus. A handled command may
// be answered synchronously on the same transaction; an unhandled one is
// routed onward through the inbound queue.
type Handler interface {
	HandleBusCommand(cmd proto.Command) (reply proto.Command, handled bool)
}

// HandlerFunc is the func form of Handler.
type HandlerFunc func(proto.Command) (proto.Command, bool)

// HandleBusCommand implements Handler.
func (f HandlerFunc) HandleBusCommand(cmd proto.Command) (proto.Command, bool) {
	return f(cmd)
}

// HandlerChain tries handlers in order until one takes the command.
type HandlerChain []Handler

// HandleBusCommand implements Handler.
func (c HandlerChain) HandleBusCommand(cmd proto.Command) (proto.Command, bool) {
	for _, h := range c {
		if reply, handled := h.HandleBusCommand(cmd); handled {
			return reply, handled
		}
	}
	return proto.None, false
}

// Defaults, in the magnitude range the board firmware uses.
const (
	DefaultWriteTimeout = 200 * time.Millisecond
	DefaultReadTimeout  = 50 * time.Millisecond
	// DefaultRetryLimit caps consecutive resend attempts of one command so
	// a dead bus cannot head-of-line block the outbound queue forever.
	DefaultRetryLimit = 50
)

// Bridge relays commands between the relay queues and the bus. It runs as
// a loop Controller; each tick performs at most one send and one receive.
type Bridge struct {
	Port bus.Port
	// Out holds commands to be written to the peer board.
	Out *relay.Queue
	// In receives decoded commands not handled locally.
	In *relay.Queue
	// Local answers locally actionable commands (identity queries etc.).
	Local Handler

	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	RetryLimit   int

	retries int
	readBuf [bus.BufferSize]byte
}

// New creates a Bridge with default timeouts.
func New(port bus.Port, out, in *relay.Queue) *Bridge {
	return &Bridge{
		Port:         port,
		Out:          out,
		In:           in,
		WriteTimeout: DefaultWriteTimeout,
		ReadTimeout:  DefaultReadTimeout,
		RetryLimit:   DefaultRetryLimit,
	}
}

// Control implements framework.Controller.
func (b *Bridge) Control(framework.Tick) error {
	b.drainAndSend()
	b.receiveAndRoute()
	return nil
}

func (b *Bridge) drainAndSend() {
	cmd, ok := b.Out.TryPop()
	if !ok {
		return
	}
	if err := b.Port.Write(cmd.Encode(), b.WriteTimeout); err != nil {
		b.retries++
		if b.retries >= b.RetryLimit {
			glog.Errorf("bus write failed %d times, dropping %v: %v", b.retries, cmd, err)
			b.retries = 0
			return
		}
		if !b.Out.PushFront(cmd) {
			glog.Errorf("outbound queue full, dropping %v after failed write: %v", cmd, err)
			b.retries = 0
			return
		}
		glog.Warningf("bus write failed, retrying %v next tick: %v", cmd, err)
		return
	}
	b.retries = 0
	glog.V(2).Infof("bus sent %v", cmd)
}

func (b *Bridge) receiveAndRoute() {
	n, err := b.Port.Read(b.readBuf[:], b.ReadTimeout)
	if err != nil {
		// An empty poll is the expected common case.
		if !bus.IsTimeout(err) {
			glog.Errorf("bus read: %v", err)
		}
		return
	}
	cmd, _, err := proto.Decode(b.readBuf[:n])
	if err != nil {
		glog.Warningf("undecodable bus frame of %d bytes: %v", n, err)
		return
	}
	glog.V(2).Infof("bus received %v", cmd)
	if h := b.Local; h != nil {
		if reply, handled := h.HandleBusCommand(cmd); handled {
			if reply.Op == proto.OpNone {
				return
			}
			if err := b.Port.Write(reply.Encode(), b.WriteTimeout); err != nil {
				glog.Warningf("bus reply %v failed: %v", reply, err)
			}
			return
		}
	}
	if !b.In.TryPush(cmd) {
		glog.Warningf("inbound queue full, dropping %v", cmd)
	}
}
