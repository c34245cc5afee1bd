package nav

import (
	"github.com/golang/glog"

	"github.com/stepnav/stepnav.go/pkg/proto"
)

// Handler applies commands arriving over the bus to the navigation state.
// Its method set satisfies the bridge's Handler interface; the navigation
// board handles everything locally, so nothing is ever relayed onward.
type Handler struct {
	Steps *StepStore
	// Ranker and Position feed closest-step announcements; either may be
	// nil when no GPS layer is attached.
	Ranker   Ranker
	Position func() (proto.Coordinates, bool)
	// Send enqueues a command toward the peer board. Announcements are
	// dropped when nil.
	Send func(proto.Command) bool
	// OnMac receives the peer board's identity (shown as a QR code by the
	// display layer).
	OnMac func(string)
	// OnLinkState mirrors the wireless link state for the UI.
	OnLinkState func(proto.LinkState)
}

// HandleBusCommand implements the bridge Handler contract.
func (h *Handler) HandleBusCommand(cmd proto.Command) (proto.Command, bool) {
	switch cmd.Op {
	case proto.OpNewStep:
		h.Steps.Add(cmd.Coords)
		glog.V(1).Infof("stored step %v, %d total", cmd.Coords, h.Steps.Len())
		h.announceClosest()
		return proto.None, true
	case proto.OpGetNextStep:
		if step, ok := h.Steps.Next(); ok {
			return proto.NextStep(step), true
		}
		return proto.None, true
	case proto.OpMac:
		if h.OnMac != nil {
			h.OnMac(cmd.Mac)
		}
		return proto.None, true
	case proto.OpWirelessState:
		if h.OnLinkState != nil {
			h.OnLinkState(cmd.State)
		}
		return proto.None, true
	case proto.OpOk, proto.OpNone:
		return proto.None, true
	}
	return proto.None, false
}

func (h *Handler) announceClosest() {
	if h.Ranker == nil || h.Position == nil || h.Send == nil {
		return
	}
	from, ok := h.Position()
	if !ok {
		return
	}
	closest, ok := h.Steps.Closest(h.Ranker, from)
	if !ok {
		return
	}
	if !h.Send(proto.ClosestStep(closest)) {
		glog.Warningf("closest-step announcement dropped")
	}
}
