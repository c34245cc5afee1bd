// Package gatt implements the wireless side of the relay: the adapter
// translating characteristic events into commands and back. The radio
// stack itself is an external collaborator; it is modeled as a small
// closed set of events so the adapter runs the same against a real stack,
// a websocket link, or synthetic test events.
package gatt

// Responder delivers the synchronous response to a characteristic
// operation. Implementations must be non-blocking beyond the transport's
// own bounded send.
type Responder interface {
	Respond([]byte) error
}

// ResponderFunc is the func form of Responder.
type ResponderFunc func([]byte) error

// Respond implements Responder.
func (f ResponderFunc) Respond(b []byte) error {
	return f(b)
}

// Event is one characteristic event delivered by the radio stack.
type Event interface {
	isEvent()
}

// ReadEvent reports the remote peer requesting the characteristic value.
type ReadEvent struct {
	Resp Responder
}

// WriteEvent reports the remote peer writing one chunk to the
// characteristic. When NeedRsp is set the peer expects an acknowledgement
// on the same operation.
type WriteEvent struct {
	Value   []byte
	NeedRsp bool
	Resp    Responder
}

// ConnectEvent reports a remote peer connecting.
type ConnectEvent struct{}

// DisconnectEvent reports the remote peer going away.
type DisconnectEvent struct{}

func (ReadEvent) isEvent()       {}
func (WriteEvent) isEvent()      {}
func (ConnectEvent) isEvent()    {}
func (DisconnectEvent) isEvent() {}
