package gatt

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/stepnav/stepnav.go/pkg/framework"
	"github.com/stepnav/stepnav.go/pkg/proto"
)

// The websocket link carries characteristic operations for host-side
// deployments and simulation: each message is an opcode byte optionally
// followed by one chunk.
const (
	wsOpRead  byte = 0x01
	wsOpWrite byte = 0x02
)

// Server exposes an Adapter's characteristic over websocket.
type Server struct {
	Adapter *Adapter
	Addr    string
}

// Handler returns the websocket handler serving characteristic ops.
func (s *Server) Handler() http.Handler {
	return websocket.Handler(s.serve)
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler()}
	glog.Infof("wireless link listening on %s", s.Addr)
	return framework.RunWithContextCloser(ctx, srv, func() error {
		err := srv.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
}

func (s *Server) serve(ws *websocket.Conn) {
	s.Adapter.HandleEvent(ConnectEvent{})
	defer s.Adapter.HandleEvent(DisconnectEvent{})
	respond := ResponderFunc(func(b []byte) error {
		return websocket.Message.Send(ws, b)
	})
	for {
		var msg []byte
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			return
		}
		if len(msg) == 0 {
			continue
		}
		var err error
		switch msg[0] {
		case wsOpRead:
			err = s.Adapter.HandleEvent(ReadEvent{Resp: respond})
		case wsOpWrite:
			err = s.Adapter.HandleEvent(WriteEvent{Value: msg[1:], NeedRsp: true, Resp: respond})
		default:
			glog.Warningf("unknown link op %#x", msg[0])
		}
		if err != nil {
			glog.Warningf("link event failed: %v", err)
		}
	}
}

// Client is the companion side of the websocket link.
type Client struct {
	// MTU matches the chunk size of the real wireless transport.
	MTU int

	ws *websocket.Conn
}

// Dial connects to a link server.
func Dial(url, origin string) (*Client, error) {
	ws, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	return &Client{ws: ws}, nil
}

// Close closes the link.
func (c *Client) Close() error {
	return c.ws.Close()
}

func (c *Client) mtu() int {
	if c.MTU > 0 {
		return c.MTU
	}
	return proto.DefaultMTU
}

// ReadChunk performs one characteristic read.
func (c *Client) ReadChunk() ([]byte, error) {
	if err := websocket.Message.Send(c.ws, []byte{wsOpRead}); err != nil {
		return nil, err
	}
	var chunk []byte
	err := websocket.Message.Receive(c.ws, &chunk)
	return chunk, err
}

// WriteChunk performs one characteristic write and returns the ack frame.
func (c *Client) WriteChunk(chunk []byte) ([]byte, error) {
	if err := websocket.Message.Send(c.ws, append([]byte{wsOpWrite}, chunk...)); err != nil {
		return nil, err
	}
	var ack []byte
	err := websocket.Message.Receive(c.ws, &ack)
	return ack, err
}

// Send writes cmd in MTU-sized chunks and returns the final framing ack.
func (c *Client) Send(cmd proto.Command) (proto.Command, error) {
	splitter := proto.Splitter{MTU: c.mtu()}
	if err := splitter.Load(cmd.Encode()); err != nil {
		return proto.Command{}, err
	}
	var ack []byte
	for splitter.Pending() {
		var err error
		if ack, err = c.WriteChunk(splitter.Next()); err != nil {
			return proto.Command{}, err
		}
	}
	reply, _, err := proto.Decode(ack)
	return reply, err
}

// Poll reads until a full command is assembled. The read budget covers the
// largest possible frame, so a well-behaved peer always fits.
func (c *Client) Poll() (proto.Command, error) {
	asm := proto.Assembler{MTU: c.mtu()}
	maxReads := (proto.MaxPayload+proto.HeaderLen)/c.mtu() + 1
	for i := 0; i < maxReads; i++ {
		chunk, err := c.ReadChunk()
		if err != nil {
			return proto.Command{}, err
		}
		cmd, done, err := asm.Feed(chunk)
		if err != nil {
			return proto.Command{}, err
		}
		if done {
			return cmd, nil
		}
	}
	return proto.Command{}, fmt.Errorf("frame larger than %d reads", maxReads)
}
