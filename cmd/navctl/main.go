package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/stepnav/stepnav.go/pkg/gatt"
	"github.com/stepnav/stepnav.go/pkg/proto"
)

// navctl is the companion shell: it speaks the command protocol to a link
// board over the websocket characteristic endpoint.

type shell struct {
	Shell  *ishell.Shell
	Client *gatt.Client
}

const (
	shellKey           = "$shell"
	disconnectedPrompt = "[none] > "

	defaultURL = "ws://localhost:8332/"
)

var evalOnly bool

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

func shellFrom(c *ishell.Context) *shell {
	return c.Get(shellKey).(*shell)
}

// mustBeConnected wraps command funcs requiring a link connection.
func mustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if shellFrom(c).Client == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

func printCmd(c *ishell.Context, cmd proto.Command) {
	switch cmd.Op {
	case proto.OpNone:
		c.Println("(none)")
	case proto.OpOk:
		c.Println("OK")
	case proto.OpNewStep, proto.OpNextStep, proto.OpClosestStep:
		c.Printf("%v %v,%v\n", cmd.Op, cmd.Coords.Lat, cmd.Coords.Long)
	case proto.OpMac:
		c.Println(cmd.Mac)
	case proto.OpWirelessState:
		c.Println(cmd.State)
	default:
		c.Printf("%v\n", cmd.Op)
	}
}

// send writes cmd as chunks and prints the framing ack.
func send(c *ishell.Context, cmd proto.Command) bool {
	ack, err := shellFrom(c).Client.Send(cmd)
	if err != nil {
		c.Err(err)
		return false
	}
	if ack.Op != proto.OpOk {
		c.Err(fmt.Errorf("rejected: %v", ack.Op))
		return false
	}
	return true
}

// poll reads characteristic chunks until one full command arrives.
func poll(c *ishell.Context) {
	reply, err := shellFrom(c).Client.Poll()
	if err != nil {
		c.Err(err)
		return
	}
	printCmd(c, reply)
}

var commands = []*ishell.Cmd{
	{
		Name: "connect",
		Help: "connect [URL], default " + defaultURL,
		Func: func(c *ishell.Context) {
			s := shellFrom(c)
			url := defaultURL
			if len(c.Args) > 0 {
				url = c.Args[0]
			}
			client, err := gatt.Dial(url, "http://localhost/")
			if err != nil {
				c.Err(err)
				return
			}
			if s.Client != nil {
				s.Client.Close()
			}
			s.Client = client
			s.Shell.SetPrompt("[" + url + "] > ")
		},
	},
	{
		Name: "disconnect",
		Help: "disconnect from the link board",
		Func: mustBeConnected(func(c *ishell.Context) {
			s := shellFrom(c)
			s.Client.Close()
			s.Client = nil
			s.Shell.SetPrompt(disconnectedPrompt)
		}),
	},
	{
		Name: "newstep",
		Help: "newstep LAT LONG: push a route step",
		Func: mustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(fmt.Errorf("usage: newstep LAT LONG"))
				return
			}
			lat, err := strconv.ParseFloat(c.Args[0], 64)
			if err != nil {
				c.Err(err)
				return
			}
			long, err := strconv.ParseFloat(c.Args[1], 64)
			if err != nil {
				c.Err(err)
				return
			}
			if send(c, proto.NewStep(proto.Coordinates{Lat: lat, Long: long})) {
				c.Println("OK")
			}
		}),
	},
	{
		Name: "nextstep",
		Help: "request the next route step",
		Func: mustBeConnected(func(c *ishell.Context) {
			if send(c, proto.Command{Op: proto.OpGetNextStep}) {
				poll(c)
			}
		}),
	},
	{
		Name: "state",
		Help: "query the wireless link state",
		Func: mustBeConnected(func(c *ishell.Context) {
			if send(c, proto.Command{Op: proto.OpGetWirelessState}) {
				poll(c)
			}
		}),
	},
	{
		Name: "read",
		Help: "poll one pending command from the board",
		Func: mustBeConnected(poll),
	},
}

func main() {
	flag.Parse()

	s := &shell{Shell: ishell.New()}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(disconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}

	if evalOnly {
		if err := s.Shell.Process(flag.Args()...); err != nil {
			fmt.Println(err)
		}
	} else {
		s.Shell.Run()
	}
	if s.Client != nil {
		s.Client.Close()
	}
}
