package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/stepnav/stepnav.go/pkg/board"
	"github.com/stepnav/stepnav.go/pkg/bridge"
	"github.com/stepnav/stepnav.go/pkg/bus"
	"github.com/stepnav/stepnav.go/pkg/config"
	fx "github.com/stepnav/stepnav.go/pkg/framework"
	"github.com/stepnav/stepnav.go/pkg/gatt"
	"github.com/stepnav/stepnav.go/pkg/proto"
)

// simboard runs both boards in one process over an in-memory bus, so the
// companion shell can be exercised without hardware:
//
//	simboard -listen :8332
//	navctl -e connect ws://localhost:8332/ newstep 52.37 4.89
func main() {
	listen := flag.String("listen", config.DefaultListen, "wireless link listen address")
	flag.Parse()

	conf := config.New()
	conf.Link.Listen = *listen

	linkPort, navPort := bus.Pipe(conf.Link.QueueDepth)

	link := board.NewLink(linkPort, conf, bridge.MAC())
	nb := board.NewNav(navPort, conf)
	nb.Handler.OnMac = func(mac string) {
		glog.Infof("nav board learned peer identity %s", mac)
	}
	nb.Handler.OnLinkState = func(s proto.LinkState) {
		glog.Infof("nav board sees wireless link %v", s)
	}
	nb.Bootstrap()

	loop := fx.NewLoop()
	link.AddToLoop(loop)
	nb.AddToLoop(loop)
	loop.AddRunnable(&gatt.Server{Adapter: link.Adapter, Addr: conf.Link.Listen})

	runner := fx.NewRunner().HandleSignals()
	runner.Go(loop)
	if err := runner.Wait(); err != nil {
		glog.Exitf("exit: %v", err)
	}
}
