package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/stepnav/stepnav.go/pkg/board"
	"github.com/stepnav/stepnav.go/pkg/bus"
	"github.com/stepnav/stepnav.go/pkg/config"
	fx "github.com/stepnav/stepnav.go/pkg/framework"
	"github.com/stepnav/stepnav.go/pkg/proto"
)

func main() {
	confFile := flag.String("config", "", "configuration file")
	flag.Parse()

	conf := config.New()
	if *confFile != "" {
		var err error
		if conf, err = config.Load(*confFile); err != nil {
			glog.Fatalf("load config: %v", err)
		}
	}
	if conf.Bus.Device == "" {
		glog.Fatal("bus.device is required")
	}

	port, err := bus.OpenSerial(conf.Bus.Device, conf.Bus.Baud)
	if err != nil {
		glog.Fatalf("open bus %s: %v", conf.Bus.Device, err)
	}
	defer port.Close()

	nb := board.NewNav(port, conf)
	nb.Handler.OnMac = func(mac string) {
		glog.Infof("peer identity %s", mac)
	}
	nb.Handler.OnLinkState = func(s proto.LinkState) {
		glog.Infof("wireless link %v", s)
	}
	nb.Bootstrap()

	loop := fx.NewLoop()
	nb.AddToLoop(loop)

	runner := fx.NewRunner().HandleSignals()
	runner.Go(loop)
	if err := runner.Wait(); err != nil {
		glog.Exitf("exit: %v", err)
	}
}
