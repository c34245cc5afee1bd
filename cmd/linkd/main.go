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

	mac := bridge.MAC()
	glog.Infof("link board %s up, mac %s", conf.Name, mac)

	link := board.NewLink(port, conf, mac)

	loop := fx.NewLoop()
	link.AddToLoop(loop)
	loop.AddRunnable(&gatt.Server{Adapter: link.Adapter, Addr: conf.Link.Listen})

	runner := fx.NewRunner().HandleSignals()
	runner.Go(loop)
	if err := runner.Wait(); err != nil {
		glog.Exitf("exit: %v", err)
	}
}
