// Package config loads board configuration from YAML. Every field has a
// working default so a board runs with an empty file.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stepnav/stepnav.go/pkg/bridge"
	"github.com/stepnav/stepnav.go/pkg/proto"
	"github.com/stepnav/stepnav.go/pkg/relay"
)

// Board is the root configuration of one board daemon.
type Board struct {
	Name string `yaml:"name"`
	Bus  Bus    `yaml:"bus"`
	Link Link   `yaml:"link"`
}

// Bus configures the inter-board transport.
type Bus struct {
	// Device is the serial device bridging the board bus
	// (e.g. /dev/ttyUSB0). Empty selects the in-process pipe, which only
	// the simulator can use.
	Device         string `yaml:"device"`
	Baud           int    `yaml:"baud"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	RetryLimit     int    `yaml:"retry_limit"`
}

// Link configures the wireless characteristic endpoint.
type Link struct {
	Listen     string `yaml:"listen"`
	MTU        int    `yaml:"mtu"`
	QueueDepth int    `yaml:"queue_depth"`
}

// Default values.
const (
	DefaultBaud   = 115200
	DefaultListen = ":8332"
)

// ReadTimeout returns the per-poll bus read timeout.
func (b Bus) ReadTimeout() time.Duration {
	if b.ReadTimeoutMs > 0 {
		return time.Duration(b.ReadTimeoutMs) * time.Millisecond
	}
	return bridge.DefaultReadTimeout
}

// WriteTimeout returns the per-transfer bus write timeout.
func (b Bus) WriteTimeout() time.Duration {
	if b.WriteTimeoutMs > 0 {
		return time.Duration(b.WriteTimeoutMs) * time.Millisecond
	}
	return bridge.DefaultWriteTimeout
}

// New returns a Board with defaults applied.
func New() *Board {
	return &Board{
		Bus: Bus{
			Baud:       DefaultBaud,
			RetryLimit: bridge.DefaultRetryLimit,
		},
		Link: Link{
			Listen:     DefaultListen,
			MTU:        proto.DefaultMTU,
			QueueDepth: relay.DefaultCapacity,
		},
	}
}

// Load reads a Board from path, applying defaults for absent fields.
func Load(path string) (*Board, error) {
	conf := New()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, err
	}
	conf.applyDefaults()
	return conf, nil
}

func (c *Board) applyDefaults() {
	if c.Bus.Baud <= 0 {
		c.Bus.Baud = DefaultBaud
	}
	if c.Bus.RetryLimit <= 0 {
		c.Bus.RetryLimit = bridge.DefaultRetryLimit
	}
	if c.Link.Listen == "" {
		c.Link.Listen = DefaultListen
	}
	if c.Link.MTU <= 0 {
		c.Link.MTU = proto.DefaultMTU
	}
	if c.Link.QueueDepth <= 0 {
		c.Link.QueueDepth = relay.DefaultCapacity
	}
}
