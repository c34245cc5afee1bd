package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Controller is one unit of per-tick work on the cooperative main loop.
// Control must run to completion without yielding; any waiting inside is
// limited to bounded transport timeouts.
type Controller interface {
	Control(Tick) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(Tick) error

// Control implements Controller.
func (f ControlFunc) Control(t Tick) error {
	return f(t)
}

// Tick provides the context of the current loop iteration.
type Tick interface {
	// Context retrieves the context.Context of the running loop.
	Context() context.Context
	// Time is the instant this iteration started.
	Time() time.Time
}
