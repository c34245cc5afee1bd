package framework

import (
	"context"
	"log"
	"time"

	"github.com/golang/glog"
)

// Loop is the cooperative main loop of a board. Every tick it runs each
// registered controller once, in registration order; controllers never
// block beyond their own transport timeouts, so a tick is bounded.
type Loop struct {
	Interval time.Duration

	controllers []Controller
	runners     []Runnable

	wakeUpCh chan struct{}
}

// DefaultInterval is the tick interval when none is configured.
const DefaultInterval = 50 * time.Millisecond

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// AddController registers controllers to the loop. Controllers that also
// implement Runnable are run in the background alongside the loop.
func (l *Loop) AddController(ctls ...Controller) *Loop {
	l.controllers = append(l.controllers, ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds background Runnables tied to the loop's lifetime.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// TriggerNext schedules an extra iteration immediately after the current
// one, without waiting for the next tick.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}

	runner := NewRunnerWith(ctx)
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.runIteration(ctx)
		case <-l.wakeUpCh:
			l.runIteration(ctx)
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.TODO()); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

func (l *Loop) runIteration(ctx context.Context) {
	t := &tick{ctx: ctx, time: time.Now()}
	for _, ctl := range l.controllers {
		if err := ctl.Control(t); err != nil {
			glog.Errorf("controller error: %v", err)
		}
	}
}

type tick struct {
	ctx  context.Context
	time time.Time
}

func (t *tick) Context() context.Context { return t.ctx }
func (t *tick) Time() time.Time          { return t.time }
