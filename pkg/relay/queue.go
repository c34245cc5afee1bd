// Package relay provides the bounded queues that hand commands across
// execution contexts. Producers (transport callbacks) must never block, so
// every push is a try-push; the consuming loop may wait, but only with a
// bound.
package relay

import (
	"sync"
	"time"

	"github.com/stepnav/stepnav.go/pkg/proto"
)

// DefaultCapacity bounds a queue when no capacity is given.
const DefaultCapacity = 20

// Queue is a fixed-capacity FIFO of commands shared between one producer
// context and one consumer context. Items keep their push order; the only
// exception is PushFront, used to reschedule a failed send ahead of later
// commands.
type Queue struct {
	mu       sync.Mutex
	items    []proto.Command
	capacity int
	wake     chan struct{}
}

// NewQueue creates a queue holding at most capacity commands. Non-positive
// capacities fall back to DefaultCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		items:    make([]proto.Command, 0, capacity),
		capacity: capacity,
		wake:     make(chan struct{}, 1),
	}
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// TryPush appends cmd. It returns false without blocking when the queue is
// full; the caller decides whether that is worth a diagnostic.
func (q *Queue) TryPush(cmd proto.Command) bool {
	q.mu.Lock()
	if len(q.items) >= q.capacity {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, cmd)
	q.mu.Unlock()
	q.notify()
	return true
}

// PushFront reinserts cmd at the consuming end so it is popped next. It is
// meant for retrying a command that was just popped and failed to send, so
// under the usual pop-then-reinsert pattern there is always room; a full
// queue still fails rather than evict.
func (q *Queue) PushFront(cmd proto.Command) bool {
	q.mu.Lock()
	if len(q.items) >= q.capacity {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, proto.Command{})
	copy(q.items[1:], q.items)
	q.items[0] = cmd
	q.mu.Unlock()
	q.notify()
	return true
}

// TryPop removes and returns the oldest command without blocking.
func (q *Queue) TryPop() (proto.Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return proto.Command{}, false
	}
	cmd := q.items[0]
	copy(q.items, q.items[1:])
	q.items = q.items[:len(q.items)-1]
	return cmd, true
}

// PopWait removes the oldest command, waiting up to timeout for one to be
// pushed. Only the cooperative main loop should use this form.
func (q *Queue) PopWait(timeout time.Duration) (proto.Command, bool) {
	if cmd, ok := q.TryPop(); ok {
		return cmd, true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-q.wake:
			if cmd, ok := q.TryPop(); ok {
				return cmd, true
			}
		case <-timer.C:
			return q.TryPop()
		}
	}
}

func (q *Queue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
