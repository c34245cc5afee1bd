package bus

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned for transfers on a closed pipe.
var ErrClosed = errors.New("bus closed")

// pipePort is one end of an in-process bus, used in tests and single-host
// simulations where both boards run in the same process.
type pipePort struct {
	in   chan []byte
	out  chan []byte
	done chan struct{}
	once *sync.Once
}

// Pipe creates two connected in-process Ports. Each direction buffers up
// to depth frames; a write into a full direction waits for its timeout
// like a real bus transfer would.
func Pipe(depth int) (Port, Port) {
	if depth <= 0 {
		depth = 1
	}
	ab := make(chan []byte, depth)
	ba := make(chan []byte, depth)
	done := make(chan struct{})
	once := new(sync.Once)
	a := &pipePort{in: ba, out: ab, done: done, once: once}
	b := &pipePort{in: ab, out: ba, done: done, once: once}
	return a, b
}

// Read implements Port.
func (p *pipePort) Read(buf []byte, timeout time.Duration) (int, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case frame := <-p.in:
		return copy(buf, frame), nil
	case <-p.done:
		return 0, ErrClosed
	case <-timer.C:
		return 0, ErrTimeout
	}
}

// Write implements Port.
func (p *pipePort) Write(buf []byte, timeout time.Duration) error {
	frame := make([]byte, len(buf))
	copy(frame, buf)
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case p.out <- frame:
		return nil
	case <-p.done:
		return ErrClosed
	case <-timer.C:
		return ErrTimeout
	}
}

// Close implements Port. Closing either end closes both.
func (p *pipePort) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
