// Package bus abstracts the polled point-to-point transport between the
// two boards. The master initiates every transfer; the slave answers from
// its buffers. Every call carries its own timeout, and an expired read is
// the normal empty-poll outcome, not an error worth escalating.
package bus

import (
	"os"
	"time"
)

// BufferSize is the fixed transfer buffer size on both boards.
const BufferSize = 256

// Port is one endpoint of the bus.
type Port interface {
	// Read fills p with the next frame, waiting at most timeout. An
	// expired timeout returns an error satisfying IsTimeout.
	Read(p []byte, timeout time.Duration) (int, error)
	// Write sends p as one frame, waiting at most timeout for the peer
	// side to accept it.
	Write(p []byte, timeout time.Duration) error
	Close() error
}

type timeoutError struct{}

func (timeoutError) Error() string { return "bus timeout" }
func (timeoutError) Timeout() bool { return true }

// ErrTimeout is returned when a bus transfer did not complete in time.
var ErrTimeout error = timeoutError{}

// IsTimeout reports whether err is a transfer timeout.
func IsTimeout(err error) bool {
	return os.IsTimeout(err)
}
