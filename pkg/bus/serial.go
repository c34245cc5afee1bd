package bus

import (
	"time"

	serial "go.bug.st/serial"
)

// serialPort adapts a serial device to Port, for host-side deployments
// where the board bus is bridged over a serial adapter.
type serialPort struct {
	port serial.Port
	mu   chan struct{} // serializes timeout changes around reads
}

// OpenSerial opens a serial device (e.g. /dev/ttyUSB0) as a bus Port.
func OpenSerial(device string, baud int) (Port, error) {
	p, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	mu := make(chan struct{}, 1)
	mu <- struct{}{}
	return &serialPort{port: p, mu: mu}, nil
}

// Read implements Port. A poll that sees no bytes before the timeout
// reports ErrTimeout.
func (s *serialPort) Read(p []byte, timeout time.Duration) (int, error) {
	<-s.mu
	defer func() { s.mu <- struct{}{} }()
	if err := s.port.SetReadTimeout(timeout); err != nil {
		return 0, err
	}
	n, err := s.port.Read(p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, ErrTimeout
	}
	return n, nil
}

// Write implements Port. Serial writes complete into the OS buffer; the
// timeout only bounds contention with a concurrent read setup.
func (s *serialPort) Write(p []byte, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.mu:
	case <-timer.C:
		return ErrTimeout
	}
	defer func() { s.mu <- struct{}{} }()
	_, err := s.port.Write(p)
	return err
}

// Close implements Port.
func (s *serialPort) Close() error {
	return s.port.Close()
}
