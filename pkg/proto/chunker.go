package proto

// DefaultMTU is the wireless transport's single-operation byte limit.
const DefaultMTU = 20

// Splitter slices an encoded frame into transport-sized chunks, delivered
// in frame order. A new frame cannot be loaded until the previous one is
// fully drained. The zero value splits with DefaultMTU.
type Splitter struct {
	// MTU is the chunk size. Zero means DefaultMTU.
	MTU int

	frame []byte
	off   int
}

func (s *Splitter) mtu() int {
	if s.MTU > 0 {
		return s.MTU
	}
	return DefaultMTU
}

// Load stages a frame for chunked delivery. It fails with ErrBusy while
// chunks of the previous frame remain undelivered.
func (s *Splitter) Load(frame []byte) error {
	if s.Pending() {
		return ErrBusy
	}
	s.frame, s.off = frame, 0
	return nil
}

// Pending reports whether undelivered chunks remain.
func (s *Splitter) Pending() bool {
	return s.off < len(s.frame)
}

// Next returns the next chunk, or nil when the frame is drained.
func (s *Splitter) Next() []byte {
	if !s.Pending() {
		return nil
	}
	end := s.off + s.mtu()
	if end > len(s.frame) {
		end = len(s.frame)
	}
	chunk := s.frame[s.off:end]
	s.off = end
	return chunk
}

// Assembler reconstructs frames from chunks arriving over the MTU-limited
// transport. It is either idle or accumulating: a chunk whose declared
// payload exceeds the chunk itself starts accumulation; every full-MTU
// chunk extends it; the frame is decoded once the declared length is
// satisfied. A short chunk before that point violates the sequence and
// drops the partial frame. The zero value assembles with DefaultMTU.
type Assembler struct {
	// MTU is the expected size of every continuation chunk. Zero means
	// DefaultMTU.
	MTU int

	buf      []byte
	declared int
}

func (a *Assembler) mtu() int {
	if a.MTU > 0 {
		return a.MTU
	}
	return DefaultMTU
}

// Accumulating reports whether a partial frame is buffered.
func (a *Assembler) Accumulating() bool {
	return len(a.buf) > 0
}

// Reset discards any partial frame.
func (a *Assembler) Reset() {
	a.buf, a.declared = nil, 0
}

// Feed consumes one chunk. It returns (cmd, true, nil) when a full frame
// was decoded, (_, false, nil) when more chunks are needed, and an error
// when the chunk or the completed frame was malformed. After an error the
// assembler is idle again.
func (a *Assembler) Feed(chunk []byte) (Command, bool, error) {
	if !a.Accumulating() {
		cmd, declared, err := Decode(chunk)
		if err == ErrIncomplete {
			a.declared = declared
			a.buf = append(a.buf, chunk...)
			return Command{}, false, nil
		}
		if err != nil {
			return Command{}, false, err
		}
		return cmd, true, nil
	}

	a.buf = append(a.buf, chunk...)
	if len(a.buf) >= a.declared+HeaderLen {
		cmd, _, err := Decode(a.buf)
		a.Reset()
		if err != nil {
			return Command{}, false, err
		}
		return cmd, true, nil
	}
	if len(chunk) != a.mtu() {
		// A non-maximal chunk may only ever complete a frame.
		a.Reset()
		return Command{}, false, ErrChunkSequence
	}
	return Command{}, false, nil
}
