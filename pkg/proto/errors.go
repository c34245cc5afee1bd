package proto

import "errors"

var (
	// ErrInvalidFrame indicates a frame too short to carry a header, or a
	// fully available payload that does not parse for its opcode.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrIncomplete indicates the declared payload length exceeds the bytes
	// available. It is not a failure: the caller needs more chunks.
	ErrIncomplete = errors.New("incomplete frame")
	// ErrChunkSequence indicates a chunk arrived out of the expected size
	// pattern while a frame was being reassembled. The partial frame is
	// discarded.
	ErrChunkSequence = errors.New("unexpected chunk sequence")
	// ErrBusy indicates the splitter still holds undelivered chunks of a
	// previous frame.
	ErrBusy = errors.New("previous frame not drained")
)
