package proto

import (
	"encoding/json"
	"fmt"
)

// Opcode identifies a command variant on the wire. Values are shared with
// the firmware on the other board: append, never renumber.
type Opcode byte

// Opcode table.
const (
	OpNone Opcode = iota
	OpNewStep
	OpNextStep
	OpGetNextStep
	OpOk
	OpGetMac
	OpMac
	OpStartWireless
	OpStopWireless
	OpWirelessState
	OpGetWirelessState
	OpClosestStep
)

var opcodeNames = map[Opcode]string{
	OpNone:             "None",
	OpNewStep:          "NewStep",
	OpNextStep:         "NextStep",
	OpGetNextStep:      "GetNextStep",
	OpOk:               "Ok",
	OpGetMac:           "GetMac",
	OpMac:              "Mac",
	OpStartWireless:    "StartWireless",
	OpStopWireless:     "StopWireless",
	OpWirelessState:    "WirelessState",
	OpGetWirelessState: "GetWirelessState",
	OpClosestStep:      "ClosestStep",
}

// String implements fmt.Stringer.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", byte(o))
}

// LinkState is the wireless link state mirrored between the boards.
type LinkState byte

// Link states.
const (
	LinkNone LinkState = iota
	LinkAdvertising
	LinkConnected
	LinkDisconnected
)

var linkStateNames = map[LinkState]string{
	LinkNone:         "None",
	LinkAdvertising:  "Advertising",
	LinkConnected:    "Connected",
	LinkDisconnected: "Disconnected",
}

// String implements fmt.Stringer.
func (s LinkState) String() string {
	if name, ok := linkStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("LinkState(%d)", byte(s))
}

// Coordinates is a pair of degrees carried by the step commands.
// Whether a pair is meaningful is the payload's concern, not the wire's.
type Coordinates struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Command is one protocol command. Op selects the variant; the other
// fields carry the variant's payload and are zero otherwise, so commands
// compare with ==.
type Command struct {
	Op     Opcode
	Coords Coordinates // NewStep, NextStep, ClosestStep
	Mac    string      // Mac
	State  LinkState   // WirelessState
}

// None is the neutral command, used wherever a frame must be produced but
// nothing is pending.
var None = Command{Op: OpNone}

// Ok is the generic success acknowledgement.
var Ok = Command{Op: OpOk}

// NewStep builds a NewStep command.
func NewStep(c Coordinates) Command { return Command{Op: OpNewStep, Coords: c} }

// NextStep builds a NextStep command.
func NextStep(c Coordinates) Command { return Command{Op: OpNextStep, Coords: c} }

// ClosestStep builds a ClosestStep command.
func ClosestStep(c Coordinates) Command { return Command{Op: OpClosestStep, Coords: c} }

// Mac builds a Mac command.
func Mac(mac string) Command { return Command{Op: OpMac, Mac: mac} }

// WirelessState builds a WirelessState command.
func WirelessState(s LinkState) Command { return Command{Op: OpWirelessState, State: s} }

// String implements fmt.Stringer.
func (c Command) String() string {
	switch c.Op {
	case OpNewStep, OpNextStep, OpClosestStep:
		return fmt.Sprintf("%v(%g,%g)", c.Op, c.Coords.Lat, c.Coords.Long)
	case OpMac:
		return fmt.Sprintf("%v(%s)", c.Op, c.Mac)
	case OpWirelessState:
		return fmt.Sprintf("%v(%d)", c.Op, byte(c.State))
	}
	return c.Op.String()
}

// MaxPayload is the largest payload length a frame can declare.
const MaxPayload = 255

// HeaderLen is the size of the opcode+length frame header.
const HeaderLen = 2

func (c Command) payload() []byte {
	switch c.Op {
	case OpNewStep, OpNextStep, OpClosestStep:
		data, err := json.Marshal(c.Coords)
		if err != nil {
			return nil
		}
		return data
	case OpMac:
		return []byte(c.Mac)
	case OpWirelessState:
		return []byte{byte(c.State)}
	}
	return nil
}

// Encode serializes the command into a wire frame. Payloads beyond
// MaxPayload are truncated; the variants in actual use stay far below it.
func (c Command) Encode() []byte {
	p := c.payload()
	if len(p) > MaxPayload {
		p = p[:MaxPayload]
	}
	frame := make([]byte, len(p)+HeaderLen)
	frame[0], frame[1] = byte(c.Op), byte(len(p))
	copy(frame[HeaderLen:], p)
	return frame
}

// Decode parses one frame from buf. The declared payload length is
// returned even on failure so callers can tell "more bytes needed"
// (ErrIncomplete) from "malformed" (ErrInvalidFrame).
func Decode(buf []byte) (Command, int, error) {
	if len(buf) < HeaderLen {
		return Command{}, 0, ErrInvalidFrame
	}
	op := Opcode(buf[0])
	length := int(buf[1])
	switch op {
	case OpNone, OpGetNextStep, OpOk, OpGetMac, OpStartWireless,
		OpStopWireless, OpGetWirelessState:
		// Payload-less commands decode regardless of the declared length,
		// so probing a partial frame is safe.
		return Command{Op: op}, length, nil
	case OpMac, OpWirelessState, OpNewStep, OpNextStep, OpClosestStep:
		if length+HeaderLen > len(buf) {
			return Command{}, length, ErrIncomplete
		}
		cmd, err := decodePayload(op, buf[HeaderLen:HeaderLen+length])
		return cmd, length, err
	}
	// Unknown opcodes are ignorable, not fatal.
	return Command{Op: OpNone}, length, nil
}

func decodePayload(op Opcode, data []byte) (Command, error) {
	switch op {
	case OpWirelessState:
		if len(data) != 1 {
			return Command{}, ErrInvalidFrame
		}
		return Command{Op: op, State: LinkState(data[0])}, nil
	case OpMac:
		if len(data) <= 2 {
			return Command{}, ErrInvalidFrame
		}
		return Command{Op: op, Mac: string(data)}, nil
	default:
		if len(data) <= 2 {
			return Command{}, ErrInvalidFrame
		}
		var coords Coordinates
		if err := json.Unmarshal(data, &coords); err != nil {
			return Command{}, ErrInvalidFrame
		}
		return Command{Op: op, Coords: coords}, nil
	}
}
