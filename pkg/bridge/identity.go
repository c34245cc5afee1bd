package bridge

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/denisbrodbeck/machineid"

	"github.com/stepnav/stepnav.go/pkg/proto"
)

// MAC derives the board's stable identity in MAC notation
// (AA:BB:CC:DD:EE:FF). On hosts without a radio MAC it hashes the machine
// id so the identity survives restarts.
func MAC() string {
	id, err := machineid.ID()
	if err != nil {
		panic(err)
	}
	sum := sha256.Sum256([]byte("stepnav:" + id))
	parts := make([]string, 6)
	for i, b := range sum[:6] {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

// Identity answers identity queries on the bus without relaying them.
type Identity struct {
	Mac string
}

// HandleBusCommand implements Handler.
func (h *Identity) HandleBusCommand(cmd proto.Command) (proto.Command, bool) {
	if cmd.Op == proto.OpGetMac {
		return proto.Mac(h.Mac), true
	}
	return proto.None, false
}
