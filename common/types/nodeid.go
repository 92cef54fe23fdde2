package types

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NodeIDSize in bytes.
const NodeIDSize = 16

// NodeID identifies a cluster node. It is generated once at process start
// and stays fixed for the process lifetime. All snapshot traffic is keyed
// by the identity of the node that produced the snapshot, never by the
// identity of whichever peer relayed it.
type NodeID [NodeIDSize]byte

// EmptyNodeID is a canonical empty NodeID.
var EmptyNodeID NodeID

// RandomNodeID generates a fresh random identity.
func RandomNodeID() (NodeID, error) {
	var id NodeID
	if _, err := rand.Read(id[:]); err != nil {
		return EmptyNodeID, fmt.Errorf("generate node id: %w", err)
	}
	return id, nil
}

// BytesToNodeID is a helper to copy a buffer into a NodeID.
func BytesToNodeID(buf []byte) (id NodeID) {
	copy(id[:], buf)
	return id
}

// Bytes returns the byte representation of the identity.
func (id NodeID) Bytes() []byte {
	return id[:]
}

// String implements the Stringer interface.
func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// ShortString returns a prefix of the hex ID, for logging purposes.
func (id NodeID) ShortString() string {
	s := id.String()
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *NodeID) UnmarshalText(buf []byte) error {
	b, err := hex.DecodeString(string(buf))
	if err != nil {
		return fmt.Errorf("decode node id: %w", err)
	}
	if len(b) != NodeIDSize {
		return fmt.Errorf("decode node id: expected %d bytes, got %d", NodeIDSize, len(b))
	}
	copy(id[:], b)
	return nil
}
