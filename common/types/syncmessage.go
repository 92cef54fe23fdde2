package types

// MessageType discriminates sync message variants. Only full-state
// broadcast exists today; the field reserves room for incremental or
// point-to-point variants.
type MessageType uint8

const (
	// Broadcast carries a full component snapshot for fan-out to all peers.
	Broadcast MessageType = iota
)

func (t MessageType) String() string {
	switch t {
	case Broadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// MaxPayloadSize caps the opaque snapshot payload on the wire.
const MaxPayloadSize = 1 << 20

//go:generate scalegen -types SyncMessage

// SyncMessage is the unit of propagation. Version is assigned by the
// producing component and strictly increases per (NodeID, Component);
// gaps are allowed when no change occurred between reports. Payload is
// meaningful only to the component's reporter/receiver pair.
type SyncMessage struct {
	Type      MessageType
	Component ComponentID
	NodeID    NodeID
	Version   uint64
	Payload   []byte `scale:"max=1048576"`
}
