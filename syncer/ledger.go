package syncer

import (
	"github.com/clustermesh/statesync/common/types"
)

type entryKey struct {
	node      types.NodeID
	component types.ComponentID
}

func keyOf(msg *types.SyncMessage) entryKey {
	return entryKey{node: msg.NodeID, component: msg.Component}
}

// Ledger tracks, per (node, component), the highest version merged so far
// and retains the accepted message, so current cluster state can be
// re-sent to peers that join or reconnect later. Entries are created
// lazily on the first message for a pair and never deleted; an absent
// entry counts as version 0. Merging is a last-writer-wins register keyed
// by version: commutative and idempotent under any delivery order or
// duplication.
type Ledger struct {
	entries map[entryKey]*types.SyncMessage
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[entryKey]*types.SyncMessage)}
}

// Merge records msg when it is strictly newer than the current entry for
// its (node, component) pair and reports whether it did. A false return
// means the message is stale or a duplicate, which is expected
// steady-state behavior under retransmission, not an error.
func (l *Ledger) Merge(msg *types.SyncMessage) bool {
	key := keyOf(msg)
	if cur, ok := l.entries[key]; ok && msg.Version <= cur.Version {
		return false
	}
	l.entries[key] = msg
	return true
}

// Version returns the highest merged version for a pair, 0 when absent.
func (l *Ledger) Version(node types.NodeID, component types.ComponentID) uint64 {
	if cur, ok := l.entries[entryKey{node: node, component: component}]; ok {
		return cur.Version
	}
	return 0
}

// Len returns the number of tracked (node, component) pairs.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Each calls fn for every retained message.
func (l *Ledger) Each(fn func(*types.SyncMessage)) {
	for _, msg := range l.entries {
		fn(msg)
	}
}
