// Package resource implements the resource-manager sync component: each
// node reports its own capacity and usage, and maintains a view of every
// other node's last known state.
package resource

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/clustermesh/statesync/codec"
	"github.com/clustermesh/statesync/common/types"
)

//go:generate scalegen -types State

// State is the snapshot payload broadcast for this component. CPU is in
// millicores, memory in bytes.
type State struct {
	TotalCPU    uint64
	UsedCPU     uint64
	TotalMemory uint64
	UsedMemory  uint64
}

// Tracker owns the local node's resource state. Mutations can come from
// any goroutine; every mutation advances the version, so the next engine
// tick picks the change up. An unchanged tracker produces no snapshots
// and therefore no traffic.
type Tracker struct {
	nodeID types.NodeID

	mu      sync.Mutex
	version uint64
	state   State
}

func NewTracker(nodeID types.NodeID, total State) *Tracker {
	return &Tracker{
		nodeID:  nodeID,
		version: 1,
		state:   total,
	}
}

// SetUsage records current local usage and bumps the version.
func (t *Tracker) SetUsage(usedCPU, usedMemory uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.UsedCPU = usedCPU
	t.state.UsedMemory = usedMemory
	t.version++
}

// Snapshot implements syncer.Reporter.
func (t *Tracker) Snapshot(since uint64) (*types.SyncMessage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.version <= since {
		return nil, nil
	}
	payload, err := codec.Encode(&t.state)
	if err != nil {
		return nil, fmt.Errorf("encode resource state: %w", err)
	}
	return &types.SyncMessage{
		Type:      types.Broadcast,
		Component: types.ResourceManager,
		NodeID:    t.nodeID,
		Version:   t.version,
		Payload:   payload,
	}, nil
}

// NodeState is the last applied snapshot of one remote node.
type NodeState struct {
	State   State
	Version uint64
}

// View consumes remote resource snapshots and keeps the latest state per
// node. Undecodable payloads are rejected without touching stored state.
type View struct {
	logger *zap.Logger

	mu    sync.RWMutex
	nodes map[types.NodeID]NodeState
}

func NewView(logger *zap.Logger) *View {
	return &View{
		logger: logger,
		nodes:  make(map[types.NodeID]NodeState),
	}
}

// Apply implements syncer.Receiver.
func (v *View) Apply(msg *types.SyncMessage) error {
	var st State
	if err := codec.Decode(msg.Payload, &st); err != nil {
		return fmt.Errorf("decode resource state: %w", err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if cur, ok := v.nodes[msg.NodeID]; ok && msg.Version <= cur.Version {
		return nil
	}
	v.nodes[msg.NodeID] = NodeState{State: st, Version: msg.Version}
	v.logger.Debug("remote resource state updated",
		zap.Stringer("node_id", msg.NodeID),
		zap.Uint64("version", msg.Version),
		zap.Uint64("used_cpu", st.UsedCPU),
		zap.Uint64("used_memory", st.UsedMemory),
	)
	return nil
}

// Node returns the last known state of one node.
func (v *View) Node(id types.NodeID) (NodeState, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	ns, ok := v.nodes[id]
	return ns, ok
}

// Len returns the number of remote nodes seen so far.
func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.nodes)
}
