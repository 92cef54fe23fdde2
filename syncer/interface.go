package syncer

import (
	"github.com/clustermesh/statesync/common/types"
)

//go:generate mockgen -typed -package=mocks -destination=./mocks/mocks.go -source=./interface.go

// Reporter produces versioned snapshots of a component's local state.
// Implementations own version assignment: each reported version must be
// greater than or equal to every previously reported one, and the payload
// must represent the state at that version. Snapshot runs inline on the
// engine loop and must not block.
type Reporter interface {
	// Snapshot returns the current snapshot when the component's own
	// version is strictly greater than since, or nil when there is
	// nothing new to report.
	Snapshot(since uint64) (*types.SyncMessage, error)
}

// Receiver applies a remote component's versioned snapshot to local state.
// Apply is invoked only for versions strictly newer than anything applied
// before for the same (node, component) pair; intermediate versions may be
// skipped. Apply runs inline on the engine loop and must not block.
type Receiver interface {
	Apply(*types.SyncMessage) error
}

// Connection is a live bidirectional peer stream managed by the transport.
type Connection interface {
	// Send enqueues msg for delivery to the peer. It must not block;
	// the transport may drop messages when the peer cannot keep up, the
	// periodic re-broadcast heals any loss.
	Send(msg *types.SyncMessage)
	// Close tears the stream down.
	Close() error
	// RemoteAddr describes the peer endpoint, for logging.
	RemoteAddr() string
}
