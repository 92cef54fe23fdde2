// Package p2p maintains the bidirectional peer streams that carry sync
// messages between nodes. Streams are symmetric: an accepted connection
// and a dialed connection behave identically once established. Framing is
// a uvarint length prefix followed by the SCALE-encoded message.
//
// The package attempts no reconnection on its own; a dropped stream is
// reported to the consumer and forgotten. Because the engine re-broadcasts
// current state on every tick, reconnecting is enough to resynchronize.
package p2p

import (
	"time"

	"go.uber.org/zap"

	"github.com/clustermesh/statesync/common/types"
)

// Handlers connect the transport to its consumer, typically the sync
// engine. Any handler may be nil.
type Handlers struct {
	// Conn is invoked for every established stream, accepted or dialed.
	Conn func(*Conn)
	// Message is invoked for every decoded inbound message. It may block
	// to apply backpressure on the stream.
	Message func(*Conn, *types.SyncMessage)
	// Closed is invoked exactly once when a stream terminates.
	Closed func(*Conn)
}

type settings struct {
	logger       *zap.Logger
	queueSize    int
	rateLimit    int
	rateInterval time.Duration
}

func defaultSettings() settings {
	return settings{
		logger:       zap.NewNop(),
		queueSize:    512,
		rateLimit:    1000,
		rateInterval: time.Second,
	}
}

// Opt is a type to configure the transport.
type Opt func(*settings)

// WithLogger configures the transport logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithSendQueueSize bounds the per-connection outbound queue. Messages
// are dropped, not buffered indefinitely, when a peer cannot keep up.
func WithSendQueueSize(size int) Opt {
	return func(s *settings) {
		s.queueSize = size
	}
}

// WithRateLimit bounds inbound messages accepted per connection to n per
// interval.
func WithRateLimit(n int, interval time.Duration) Opt {
	return func(s *settings) {
		s.rateLimit = n
		s.rateInterval = interval
	}
}
