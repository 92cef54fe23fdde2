// Package syncer implements the cluster state synchronization engine: a
// per-node orchestrator that periodically polls registered components for
// fresh snapshots, fans them out to every connected peer and merges
// inbound snapshots with last-writer-wins semantics keyed by version.
//
// The protocol is best effort and self healing: there are no acks and no
// retries. Lost messages are recovered because every tick reconciles each
// peer against the full set of latest known snapshots.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clustermesh/statesync/common/types"
)

// Config holds the engine parameters.
type Config struct {
	// SyncInterval is the cadence of the broadcast tick.
	SyncInterval time.Duration `mapstructure:"sync-interval"`

	// InboxSize bounds inbound messages queued for the engine loop.
	// Transport read pumps block when the inbox is full, applying
	// backpressure on the peer stream.
	InboxSize int `mapstructure:"inbox-size"`
}

func DefaultConfig() Config {
	return Config{
		SyncInterval: time.Second,
		InboxSize:    256,
	}
}

// Opt is a type to configure the engine.
type Opt func(*Syncer)

// WithLogger configures the logger used by the engine.
func WithLogger(logger *zap.Logger) Opt {
	return func(s *Syncer) {
		s.logger = logger
	}
}

// WithConfig overrides the default engine configuration.
func WithConfig(cfg Config) Opt {
	return func(s *Syncer) {
		s.cfg = cfg
	}
}

func withClock(clock clockwork.Clock) Opt {
	return func(s *Syncer) {
		s.clock = clock
	}
}

type connEvent struct {
	conn  Connection
	added bool
}

type inbound struct {
	src Connection
	msg *types.SyncMessage
}

// Syncer is the synchronization engine for one node. A single goroutine
// owns the registry, the ledger and all per-peer bookkeeping; the tick
// handler and all inbound message handling are serialized onto it, so no
// locks guard that state. Reporters and receivers execute inline on the
// same goroutine and must be fast.
type Syncer struct {
	logger *zap.Logger
	cfg    Config
	clock  clockwork.Clock
	nodeID types.NodeID

	registry     *Registry
	ledger       *Ledger
	lastReported map[types.ComponentID]uint64
	// per peer: highest version sent to or received from that peer, per
	// (node, component). Keeps reconciliation incremental and makes
	// relay flooding loop-free.
	peers map[Connection]map[entryKey]uint64

	inbox  chan inbound
	connCh chan connEvent
	// closed when the engine loop exits so producers never block on a
	// stopped engine
	done chan struct{}

	startOnce sync.Once
	eg        errgroup.Group
	cancel    context.CancelFunc
}

// New creates an engine for the node identified by nodeID.
func New(nodeID types.NodeID, opts ...Opt) *Syncer {
	s := &Syncer{
		logger:       zap.NewNop(),
		cfg:          DefaultConfig(),
		clock:        clockwork.NewRealClock(),
		nodeID:       nodeID,
		registry:     NewRegistry(),
		ledger:       NewLedger(),
		lastReported: make(map[types.ComponentID]uint64),
		peers:        make(map[Connection]map[entryKey]uint64),
		connCh:       make(chan connEvent, 16),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.inbox = make(chan inbound, s.cfg.InboxSize)
	return s
}

// NodeID returns the identity of the local node.
func (s *Syncer) NodeID() types.NodeID {
	return s.nodeID
}

// Register binds the reporter/receiver pair for a component. It must be
// called before Start. Binding the same component twice is a startup
// configuration error and panics.
func (s *Syncer) Register(component types.ComponentID, reporter Reporter, receiver Receiver) {
	if err := s.registry.Register(component, reporter, receiver); err != nil {
		s.logger.Panic("component registration failed",
			zap.Stringer("component", component),
			zap.Error(err),
		)
	}
	s.logger.Info("component registered",
		zap.Stringer("component", component),
		zap.Bool("reporter", reporter != nil),
		zap.Bool("receiver", receiver != nil),
	)
}

// Start launches the engine loop. Subsequent calls are no-ops.
func (s *Syncer) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		s.eg.Go(func() error {
			s.run(ctx)
			return nil
		})
	})
}

// Stop terminates the engine loop and waits for it to exit.
func (s *Syncer) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.eg.Wait()
}

// AddConnection registers a live peer stream with the engine. Accepted
// and dialed streams are treated identically. The peer receives all
// currently known state shortly after registration.
func (s *Syncer) AddConnection(conn Connection) {
	select {
	case s.connCh <- connEvent{conn: conn, added: true}:
	case <-s.done:
	}
}

// RemoveConnection drops a peer stream from the live set, typically after
// the transport observed a read or write failure.
func (s *Syncer) RemoveConnection(conn Connection) {
	select {
	case s.connCh <- connEvent{conn: conn, added: false}:
	case <-s.done:
	}
}

// OnMessage delivers an inbound message to the engine. It blocks while
// the engine inbox is full, applying backpressure on the peer stream.
func (s *Syncer) OnMessage(src Connection, msg *types.SyncMessage) {
	select {
	case s.inbox <- inbound{src: src, msg: msg}:
	case <-s.done:
	}
}

func (s *Syncer) run(ctx context.Context) {
	s.logger.Info("sync engine started",
		zap.Stringer("node_id", s.nodeID),
		zap.Duration("interval", s.cfg.SyncInterval),
	)
	defer close(s.done)
	ticker := s.clock.NewTicker(s.cfg.SyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync engine stopped")
			return
		case <-ticker.Chan():
			s.tick()
		case ev := <-s.connCh:
			if ev.added {
				s.addPeer(ev.conn)
			} else {
				s.removePeer(ev.conn)
			}
		case in := <-s.inbox:
			s.receive(in.src, in.msg)
		}
	}
}

// tick polls every registered reporter and reconciles all peers with the
// latest known state. Components that report nothing new generate zero
// traffic.
func (s *Syncer) tick() {
	for _, component := range s.registry.Components() {
		reporter, _, ok := s.registry.Lookup(component)
		if !ok || reporter == nil {
			continue
		}
		since := s.lastReported[component]
		msg, err := reporter.Snapshot(since)
		if err != nil {
			snapshotFailed.Inc()
			s.logger.Warn("reporter snapshot failed",
				zap.Stringer("component", component),
				zap.Error(err),
			)
			continue
		}
		if msg == nil {
			snapshotEmpty.Inc()
			continue
		}
		if msg.Version <= since {
			// reporter contract violation, drop to protect monotonicity
			s.logger.Warn("reporter returned non-advancing version",
				zap.Stringer("component", component),
				zap.Uint64("since", since),
				zap.Uint64("version", msg.Version),
			)
			continue
		}
		snapshotProduced.Inc()
		s.lastReported[component] = msg.Version
		// own snapshots enter the ledger like everyone else's so late
		// joining peers get them from the reconcile pass
		s.ledger.Merge(msg)
		s.logger.Debug("snapshot produced",
			zap.Stringer("component", component),
			zap.Uint64("version", msg.Version),
		)
	}
	ledgerEntries.Set(float64(s.ledger.Len()))
	for conn, seen := range s.peers {
		s.reconcile(conn, seen)
	}
}

// reconcile sends the peer every ledger entry it has not been observed to
// have, and records the sends. On a fresh connection this transfers the
// whole known cluster state; in steady state it degenerates to only the
// entries that changed since the last pass.
func (s *Syncer) reconcile(conn Connection, seen map[entryKey]uint64) {
	s.ledger.Each(func(msg *types.SyncMessage) {
		key := keyOf(msg)
		if msg.Version <= seen[key] {
			return
		}
		seen[key] = msg.Version
		conn.Send(msg)
		sentBroadcast.Inc()
	})
}

// receive merges one inbound message: stale or duplicate versions are
// silently discarded, newer ones are applied by the registered receiver
// and relayed to the remaining peers.
func (s *Syncer) receive(src Connection, msg *types.SyncMessage) {
	key := keyOf(msg)
	if seen, ok := s.peers[src]; ok && msg.Version > seen[key] {
		seen[key] = msg.Version
	}
	_, receiver, registered := s.registry.Lookup(msg.Component)
	if !registered {
		// components may differ across a rolling deployment; drop but
		// keep it observable
		receivedUnregistered.Inc()
		s.logger.Debug("message for unregistered component",
			zap.Stringer("component", msg.Component),
			zap.Stringer("origin", msg.NodeID),
		)
		return
	}
	if !s.ledger.Merge(msg) {
		receivedStale.Inc()
		return
	}
	if msg.NodeID != s.nodeID && receiver != nil {
		if err := receiver.Apply(msg); err != nil {
			receivedApplyFailed.Inc()
			s.logger.Warn("receiver failed to apply snapshot",
				zap.Stringer("component", msg.Component),
				zap.Stringer("origin", msg.NodeID),
				zap.Uint64("version", msg.Version),
				zap.Error(err),
			)
		} else {
			receivedApplied.Inc()
			s.logger.Debug("snapshot applied",
				zap.Stringer("component", msg.Component),
				zap.Stringer("origin", msg.NodeID),
				zap.Uint64("version", msg.Version),
			)
		}
	}
	// relay accepted messages so hierarchical topologies converge; the
	// per-peer version maps terminate the flood
	for conn, seen := range s.peers {
		if conn == src || msg.Version <= seen[key] {
			continue
		}
		seen[key] = msg.Version
		conn.Send(msg)
		sentRelay.Inc()
	}
}

func (s *Syncer) addPeer(conn Connection) {
	if _, ok := s.peers[conn]; ok {
		return
	}
	seen := make(map[entryKey]uint64)
	s.peers[conn] = seen
	peerGauge.Set(float64(len(s.peers)))
	s.logger.Info("peer connected", zap.String("remote", conn.RemoteAddr()))
	// bring the peer up to date without waiting for the next tick
	s.reconcile(conn, seen)
}

func (s *Syncer) removePeer(conn Connection) {
	if _, ok := s.peers[conn]; !ok {
		return
	}
	delete(s.peers, conn)
	peerGauge.Set(float64(len(s.peers)))
	s.logger.Info("peer disconnected", zap.String("remote", conn.RemoteAddr()))
}
