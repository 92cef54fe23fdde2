// Package node assembles a statesync process: identity, sync engine,
// transport roles, demo components and telemetry.
package node

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clustermesh/statesync/common/types"
	"github.com/clustermesh/statesync/components/resource"
	"github.com/clustermesh/statesync/config"
	"github.com/clustermesh/statesync/metrics"
	"github.com/clustermesh/statesync/p2p"
	"github.com/clustermesh/statesync/syncer"
)

// Node is one statesync process.
type Node struct {
	logger   *zap.Logger
	cfg      config.Config
	nodeID   types.NodeID
	engine   *syncer.Syncer
	tracker  *resource.Tracker
	view     *resource.View
	listener *p2p.Listener
}

// New creates a node with a fresh random identity and registers its
// components. Registration happens here, before the engine starts;
// component sets are static for the process lifetime.
func New(cfg config.Config, logger *zap.Logger) (*Node, error) {
	nodeID, err := types.RandomNodeID()
	if err != nil {
		return nil, err
	}
	engine := syncer.New(nodeID,
		syncer.WithLogger(logger.Named("syncer")),
		syncer.WithConfig(cfg.Syncer),
	)
	tracker := resource.NewTracker(nodeID, resource.State{
		TotalCPU: uint64(runtime.NumCPU()) * 1000,
	})
	view := resource.NewView(logger.Named("resource"))
	engine.Register(types.ResourceManager, tracker, view)

	n := &Node{
		logger:  logger,
		cfg:     cfg,
		nodeID:  nodeID,
		engine:  engine,
		tracker: tracker,
		view:    view,
	}
	// bind the listening socket now so a bad address fails construction
	// and the effective address is known before Run
	if !p2p.RoleDisabled(cfg.P2P.Listen) {
		listener, err := p2p.NewListener(cfg.P2P.Listen, n.peerHandlers(), n.peerOpts()...)
		if err != nil {
			return nil, fmt.Errorf("start listener role: %w", err)
		}
		n.listener = listener
	}
	logger.Info("node initialized", zap.Stringer("node_id", nodeID))
	return n, nil
}

func (n *Node) peerHandlers() p2p.Handlers {
	return p2p.Handlers{
		Conn:    func(c *p2p.Conn) { n.engine.AddConnection(c) },
		Message: func(c *p2p.Conn, msg *types.SyncMessage) { n.engine.OnMessage(c, msg) },
		Closed:  func(c *p2p.Conn) { n.engine.RemoveConnection(c) },
	}
}

func (n *Node) peerOpts() []p2p.Opt {
	return []p2p.Opt{
		p2p.WithLogger(n.logger.Named("p2p")),
		p2p.WithSendQueueSize(n.cfg.P2P.SendQueueSize),
		p2p.WithRateLimit(n.cfg.P2P.RateLimit, n.cfg.P2P.RateInterval),
	}
}

// NodeID returns the process identity.
func (n *Node) NodeID() types.NodeID {
	return n.nodeID
}

// ListenAddress returns the bound listen address, or empty when the
// listener role is disabled.
func (n *Node) ListenAddress() string {
	if n.listener == nil {
		return ""
	}
	return n.listener.Address()
}

// Tracker returns the local resource tracker.
func (n *Node) Tracker() *resource.Tracker {
	return n.tracker
}

// View returns the cluster resource view.
func (n *Node) View() *resource.View {
	return n.view
}

// Run starts the engine and the configured transport roles and blocks
// until the context is canceled or a role fails.
func (n *Node) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	n.engine.Start(ctx)
	defer n.engine.Stop()

	if n.listener != nil {
		eg.Go(func() error { return n.listener.Run(ctx) })
	}
	if !p2p.RoleDisabled(n.cfg.P2P.Upstream) {
		dialer := p2p.NewDialer(n.peerHandlers(), n.peerOpts()...)
		eg.Go(func() error { return n.superviseUpstream(ctx, dialer) })
	}
	if n.cfg.CollectMetrics {
		srv := metrics.NewServer(n.cfg.MetricsPort, n.logger.Named("metrics"))
		eg.Go(func() error { return srv.Start(ctx) })
	}
	eg.Go(func() error {
		n.sampleUsage(ctx)
		return nil
	})
	return eg.Wait()
}

// superviseUpstream keeps one outbound stream alive. The transport does
// not reconnect on its own; that policy lives here. A reconnect before
// the next state change loses nothing since every tick re-broadcasts
// current state.
func (n *Node) superviseUpstream(ctx context.Context, dialer *p2p.Dialer) error {
	addr := n.cfg.P2P.Upstream
	for {
		conn, err := dialer.ConnectTo(ctx, addr)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			n.logger.Warn("upstream connect failed",
				zap.String("address", addr),
				zap.Error(err),
			)
		} else {
			select {
			case <-conn.Done():
				n.logger.Info("upstream stream terminated", zap.String("address", addr))
			case <-ctx.Done():
				conn.Close()
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(n.cfg.P2P.ReconnectInterval):
		}
	}
}

// sampleUsage periodically refreshes the local resource snapshot so the
// tracker has something fresh to report. Real deployments replace this
// with measurements from the workload itself.
func (n *Node) sampleUsage(ctx context.Context) {
	ticker := time.NewTicker(3 * n.cfg.Syncer.SyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			n.tracker.SetUsage(uint64(runtime.NumGoroutine()), ms.HeapAlloc)
			n.logger.Debug("cluster view",
				zap.Int("remote_nodes", n.view.Len()),
			)
		}
	}
}
