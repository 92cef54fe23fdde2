package node

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clustermesh/statesync/common/types"
	"github.com/clustermesh/statesync/config"
)

func testConfig(listen, upstream string) config.Config {
	cfg := config.DefaultConfig()
	cfg.CollectMetrics = false
	cfg.Syncer.SyncInterval = 20 * time.Millisecond
	cfg.P2P.Listen = listen
	cfg.P2P.Upstream = upstream
	cfg.P2P.ReconnectInterval = 50 * time.Millisecond
	return cfg
}

type testNode struct {
	*Node
	stop func()
}

func launch(t *testing.T, name string, cfg config.Config) *testNode {
	t.Helper()
	n, err := New(cfg, zaptest.NewLogger(t).Named(name))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Error("node did not shut down")
			}
		})
	}
	t.Cleanup(stop)
	return &testNode{Node: n, stop: stop}
}

// sees reports whether n has applied any resource snapshot from each of
// the given nodes.
func sees(n *Node, others ...*testNode) bool {
	for _, other := range others {
		if _, ok := n.View().Node(other.NodeID()); !ok {
			return false
		}
	}
	return true
}

func TestStarTopologyConverges(t *testing.T) {
	leader := launch(t, "leader", testConfig("127.0.0.1:0", "."))
	addr := leader.ListenAddress()
	require.NotEmpty(t, addr)

	f1 := launch(t, "follower-1", testConfig(".", addr))
	f2 := launch(t, "follower-2", testConfig(".", addr))

	// every node learns about every other; the followers only ever talk
	// to the leader, so f1 and f2 see each other through it
	require.Eventually(t, func() bool {
		return sees(leader.Node, f1, f2) &&
			sees(f1.Node, leader, f2) &&
			sees(f2.Node, leader, f1)
	}, 10*time.Second, 20*time.Millisecond)

	totalCPU := uint64(runtime.NumCPU()) * 1000
	for _, pair := range []struct {
		viewer *testNode
		origin *testNode
	}{
		{f1, leader}, {f1, f2}, {f2, f1}, {leader, f1},
	} {
		ns, ok := pair.viewer.View().Node(pair.origin.NodeID())
		require.True(t, ok)
		require.Equal(t, totalCPU, ns.State.TotalCPU)
		require.GreaterOrEqual(t, ns.Version, uint64(1))
	}
}

func TestDistinctIdentities(t *testing.T) {
	leader := launch(t, "leader", testConfig("127.0.0.1:0", "."))
	follower := launch(t, "follower", testConfig(".", leader.ListenAddress()))

	require.NotEqual(t, types.NodeID{}, leader.NodeID())
	require.NotEqual(t, leader.NodeID(), follower.NodeID())
}

func TestFollowerResynchronizesAfterReconnect(t *testing.T) {
	first := launch(t, "leader-1", testConfig("127.0.0.1:0", "."))
	addr := first.ListenAddress()

	follower := launch(t, "follower", testConfig(".", addr))
	require.Eventually(t, func() bool {
		return sees(first.Node, follower) && sees(follower.Node, first)
	}, 10*time.Second, 20*time.Millisecond)

	// replace the upstream with a fresh process on the same address; the
	// follower redials on its own and re-broadcasts everything it knows
	first.stop()
	second := launch(t, "leader-2", testConfig(addr, "."))

	require.Eventually(t, func() bool {
		return sees(second.Node, follower) && sees(follower.Node, second)
	}, 10*time.Second, 20*time.Millisecond)
}
