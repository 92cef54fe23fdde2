package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/clustermesh/statesync/common/types"
	"github.com/clustermesh/statesync/syncer/mocks"
)

const waitFor = 5 * time.Second

// fakeConn records everything the engine sends to it. RemoteAddr signals
// on a channel because the engine reads it exactly when a peer enters or
// leaves the live set, which lets tests order peer events against
// inbound messages.
type fakeConn struct {
	name    string
	msgs    chan *types.SyncMessage
	touched chan struct{}
}

func newFakeConn(name string) *fakeConn {
	return &fakeConn{
		name:    name,
		msgs:    make(chan *types.SyncMessage, 64),
		touched: make(chan struct{}, 16),
	}
}

func (f *fakeConn) Send(msg *types.SyncMessage) { f.msgs <- msg }
func (f *fakeConn) Close() error                { return nil }

func (f *fakeConn) RemoteAddr() string {
	select {
	case f.touched <- struct{}{}:
	default:
	}
	return f.name
}

func (f *fakeConn) next(t *testing.T) *types.SyncMessage {
	t.Helper()
	select {
	case msg := <-f.msgs:
		return msg
	case <-time.After(waitFor):
		t.Fatalf("no message from engine on %s", f.name)
		return nil
	}
}

func (f *fakeConn) expectSilence(t *testing.T) {
	t.Helper()
	select {
	case msg := <-f.msgs:
		t.Fatalf("unexpected message on %s: %+v", f.name, msg)
	case <-time.After(100 * time.Millisecond):
	}
}

// scriptReporter returns queued snapshots one per poll and records the
// since argument of every poll. Each poll signals polled, so tests can
// advance the fake clock tick by tick without coalescing.
type scriptReporter struct {
	mu     sync.Mutex
	sinces []uint64
	queue  []*types.SyncMessage
	polled chan struct{}
}

func newScriptReporter(queue ...*types.SyncMessage) *scriptReporter {
	return &scriptReporter{queue: queue, polled: make(chan struct{}, 64)}
}

func (r *scriptReporter) Snapshot(since uint64) (*types.SyncMessage, error) {
	r.mu.Lock()
	r.sinces = append(r.sinces, since)
	var msg *types.SyncMessage
	if len(r.queue) > 0 {
		msg = r.queue[0]
		r.queue = r.queue[1:]
	}
	r.mu.Unlock()
	r.polled <- struct{}{}
	return msg, nil
}

func (r *scriptReporter) polledSinces() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint64(nil), r.sinces...)
}

func startEngine(t *testing.T, nodeID types.NodeID, register func(s *Syncer)) (*Syncer, clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	s := New(nodeID, WithLogger(zaptest.NewLogger(t)), withClock(fc))
	register(s)
	s.Start(context.Background())
	t.Cleanup(s.Stop)
	// wait for the loop to own its ticker before any Advance
	fc.BlockUntil(1)
	return s, fc
}

func addPeer(t *testing.T, s *Syncer, conn *fakeConn) {
	t.Helper()
	s.AddConnection(conn)
	select {
	case <-conn.touched:
	case <-time.After(waitFor):
		t.Fatalf("peer %s was not registered", conn.name)
	}
}

func tick(t *testing.T, fc clockwork.FakeClock, r *scriptReporter, interval time.Duration) {
	t.Helper()
	fc.Advance(interval)
	select {
	case <-r.polled:
	case <-time.After(waitFor):
		t.Fatal("reporter was not polled")
	}
}

func TestBroadcastsNewSnapshotOnTick(t *testing.T) {
	nodeID := types.NodeID{1}
	v1 := msgV(nodeID, types.ResourceManager, 1, "v1")
	reporter := newScriptReporter(v1)
	s, fc := startEngine(t, nodeID, func(s *Syncer) {
		s.Register(types.ResourceManager, reporter, nil)
	})

	conn := newFakeConn("peer-a")
	addPeer(t, s, conn)

	tick(t, fc, reporter, DefaultConfig().SyncInterval)
	require.Equal(t, v1, conn.next(t))
	require.Equal(t, []uint64{0}, reporter.polledSinces())
}

func TestQuiescentComponentIsSilent(t *testing.T) {
	nodeID := types.NodeID{1}
	v1 := msgV(nodeID, types.ResourceManager, 1, "v1")
	reporter := newScriptReporter(v1) // nothing new after the first tick
	s, fc := startEngine(t, nodeID, func(s *Syncer) {
		s.Register(types.ResourceManager, reporter, nil)
	})

	conn := newFakeConn("peer-a")
	addPeer(t, s, conn)

	interval := DefaultConfig().SyncInterval
	tick(t, fc, reporter, interval)
	require.Equal(t, v1, conn.next(t))
	for i := 0; i < 3; i++ {
		tick(t, fc, reporter, interval)
	}
	conn.expectSilence(t)
}

func TestSnapshotSinceTracksReportedVersion(t *testing.T) {
	nodeID := types.NodeID{1}
	v2 := msgV(nodeID, types.ResourceManager, 2, "v2")
	v7 := msgV(nodeID, types.ResourceManager, 7, "v7")
	// versions may skip; since must follow what was actually reported
	reporter := newScriptReporter(v2, nil, v7)
	s, fc := startEngine(t, nodeID, func(s *Syncer) {
		s.Register(types.ResourceManager, reporter, nil)
	})

	conn := newFakeConn("peer-a")
	addPeer(t, s, conn)

	interval := DefaultConfig().SyncInterval
	tick(t, fc, reporter, interval)
	require.Equal(t, v2, conn.next(t))
	tick(t, fc, reporter, interval)
	tick(t, fc, reporter, interval)
	require.Equal(t, v7, conn.next(t))
	require.Equal(t, []uint64{0, 2, 2}, reporter.polledSinces())
}

func TestNonAdvancingSnapshotIsDropped(t *testing.T) {
	nodeID := types.NodeID{1}
	v3 := msgV(nodeID, types.ResourceManager, 3, "v3")
	regressed := msgV(nodeID, types.ResourceManager, 3, "again")
	reporter := newScriptReporter(v3, regressed)
	s, fc := startEngine(t, nodeID, func(s *Syncer) {
		s.Register(types.ResourceManager, reporter, nil)
	})

	conn := newFakeConn("peer-a")
	addPeer(t, s, conn)

	interval := DefaultConfig().SyncInterval
	tick(t, fc, reporter, interval)
	require.Equal(t, v3, conn.next(t))
	tick(t, fc, reporter, interval)
	conn.expectSilence(t)
	require.Equal(t, []uint64{0, 3}, reporter.polledSinces())
}

func TestLateJoinerReceivesKnownState(t *testing.T) {
	nodeID := types.NodeID{1}
	v4 := msgV(nodeID, types.ResourceManager, 4, "v4")
	reporter := newScriptReporter(v4)
	s, fc := startEngine(t, nodeID, func(s *Syncer) {
		s.Register(types.ResourceManager, reporter, nil)
	})

	first := newFakeConn("peer-a")
	addPeer(t, s, first)
	tick(t, fc, reporter, DefaultConfig().SyncInterval)
	require.Equal(t, v4, first.next(t))

	// disconnect and come back with a fresh stream: full state is
	// transferred again without waiting for a tick
	s.RemoveConnection(first)
	second := newFakeConn("peer-a-reconnected")
	addPeer(t, s, second)
	require.Equal(t, v4, second.next(t))
	first.expectSilence(t)
}

func TestReceiveAppliesAndRelays(t *testing.T) {
	ctrl := gomock.NewController(t)
	local := types.NodeID{1}
	remote := types.NodeID{2}

	receiver := mocks.NewMockReceiver(ctrl)
	applied := make(chan *types.SyncMessage, 8)
	receiver.EXPECT().Apply(gomock.Any()).DoAndReturn(func(msg *types.SyncMessage) error {
		applied <- msg
		return nil
	}).Times(1)

	s, _ := startEngine(t, local, func(s *Syncer) {
		s.Register(types.ResourceManager, nil, receiver)
	})
	src := newFakeConn("src")
	other := newFakeConn("other")
	addPeer(t, s, src)
	addPeer(t, s, other)

	msg := msgV(remote, types.ResourceManager, 3, "remote-v3")
	s.OnMessage(src, msg)

	select {
	case got := <-applied:
		require.Equal(t, msg, got)
	case <-time.After(waitFor):
		t.Fatal("snapshot was not applied")
	}
	require.Equal(t, msg, other.next(t))
	// never echoed back to its source
	src.expectSilence(t)
}

func TestReceiveIgnoresStaleAndDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	local := types.NodeID{1}
	remote := types.NodeID{2}

	receiver := mocks.NewMockReceiver(ctrl)
	applied := make(chan uint64, 8)
	receiver.EXPECT().Apply(gomock.Any()).DoAndReturn(func(msg *types.SyncMessage) error {
		applied <- msg.Version
		return nil
	}).AnyTimes()

	s, _ := startEngine(t, local, func(s *Syncer) {
		s.Register(types.ResourceManager, nil, receiver)
	})
	src := newFakeConn("src")
	addPeer(t, s, src)

	v5 := msgV(remote, types.ResourceManager, 5, "v5")
	s.OnMessage(src, v5)
	// duplicate delivery, then an out of order stale version
	s.OnMessage(src, v5)
	s.OnMessage(src, msgV(remote, types.ResourceManager, 3, "v3"))
	s.OnMessage(src, msgV(remote, types.ResourceManager, 6, "v6"))

	var got []uint64
	for len(got) < 2 {
		select {
		case v := <-applied:
			got = append(got, v)
		case <-time.After(waitFor):
			t.Fatalf("applied versions so far: %v", got)
		}
	}
	require.Equal(t, []uint64{5, 6}, got)
	select {
	case v := <-applied:
		t.Fatalf("unexpected apply of version %d", v)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestReceiveDropsUnregisteredComponent(t *testing.T) {
	ctrl := gomock.NewController(t)
	local := types.NodeID{1}
	remote := types.NodeID{2}

	receiver := mocks.NewMockReceiver(ctrl)
	applied := make(chan *types.SyncMessage, 8)
	receiver.EXPECT().Apply(gomock.Any()).DoAndReturn(func(msg *types.SyncMessage) error {
		applied <- msg
		return nil
	}).Times(1)

	s, _ := startEngine(t, local, func(s *Syncer) {
		s.Register(types.ResourceManager, nil, receiver)
	})
	src := newFakeConn("src")
	other := newFakeConn("other")
	addPeer(t, s, src)
	addPeer(t, s, other)

	s.OnMessage(src, msgV(remote, types.Scheduler, 9, "unknown"))
	known := msgV(remote, types.ResourceManager, 1, "known")
	s.OnMessage(src, known)

	// the registered snapshot passes through, the unknown one vanished
	require.Equal(t, known, <-applied)
	require.Equal(t, known, other.next(t))
	other.expectSilence(t)
}

func TestOwnEchoIsNotApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	local := types.NodeID{1}

	receiver := mocks.NewMockReceiver(ctrl)
	// no Apply expected at all for state this node originated

	s, _ := startEngine(t, local, func(s *Syncer) {
		s.Register(types.ResourceManager, nil, receiver)
	})
	src := newFakeConn("src")
	other := newFakeConn("other")
	addPeer(t, s, src)
	addPeer(t, s, other)

	echo := msgV(local, types.ResourceManager, 2, "own")
	s.OnMessage(src, echo)

	// relayed onward regardless, which proves the echo was processed
	require.Equal(t, echo, other.next(t))
}

func TestApplyFailureDoesNotStopRelay(t *testing.T) {
	ctrl := gomock.NewController(t)
	local := types.NodeID{1}
	remote := types.NodeID{2}

	receiver := mocks.NewMockReceiver(ctrl)
	receiver.EXPECT().Apply(gomock.Any()).Return(errors.New("decode failed")).Times(1)

	s, _ := startEngine(t, local, func(s *Syncer) {
		s.Register(types.ResourceManager, nil, receiver)
	})
	src := newFakeConn("src")
	other := newFakeConn("other")
	addPeer(t, s, src)
	addPeer(t, s, other)

	msg := msgV(remote, types.ResourceManager, 1, "bad")
	s.OnMessage(src, msg)
	require.Equal(t, msg, other.next(t))
}

func TestStopUnblocksProducers(t *testing.T) {
	local := types.NodeID{1}
	s, _ := startEngine(t, local, func(s *Syncer) {})
	s.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn := newFakeConn("late")
		s.AddConnection(conn)
		s.OnMessage(conn, msgV(types.NodeID{2}, types.ResourceManager, 1, "late"))
		s.RemoveConnection(conn)
	}()
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("producers blocked after engine stop")
	}
}
