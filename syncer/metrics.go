package syncer

import (
	"github.com/clustermesh/statesync/metrics"
)

const namespace = "syncer"

var (
	received = metrics.NewCounter(
		"received",
		namespace,
		"inbound sync messages by outcome",
		[]string{"outcome"},
	)
	receivedApplied      = received.WithLabelValues("applied")
	receivedStale        = received.WithLabelValues("stale")
	receivedUnregistered = received.WithLabelValues("unregistered")
	receivedApplyFailed  = received.WithLabelValues("apply_failed")

	sent = metrics.NewCounter(
		"sent",
		namespace,
		"outbound sync messages by kind",
		[]string{"kind"},
	)
	sentBroadcast = sent.WithLabelValues("broadcast")
	sentRelay     = sent.WithLabelValues("relay")

	snapshots = metrics.NewCounter(
		"snapshots",
		namespace,
		"reporter snapshot polls by outcome",
		[]string{"outcome"},
	)
	snapshotProduced = snapshots.WithLabelValues("produced")
	snapshotEmpty    = snapshots.WithLabelValues("empty")
	snapshotFailed   = snapshots.WithLabelValues("failed")

	peerGauge = metrics.NewGauge(
		"peers",
		namespace,
		"number of live peer connections",
		[]string{},
	).WithLabelValues()

	ledgerEntries = metrics.NewGauge(
		"ledger_entries",
		namespace,
		"number of tracked (node, component) pairs",
		[]string{},
	).WithLabelValues()
)
