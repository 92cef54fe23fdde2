package p2p

import (
	"github.com/clustermesh/statesync/metrics"
)

const namespace = "p2p"

var (
	connsGauge = metrics.NewGauge(
		"connections",
		namespace,
		"number of live peer streams",
		[]string{},
	).WithLabelValues()

	sentMessages = metrics.NewCounter(
		"sent",
		namespace,
		"messages written to peer streams",
		[]string{},
	).WithLabelValues()

	sendDropped = metrics.NewCounter(
		"send_dropped",
		namespace,
		"messages dropped because a send queue was full",
		[]string{},
	).WithLabelValues()

	receivedFrames = metrics.NewCounter(
		"received",
		namespace,
		"inbound frames by outcome",
		[]string{"outcome"},
	)
	recvMessages  = receivedFrames.WithLabelValues("ok")
	recvMalformed = receivedFrames.WithLabelValues("malformed")
	recvOversized = receivedFrames.WithLabelValues("oversized")
)
