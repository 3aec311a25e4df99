// Package client's metrics mirror session/metrics.go's promauto idiom.
package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CrcMismatchCount tracks messages rejected because their compile-time
	// CRC did not match the handshake's catalog entry.
	CrcMismatchCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vppclient_client_crc_mismatches_total",
		Help: "Message types rejected for CRC mismatch against the remote catalog.",
	})

	// RemoteFailureCount tracks replies whose retval was non-zero.
	RemoteFailureCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vppclient_client_remote_failures_total",
		Help: "Replies decoded with a non-zero retval.",
	})

	// CallLatencyHistogram tracks the latency of a full Call/CallStream
	// round trip, from send to final reply.
	CallLatencyHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vppclient_client_call_seconds",
		Help:    "Latency of a Call or CallStream round trip.",
		Buckets: prometheus.DefBuckets,
	})
)
