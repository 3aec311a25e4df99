// Package session's metrics mirror metrics/metrics.go's promauto idiom:
// histograms for latency distributions, counters for event tallies.
package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReaderErrorCount tracks transport read errors the reader task
	// recovered from by backing off and retrying.
	ReaderErrorCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vppclient_session_reader_errors_total",
		Help: "Transport read errors observed by the session reader task.",
	})

	// SweepCount tracks how many times the reply cache sweep has run.
	SweepCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vppclient_session_sweeps_total",
		Help: "Number of reply-cache sweep passes run.",
	})

	// CacheSizeHistogram tracks the number of distinct context queues held
	// at each ingest.
	CacheSizeHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vppclient_session_cache_size",
		Help:    "Distinct context queues held in the reply cache at ingest time.",
		Buckets: prometheus.LinearBuckets(0, 8, 16),
	})

	// RecvTimeoutCount tracks calls that gave up waiting for a reply.
	RecvTimeoutCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vppclient_session_recv_timeouts_total",
		Help: "Recv/RecvSingle calls that returned ErrTimeout.",
	})

	// SendLatencyHistogram tracks how long Send took to hand payload bytes
	// to the transport.
	SendLatencyHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vppclient_session_send_seconds",
		Help:    "Latency of Send, from call to transport write completion.",
		Buckets: prometheus.DefBuckets,
	})
)
