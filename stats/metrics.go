// Package stats's metrics mirror session/metrics.go's promauto idiom.
package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScrapeLatencyHistogram tracks the time Connect spends dialing,
	// receiving the fd and mapping the segment.
	ScrapeLatencyHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vppclient_stats_connect_seconds",
		Help:    "Latency of stats.Connect, from dial to a mapped and validated region.",
		Buckets: prometheus.DefBuckets,
	})
)
