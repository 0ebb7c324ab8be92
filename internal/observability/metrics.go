// Package observability holds process-wide Prometheus metrics and logger construction.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordPersistGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "wellness",
		Subsystem: "persistence",
		Name:      "last_record_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent record persisted to Postgres, by kind.",
	}, []string{"kind"})

	summaryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wellness",
		Subsystem: "summary",
		Name:      "compute_duration_seconds",
		Help:      "Time spent loading a snapshot and storing its weekly summary.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	summaryComputedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary",
		Name:      "computed_total",
		Help:      "Number of weekly summaries recomputed.",
	})

	realtimeClientsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wellness",
		Subsystem: "realtime",
		Name:      "connected_clients",
		Help:      "Number of dashboard stream subscribers currently connected.",
	})
)

func init() {
	prometheus.MustRegister(recordPersistGauge, summaryDuration, summaryComputedCounter, realtimeClientsGauge)
}

// RecordPersisted updates the persistence watermark gauge for kind.
func RecordPersisted(kind string, ts time.Time) {
	if ts.IsZero() {
		return
	}
	recordPersistGauge.WithLabelValues(kind).Set(float64(ts.Unix()))
}

// RecordSummaryComputed observes one summary recomputation.
func RecordSummaryComputed(elapsed time.Duration) {
	summaryComputedCounter.Inc()
	summaryDuration.Observe(elapsed.Seconds())
}

// SetRealtimeClients reports the current number of stream subscribers.
func SetRealtimeClients(n int) {
	realtimeClientsGauge.Set(float64(n))
}
