package outbox

import "github.com/prometheus/client_golang/prometheus"

// Relay metrics are labeled by aggregate (workout, meal or profile) so a stalled
// record kind shows up on its own series.
var (
	publishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "relay",
		Name:      "record_changes_published_total",
		Help:      "Record change events relayed from the outbox table to Kafka.",
	}, []string{"aggregate"})

	unpublishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "relay",
		Name:      "record_changes_unpublished_total",
		Help:      "Record change events Kafka rejected during a relay batch.",
	}, []string{"aggregate"})

	deadLetteredCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "relay",
		Name:      "record_changes_dead_lettered_total",
		Help:      "Record change events parked in outbox_dlq after a failed relay.",
	}, []string{"aggregate", "event_type"})

	relayBatchSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wellness",
		Subsystem: "relay",
		Name:      "batch_seconds",
		Help:      "Wall time to claim, publish and mark one batch of record changes.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(publishedCounter, unpublishedCounter, deadLetteredCounter, relayBatchSeconds)
}

func countByAggregate(messages []Message, vec *prometheus.CounterVec) {
	for _, msg := range messages {
		vec.WithLabelValues(msg.AggregateType).Inc()
	}
}
