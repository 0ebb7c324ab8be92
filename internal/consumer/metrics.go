package consumer

import "github.com/prometheus/client_golang/prometheus"

var (
	summaryEventsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary_consumer",
		Name:      "record_changes_applied_total",
		Help:      "Record change events that refreshed a weekly summary, by event type.",
	}, []string{"event_type"})

	summaryFailuresCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary_consumer",
		Name:      "summary_refresh_failures_total",
		Help:      "Record change events whose weekly summary could not be rebuilt, by event type.",
	}, []string{"event_type"})

	malformedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "summary_consumer",
		Name:      "malformed_events_total",
		Help:      "Kafka messages skipped because they did not decode into a record change.",
	})

	lastAppliedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wellness",
		Subsystem: "summary_consumer",
		Name:      "last_applied_event_timestamp_seconds",
		Help:      "Kafka timestamp of the newest record change folded into a weekly summary.",
	})
)

func init() {
	prometheus.MustRegister(summaryEventsCounter, summaryFailuresCounter, malformedCounter, lastAppliedGauge)
}

func recordApplied(msg Message) {
	summaryEventsCounter.WithLabelValues(msg.EventType).Inc()
	if !msg.Timestamp.IsZero() {
		lastAppliedGauge.Set(float64(msg.Timestamp.Unix()))
	}
}

func recordSummaryFailure(msg Message) {
	summaryFailuresCounter.WithLabelValues(msg.EventType).Inc()
}

func recordMalformed() {
	malformedCounter.Inc()
}
