package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	replayOutcomeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "dead_letters",
		Name:      "replay_outcomes_total",
		Help:      "Dead-lettered record changes by replay outcome (requeued, retry_scheduled, quarantined).",
	}, []string{"aggregate", "event_type", "outcome"})

	pendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wellness",
		Subsystem: "dead_letters",
		Name:      "pending",
		Help:      "Dead-lettered record changes still eligible for replay.",
	})
)

// Replay outcomes.
const (
	outcomeRequeued       = "requeued"
	outcomeRetryScheduled = "retry_scheduled"
	outcomeQuarantined    = "quarantined"
)

func init() {
	prometheus.MustRegister(replayOutcomeCounter, pendingGauge)
}

func recordReplay(entry dlqEntry, outcome string) {
	replayOutcomeCounter.WithLabelValues(entry.AggregateType, entry.EventType, outcome).Inc()
}
