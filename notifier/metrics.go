package notifier

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	outcomeCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventbot",
		Subsystem: "notifier",
		Name:      "outcomes_total",
		Help:      "Per-user notification outcomes by status and reason.",
	}, []string{"status", "reason"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventbot",
		Subsystem: "notifier",
		Name:      "cycle_duration_seconds",
		Help:      "Duration of complete notification cycles.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	integrityViolations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventbot",
		Subsystem: "notifier",
		Name:      "integrity_violations_total",
		Help:      "Duplicate notification inserts observed after a fresh dedup check.",
	})
)

func recordOutcome(outcome Outcome) {
	outcomeCounter.WithLabelValues(string(outcome.Status), outcome.Reason).Inc()
}

func observeCycle(start time.Time) {
	cycleDuration.Observe(time.Since(start).Seconds())
}
