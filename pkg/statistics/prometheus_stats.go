package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	valuesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spqr_sequencer_values_issued_total",
		Help: "Sequence values handed out to callers",
	}, []string{"sequence"})

	refills = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spqr_sequencer_refills_total",
		Help: "Segments claimed from the counter store",
	}, []string{"sequence"})

	casConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spqr_sequencer_cas_conflicts_total",
		Help: "Conditional updates of the counter row that lost the race",
	}, []string{"sequence"})

	retriesExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spqr_sequencer_retries_exhausted_total",
		Help: "Refills that gave up after the retry budget",
	}, []string{"sequence"})

	refillDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "spqr_sequencer_refill_duration_seconds",
		Help: "Time to claim a segment including CAS retries",
		Buckets: []float64{
			0.0001, // 100µs
			0.0005, // 500µs
			0.001,  // 1ms
			0.005,  // 5ms
			0.01,   // 10ms
			0.05,   // 50ms
			0.1,    // 100ms
			0.5,    // 500ms
			1.0,    // 1s
			5.0,    // 5s
		},
	}, []string{"sequence"})
)

// IssuedCounter returns the per-sequence counter of handed out values.
// Callers keep it so that the hot path only does an atomic add.
func IssuedCounter(name string) prometheus.Counter {
	return valuesIssued.WithLabelValues(name)
}

func RecordConflict(name string) {
	casConflicts.WithLabelValues(name).Inc()
}

func RecordRetriesExhausted(name string) {
	retriesExhausted.WithLabelValues(name).Inc()
}
