package metrics

import "github.com/prometheus/client_golang/prometheus"

// KarmaMetrics holds Prometheus metrics for the karma processing pipeline.
type KarmaMetrics struct {
	Processed          *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
	DedupRemovals      *prometheus.CounterVec
	DedupSize          prometheus.Gauge
	DegradedResults    prometheus.Counter
	BreakerState       prometheus.Gauge
}

// NewKarmaMetrics creates and registers karma pipeline metrics on the given registry.
func NewKarmaMetrics(reg prometheus.Registerer) *KarmaMetrics {
	m := &KarmaMetrics{
		Processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "karma_processed_total",
			Help:      "Total number of processed messages, by outcome.",
		}, []string{"outcome"}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "karma_processing_duration_seconds",
			Help:      "Duration of karma message processing in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		DedupRemovals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "karma_dedup_removals_total",
			Help:      "Total number of dedup cache removals, by cause.",
		}, []string{"cause"}),
		DedupSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "karma_dedup_entries",
			Help:      "Current number of entries in the dedup cache.",
		}),
		DegradedResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "karma_degraded_results_total",
			Help:      "Total number of results produced while the counter store was failing.",
		}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "karma_store_breaker_state",
			Help:      "Counter store circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
	}

	reg.MustRegister(
		m.Processed,
		m.ProcessingDuration,
		m.DedupRemovals,
		m.DedupSize,
		m.DegradedResults,
		m.BreakerState,
	)
	return m
}

// BreakerStateValue maps a circuit breaker state name to its gauge value.
func BreakerStateValue(state string) float64 {
	switch state {
	case "closed":
		return 0
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return -1
	}
}
