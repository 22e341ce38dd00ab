package residency

import "github.com/prometheus/client_golang/prometheus"

var (
	swapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgellm",
			Subsystem: "residency",
			Name:      "swaps_total",
			Help:      "Swap attempts by result (noop, loaded, missing_file, engine_failure)",
		},
		[]string{"result"},
	)

	swapDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "edgellm",
			Subsystem: "residency",
			Name:      "swap_duration_seconds",
			Help:      "Duration of swaps that reached the native engine",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	unloadFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "edgellm",
			Subsystem: "residency",
			Name:      "unload_failures_total",
			Help:      "Best-effort unloads that returned an error",
		},
	)

	residentGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "edgellm",
			Subsystem: "residency",
			Name:      "loaded",
			Help:      "1 when a model occupies the inference slot",
		},
	)
)

func init() {
	prometheus.MustRegister(swapsTotal, swapDuration, unloadFailuresTotal, residentGauge)
}
