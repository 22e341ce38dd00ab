package generation

import "github.com/prometheus/client_golang/prometheus"

var (
	stopsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgellm",
			Subsystem: "generation",
			Name:      "stops_total",
			Help:      "Finished generations by perspective and stop reason",
		},
		[]string{"perspective", "reason"},
	)

	fragmentsPerGeneration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edgellm",
			Subsystem: "generation",
			Name:      "fragments",
			Help:      "Fragments consumed per successful generation",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 8),
		},
		[]string{"perspective"},
	)

	failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgellm",
			Subsystem: "generation",
			Name:      "failures_total",
			Help:      "Generations that ended with an error event",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(stopsTotal, fragmentsPerGeneration, failuresTotal)
}
