package scheduler

import "github.com/prometheus/client_golang/prometheus"

var (
	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "edgellm",
			Subsystem: "scheduler",
			Name:      "queue_depth",
			Help:      "Load requests waiting for the drain worker",
		},
	)

	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgellm",
			Subsystem: "scheduler",
			Name:      "requests_total",
			Help:      "Load requests by outcome (resident, loaded, subsumed, failed, closed)",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(queueDepth, requestsTotal)
}
