package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		processorRequestsTotal,
		processorRequestDuration,
	)
}

var (
	processorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modena_processor_requests_total",
			Help: "Outbound Modena API requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	processorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modena_processor_request_seconds",
			Help:    "Latency of outbound Modena API requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

func ObserveProcessorRequest(endpoint, outcome string, elapsed time.Duration) {
	processorRequestsTotal.WithLabelValues(norm(endpoint), norm(outcome)).Inc()
	processorRequestDuration.WithLabelValues(norm(endpoint)).Observe(elapsed.Seconds())
}
