package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		callbacksTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modena_payments_total",
			Help: "Payment lifecycle transitions by gateway (submitted/submit_failed/paid/canceled).",
		},
		[]string{"gateway", "status"},
	)

	callbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modena_callbacks_total",
			Help: "Processor callbacks by kind (sync/async/cancel) and result.",
		},
		[]string{"kind", "result"},
	)
)

func IncPayment(gateway, status string) {
	paymentsTotal.WithLabelValues(norm(gateway), norm(status)).Inc()
}

func IncCallback(kind, result string) {
	callbacksTotal.WithLabelValues(norm(kind), norm(result)).Inc()
}
