package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	OrdersCreated    prometheus.Counter
	PaymentOutcomes  *prometheus.CounterVec
	ProviderAttempts *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the storefront collectors, plus the Go and process collectors, in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Total number of orders created.",
	})
	paymentOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "outcomes_total",
		Help:      "Payment confirmations by provider status.",
	}, []string{"status"})
	providerAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "provider_attempts_total",
		Help:      "Payment provider HTTP attempts by operation and result.",
	}, []string{"operation", "result"})

	reg.MustRegister(requests, latency, ordersCreated, paymentOutcomes, providerAttempts)

	return &Metrics{
		Requests:         requests,
		LatencyMS:        latency,
		OrdersCreated:    ordersCreated,
		PaymentOutcomes:  paymentOutcomes,
		ProviderAttempts: providerAttempts,
		gatherer:         reg,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
