package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "order_notifier"

type Metrics struct {
	Requests          *prometheus.CounterVec
	Dispatches        *prometheus.CounterVec
	DispatchLatencyMS *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_requests_total",
		Help:      "Total number of webhook deliveries by route and response status.",
	}, []string{"route", "status"})
	dispatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatches_total",
		Help:      "Total number of dispatcher runs by channel and outcome.",
	}, []string{"channel", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dispatch_duration_ms",
		Help:      "Dispatcher latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"channel"})

	reg.MustRegister(requests, dispatches, latency)

	return &Metrics{Requests: requests, Dispatches: dispatches, DispatchLatencyMS: latency}
}

func (m *Metrics) ObserveRequest(route string, status int) {
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveDispatch(channel, outcome string, elapsed time.Duration) {
	m.Dispatches.WithLabelValues(channel, outcome).Inc()
	m.DispatchLatencyMS.WithLabelValues(channel).Observe(float64(elapsed.Milliseconds()))
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
