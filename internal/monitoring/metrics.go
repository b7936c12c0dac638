package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API metrics
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "method", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_api_request_duration_seconds",
			Help:    "API request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Market data metrics
	providerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_provider_requests_total",
			Help: "Total number of market data provider calls",
		},
		[]string{"provider", "outcome"},
	)

	quotePrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insight_quote_price",
			Help: "Last observed price per symbol",
		},
		[]string{"symbol"},
	)

	// Feature metrics
	alertsTriggeredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_alerts_triggered_total",
			Help: "Total number of alert rules that fired",
		},
		[]string{"kind"},
	)

	screenerDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_screener_run_duration_seconds",
			Help:    "Screener run duration distribution",
			Buckets: prometheus.DefBuckets,
		},
	)

	llmRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_llm_requests_total",
			Help: "Total number of AI commentary requests",
		},
		[]string{"outcome"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(providerRequestsTotal)
	prometheus.MustRegister(quotePrice)
	prometheus.MustRegister(alertsTriggeredTotal)
	prometheus.MustRegister(screenerDuration)
	prometheus.MustRegister(llmRequestsTotal)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordAPIRequest records one handled API request
func RecordAPIRequest(route, method string, status int, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordProviderRequest records a market data provider call
func RecordProviderRequest(provider, outcome string) {
	providerRequestsTotal.WithLabelValues(provider, outcome).Inc()
}

// UpdateQuotePrice updates the last seen price gauge
func UpdateQuotePrice(symbol string, price float64) {
	quotePrice.WithLabelValues(symbol).Set(price)
}

// RecordAlertTriggered records a fired alert
func RecordAlertTriggered(kind string) {
	alertsTriggeredTotal.WithLabelValues(kind).Inc()
}

// RecordScreenerRun records the duration of a screener pass
func RecordScreenerRun(duration time.Duration) {
	screenerDuration.Observe(duration.Seconds())
}

// RecordLLMRequest records an AI commentary call outcome ("ok" or "error")
func RecordLLMRequest(outcome string) {
	llmRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
