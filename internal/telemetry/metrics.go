package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. It satisfies the
// aggregation and lifecycle observer interfaces.
type Metrics struct {
	registry *prometheus.Registry

	aggregations       *prometheus.HistogramVec
	sourceFailures     *prometheus.CounterVec
	deletions          *prometheus.HistogramVec
	collectionFailures *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// NewMetrics registers every collector on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		aggregations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clientdesk_aggregation_duration_seconds",
			Help:    "Duration of client aggregations by outcome",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"outcome"}),
		sourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clientdesk_aggregation_source_failures_total",
			Help: "Optional sources replaced by defaults after a fetch error",
		}, []string{"source"}),
		deletions: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clientdesk_deletion_duration_seconds",
			Help:    "Duration of complete client deletions by result",
			Buckets: prometheus.DefBuckets,
		}, []string{"success"}),
		collectionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clientdesk_deletion_collection_failures_total",
			Help: "Dependent collection deletes that failed",
		}, []string{"collection"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clientdesk_http_requests_total",
			Help: "HTTP requests by method and status",
		}, []string{"method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clientdesk_http_request_duration_seconds",
			Help:    "HTTP request latency by method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// ObserveAggregation records one aggregation.
func (m *Metrics) ObserveAggregation(outcome string, elapsed time.Duration) {
	m.aggregations.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveSourceFailure counts an optional source that fell back to defaults.
func (m *Metrics) ObserveSourceFailure(source string) {
	m.sourceFailures.WithLabelValues(source).Inc()
}

// ObserveDeletion records one deletion run.
func (m *Metrics) ObserveDeletion(success bool, elapsed time.Duration) {
	m.deletions.WithLabelValues(strconv.FormatBool(success)).Observe(elapsed.Seconds())
}

// ObserveCollectionFailure counts a failed dependent delete.
func (m *Metrics) ObserveCollectionFailure(collection string) {
	m.collectionFailures.WithLabelValues(collection).Inc()
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
