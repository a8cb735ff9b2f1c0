package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gasdata"

// Metrics holds the service collectors.
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamRetries  *prometheus.CounterVec
	ingestRows       *prometheus.CounterVec
	sourceFailures   *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	apiRequests      *prometheus.CounterVec
}

// New creates and registers all collectors, including Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Upstream HTTP requests by host and status code (0 = transport error)",
			},
			[]string{"host", "code"},
		),
		upstreamRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_retries_total",
				Help:      "Upstream retries by host and reason",
			},
			[]string{"host", "reason"},
		),
		ingestRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_rows_total",
				Help:      "Rows upserted by table and source",
			},
			[]string{"table", "source"},
		),
		sourceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_source_failures_total",
				Help:      "Failed source tasks by source",
			},
			[]string{"source"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_run_duration_seconds",
				Help:      "Duration of ingestion runs",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"ok"},
		),
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "API requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}

	m.registry.MustRegister(
		m.upstreamRequests,
		m.upstreamRetries,
		m.ingestRows,
		m.sourceFailures,
		m.runDuration,
		m.apiRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest counts one upstream request.
func (m *Metrics) ObserveRequest(host string, status int) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
}

// ObserveRetry counts one upstream retry.
func (m *Metrics) ObserveRetry(host, reason string) {
	if m == nil {
		return
	}
	m.upstreamRetries.WithLabelValues(host, reason).Inc()
}

// AddRows counts rows upserted into table by source.
func (m *Metrics) AddRows(table, source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ingestRows.WithLabelValues(table, source).Add(float64(n))
}

// SourceFailed counts one failed source task.
func (m *Metrics) SourceFailed(source string) {
	if m == nil {
		return
	}
	m.sourceFailures.WithLabelValues(source).Inc()
}

// ObserveRun records the duration of an ingestion run.
func (m *Metrics) ObserveRun(d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(strconv.FormatBool(ok)).Observe(d.Seconds())
}

// ObserveAPI counts one API request.
func (m *Metrics) ObserveAPI(route string, status int) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
