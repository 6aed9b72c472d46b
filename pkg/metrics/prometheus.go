// Package metrics provides Prometheus metrics for the stockwatch monitor.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the monitor.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Run Metrics
	runsTotal          *prometheus.CounterVec
	runDuration        prometheus.Histogram
	runLastSuccessUnix prometheus.Gauge
	identifiersLoaded  prometheus.Gauge

	// Lookup Metrics - one observation per catalog request
	lookupsTotal  *prometheus.CounterVec
	lookupLatency prometheus.Histogram

	// Alert Metrics
	alertsRaised prometheus.Counter
	alertGroups  prometheus.Gauge

	// Worker Metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Reporter Metrics
	reportDeliveries *prometheus.CounterVec

	// HTTP Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stockwatch",
		subsystem:        "monitor",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Total number of monitor runs by final outcome",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall time of a full monitor run in seconds",
		Buckets:     []float64{1, 5, 10, 30, 60, 120, 300, 600},
		ConstLabels: constLabels,
	})

	m.runLastSuccessUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_last_success_unixtime",
		Help:        "Unix time of the last run that loaded its identifiers",
		ConstLabels: constLabels,
	})

	m.identifiersLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "identifiers_loaded",
		Help:        "Number of identifiers loaded by the last run",
		ConstLabels: constLabels,
	})

	m.lookupsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "lookups_total",
		Help:        "Catalog lookups by outcome (found, not_found, failure)",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	m.lookupLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "lookup_latency_milliseconds",
		Help:        "Histogram of catalog lookup latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.alertsRaised = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "alerts_raised_total",
		Help:        "Raw low-stock entries emitted by the extractor",
		ConstLabels: constLabels,
	})

	m.alertGroups = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "alert_groups",
		Help:        "Number of events with at least one alert in the last run",
		ConstLabels: constLabels,
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_active_count",
		Help:        "Number of pool workers currently draining the cursor",
		ConstLabels: constLabels,
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_processing_latency_milliseconds",
		Help:        "Time spent by a worker on one identifier",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_errors_total",
		Help:        "Tasks that returned an error or panicked",
		ConstLabels: constLabels,
	})

	m.reportDeliveries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "report_deliveries_total",
		Help:        "Report deliveries by reporter and status",
		ConstLabels: constLabels,
	}, []string{"reporter", "status"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Errors by component and error type",
		ConstLabels: constLabels,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})
}

// Run Metrics Functions.

// RecordRun records a finished run with its final outcome label
// (reported, nothing_to_report, failed).
func RecordRun(outcome string, duration time.Duration) {
	globalManager.runsTotal.WithLabelValues(outcome).Inc()
	globalManager.runDuration.Observe(duration.Seconds())
}

// MarkRunSuccess stores the time of the last run that loaded identifiers.
func MarkRunSuccess(t time.Time) {
	globalManager.runLastSuccessUnix.Set(float64(t.Unix()))
}

// UpdateIdentifiersLoaded sets the identifier count of the current run.
func UpdateIdentifiersLoaded(count int) {
	globalManager.identifiersLoaded.Set(float64(count))
}

// Lookup Metrics Functions.

// RecordLookup records one catalog lookup and its latency in milliseconds.
func RecordLookup(outcome string, latencyMs float64) {
	globalManager.lookupsTotal.WithLabelValues(outcome).Inc()
	globalManager.lookupLatency.Observe(latencyMs)
}

// Alert Metrics Functions.

// RecordAlertsRaised adds n raw entries to the alert counter.
func RecordAlertsRaised(n int) {
	if n > 0 {
		globalManager.alertsRaised.Add(float64(n))
	}
}

// UpdateAlertGroups sets the number of alert groups of the last run.
func UpdateAlertGroups(count int) {
	globalManager.alertGroups.Set(float64(count))
}

// Worker Metrics Functions.

// WorkerStarted increments the active worker gauge.
func WorkerStarted() {
	globalManager.workerActiveCount.Inc()
}

// WorkerStopped decrements the active worker gauge.
func WorkerStopped() {
	globalManager.workerActiveCount.Dec()
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Reporter Metrics Functions.

// RecordReportDelivery records a reporter delivery attempt.
func RecordReportDelivery(reporter, status string) {
	globalManager.reportDeliveries.WithLabelValues(reporter, status).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
