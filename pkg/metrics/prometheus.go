// Package metrics provides Prometheus metrics for the busyspot scoring service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the busyspot service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Training
	trainingRuns     *prometheus.CounterVec
	trainingDuration prometheus.Histogram
	trainingRecords  *prometheus.CounterVec
	modeledLocations prometheus.Gauge

	// Snapshot store
	snapshotWrites   *prometheus.CounterVec
	snapshotLastUnix prometheus.Gauge

	// Prediction
	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	predictionErrors  *prometheus.CounterVec

	// Signals
	feedbackOutcomes *prometheus.CounterVec
	weatherOutcomes  *prometheus.CounterVec
	weatherLatency   prometheus.Histogram
	weatherCache     *prometheus.CounterVec

	autoTrainTriggers prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

var disabled atomic.Bool

// Initialize global metrics.
func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "busyspot",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval returns how often gauge refreshers should run.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.trainingRuns = m.counterVec("training_runs_total",
		"Training runs by outcome", "outcome")
	m.trainingDuration = m.histogram("training_duration_milliseconds",
		"Duration of a full training run in milliseconds")
	m.trainingRecords = m.counterVec("training_records_total",
		"Desk-log records seen by training, by disposition", "disposition")
	m.modeledLocations = m.gauge("modeled_locations",
		"Locations present in the current per-location table")

	m.snapshotWrites = m.counterVec("snapshot_writes_total",
		"Frequency-table writes by outcome", "outcome")
	m.snapshotLastUnix = m.gauge("snapshot_last_publish_unix_seconds",
		"Unix time of the last successful frequency-table publish")

	m.predictions = m.counterVec("predictions_total",
		"Predictions served by model source and blend", "model_source", "blend")
	m.predictionLatency = m.histogram("prediction_latency_milliseconds",
		"End-to-end prediction latency in milliseconds")
	m.predictionErrors = m.counterVec("prediction_errors_total",
		"Failed predictions by reason", "reason")

	m.feedbackOutcomes = m.counterVec("feedback_outcomes_total",
		"Feedback aggregation outcomes", "outcome")
	m.weatherOutcomes = m.counterVec("weather_outcomes_total",
		"Weather adjustment outcomes by status", "status")
	m.weatherLatency = m.histogram("weather_lookup_latency_milliseconds",
		"Weather provider lookup latency in milliseconds")
	m.weatherCache = m.counterVec("weather_cache_total",
		"Weather cache lookups by result", "result")

	m.autoTrainTriggers = promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("auto_train_triggers_total"),
		Help:        "Training runs triggered by desk-log file changes",
		ConstLabels: m.customLabels,
	})

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"HTTP errors by endpoint, method and error type", "endpoint", "method", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Errors by type and severity", "error_type", "severity")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use, in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "GC pause time in milliseconds")
}

// SetEnabled turns recording on or off for the global manager.
func SetEnabled(enabled bool) {
	disabled.Store(!enabled)
}

func on() bool {
	return globalManager.enabled && !disabled.Load()
}

// Training.

// RecordTrainingRun counts a training run with its outcome and duration.
func RecordTrainingRun(outcome string, durationMs float64) {
	if !on() {
		return
	}
	globalManager.trainingRuns.WithLabelValues(outcome).Inc()
	globalManager.trainingDuration.Observe(durationMs)
}

// RecordTrainingRecords adds n records with the given disposition (used, unmapped, bad_timestamp).
func RecordTrainingRecords(disposition string, n int) {
	if !on() || n <= 0 {
		return
	}
	globalManager.trainingRecords.WithLabelValues(disposition).Add(float64(n))
}

// UpdateModeledLocations sets the number of locations in the per-location table.
func UpdateModeledLocations(n int) {
	if !on() {
		return
	}
	globalManager.modeledLocations.Set(float64(n))
}

// RecordSnapshotWrite counts a frequency-table write; success also stamps the publish time.
func RecordSnapshotWrite(outcome string) {
	if !on() {
		return
	}
	globalManager.snapshotWrites.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		globalManager.snapshotLastUnix.Set(float64(time.Now().Unix()))
	}
}

// Prediction.

// RecordPrediction counts a served prediction and its latency.
func RecordPrediction(modelSource, blend string, latencyMs float64) {
	if !on() {
		return
	}
	globalManager.predictions.WithLabelValues(modelSource, blend).Inc()
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordPredictionError counts a failed prediction.
func RecordPredictionError(reason string) {
	if !on() {
		return
	}
	globalManager.predictionErrors.WithLabelValues(reason).Inc()
}

// Signals.

// RecordFeedbackOutcome counts a feedback aggregation outcome.
func RecordFeedbackOutcome(outcome string) {
	if !on() {
		return
	}
	globalManager.feedbackOutcomes.WithLabelValues(outcome).Inc()
}

// RecordWeatherOutcome counts a weather adjustment by status.
func RecordWeatherOutcome(status string) {
	if !on() {
		return
	}
	globalManager.weatherOutcomes.WithLabelValues(status).Inc()
}

// RecordWeatherLatency records a provider lookup latency in milliseconds.
func RecordWeatherLatency(latencyMs float64) {
	if !on() {
		return
	}
	globalManager.weatherLatency.Observe(latencyMs)
}

// RecordWeatherCache counts a cache lookup result (hit, miss, error).
func RecordWeatherCache(result string) {
	if !on() {
		return
	}
	globalManager.weatherCache.WithLabelValues(result).Inc()
}

// RecordAutoTrainTrigger counts a watcher-triggered training run.
func RecordAutoTrainTrigger() {
	if !on() {
		return
	}
	globalManager.autoTrainTriggers.Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !on() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !on() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !on() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !on() {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !on() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !on() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !on() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval returns the global manager's gauge refresh interval.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
