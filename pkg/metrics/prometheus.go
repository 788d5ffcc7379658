// Package metrics provides Prometheus metrics for the Bounceland service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Attendance
	interactions *prometheus.CounterVec
	duplicates   prometheus.Counter
	importRows   *prometheus.CounterVec
	exports      *prometheus.CounterVec
	resets       prometheus.Counter
	usersTotal   prometheus.Gauge
	weekScore    *prometheus.GaugeVec
	mealCount    *prometheus.GaugeVec

	// Presentation
	refreshes *prometheus.CounterVec
	posts     *prometheus.CounterVec

	// Persistence
	persistenceLatency *prometheus.HistogramVec
	persistenceErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package functions

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // exported through GetRegistry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "bounceland",
		subsystem:        "service",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.interactions = m.counterVec("interactions_total", "Poll interactions by kind and outcome", "kind", "outcome")
	m.duplicates = m.counter("interactions_duplicate_total", "Redelivered interactions that were ignored")
	m.importRows = m.counterVec("import_rows_total", "Imported table rows by result", "result")
	m.exports = m.counterVec("exports_total", "Dataset exports by format", "format")
	m.resets = m.counter("resets_total", "Administrative dataset resets")
	m.usersTotal = m.gauge("users_total", "Users known to the attendance dataset")
	m.weekScore = m.gaugeVec("week_score", "Attendance score per season week", "week")
	m.mealCount = m.gaugeVec("meal_participants", "Meal participants per day", "day")

	m.refreshes = m.counterVec("refreshes_total", "Live view refreshes by poll and result", "poll", "result")
	m.posts = m.counterVec("posts_total", "Live messages posted by poll", "poll")

	m.persistenceLatency = m.histogramVec("persistence_latency_milliseconds", "Document store latency by operation", "op")
	m.persistenceErrors = m.counterVec("persistence_errors_total", "Document store failures by operation", "op")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.queueSize = m.gauge("queue_size", "Refresh jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Refresh queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Refresh jobs enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Refresh jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Refresh jobs rejected by the queue")

	m.workerCount = m.gauge("worker_count", "Running refresh workers")
	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Time to render and publish one refresh job",
		Buckets:   m.histogramBuckets,
	})
	m.workerErrors = m.counter("worker_errors_total", "Refresh jobs that failed")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordInteraction counts a poll interaction, e.g. ("mode", "added").
func RecordInteraction(kind, outcome string) {
	globalManager.interactions.WithLabelValues(kind, outcome).Inc()
}

// RecordDuplicateInteraction counts an ignored redelivery.
func RecordDuplicateInteraction() {
	globalManager.duplicates.Inc()
}

// RecordImportRows adds n rows with the given result ("added" or "skipped").
func RecordImportRows(result string, n int) {
	globalManager.importRows.WithLabelValues(result).Add(float64(n))
}

// RecordExport counts an export in format.
func RecordExport(format string) {
	globalManager.exports.WithLabelValues(format).Inc()
}

// RecordReset counts an administrative reset.
func RecordReset() {
	globalManager.resets.Inc()
}

// UpdateUsersTotal sets the number of known users.
func UpdateUsersTotal(count int) {
	globalManager.usersTotal.Set(float64(count))
}

// UpdateWeekScore sets the score of one week.
func UpdateWeekScore(week string, score float64) {
	globalManager.weekScore.WithLabelValues(week).Set(score)
}

// ResetWeekScores drops every per-week series, e.g. after a season reset.
func ResetWeekScores() {
	globalManager.weekScore.Reset()
}

// UpdateMealCount sets the participant count of one meal day.
func UpdateMealCount(day string, count int) {
	globalManager.mealCount.WithLabelValues(day).Set(float64(count))
}

// RecordRefresh counts a live refresh by result, one of "published",
// "deferred", "throttled", "skipped" or "dropped".
func RecordRefresh(poll, result string) {
	globalManager.refreshes.WithLabelValues(poll, result).Inc()
}

// RecordPost counts a newly posted live message.
func RecordPost(poll string) {
	globalManager.posts.WithLabelValues(poll).Inc()
}

// RecordPersistenceLatency records a document store operation latency.
func RecordPersistenceLatency(op string, latencyMs float64) {
	globalManager.persistenceLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordPersistenceError counts a failed document store operation.
func RecordPersistenceError(op string) {
	globalManager.persistenceErrors.WithLabelValues(op).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the package metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
