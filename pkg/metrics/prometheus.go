// Package metrics provides Prometheus metrics for the sync bridge.
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

// Manager manages all Prometheus metrics for the sync bridge.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Capture buffer metrics
	capturesAdded        prometheus.Counter
	capturesDuplicate    prometheus.Counter
	capturesAcknowledged prometheus.Counter
	syncPolls            prometheus.Counter
	pendingCaptures      prometheus.Gauge
	totalCaptures        prometheus.Gauge

	// Store metrics
	storeUpdateLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram
	persistenceErrors  prometheus.Counter
	storeReloads       prometheus.Counter

	// Image cache metrics
	imageCacheHits       prometheus.Counter
	imageCacheMisses     prometheus.Counter
	imageCacheEvictions  prometheus.Counter
	imageCacheSize       prometheus.Gauge
	placeholderFallbacks prometheus.Counter
	imageBackendRequests *prometheus.CounterVec
	imageBackendLatency  prometheus.Histogram
	imageBackendRetries  prometheus.Counter

	// Registration metrics
	registrationAttempts prometheus.Counter
	registrationFailures prometheus.Counter

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "syncbridge",
		subsystem:        "client",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Capture buffer metrics
	m.capturesAdded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "captures_added_total",
		Help:      "Total number of capture records appended to the buffer",
	})

	m.capturesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "captures_duplicate_total",
		Help:      "Total number of add-capture requests rejected by the dedup window",
	})

	m.capturesAcknowledged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "captures_acknowledged_total",
		Help:      "Total number of capture records acknowledged by the backend",
	})

	m.syncPolls = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_polls_total",
		Help:      "Total number of sync-data polls served to the backend",
	})

	m.pendingCaptures = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pending_captures",
		Help:      "Current number of unacknowledged capture records",
	})

	m.totalCaptures = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_captures",
		Help:      "Total number of capture records in the buffer",
	})

	// Store metrics
	m.storeUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_update_latency_milliseconds",
		Help:      "Capture store mutation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Capture store query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.persistenceErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_errors_total",
		Help:      "Total number of capture store read/write failures recovered from",
	})

	m.storeReloads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_reloads_total",
		Help:      "Total number of forced reloads from the persisted store",
	})

	// Image cache metrics
	m.imageCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "image_cache_hits_total",
		Help:      "Total number of local image cache hits",
	})

	m.imageCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "image_cache_misses_total",
		Help:      "Total number of local image cache misses",
	})

	m.imageCacheEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "image_cache_evictions_total",
		Help:      "Total number of expired image cache entries evicted",
	})

	m.imageCacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "image_cache_size",
		Help:      "Current number of entries in the local image cache",
	})

	m.placeholderFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "placeholder_fallbacks_total",
		Help:      "Total number of image requests resolved to a placeholder",
	})

	m.imageBackendRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "image_backend_requests_total",
			Help:      "Total number of image backend requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.imageBackendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "image_backend_latency_milliseconds",
		Help:      "Image backend round-trip latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.imageBackendRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "image_backend_retries_total",
		Help:      "Total number of image backend request retries",
	})

	// Registration metrics
	m.registrationAttempts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registration_attempts_total",
		Help:      "Total number of backend registration attempts",
	})

	m.registrationFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registration_failures_total",
		Help:      "Total number of failed backend registration attempts",
	})

	// HTTP performance metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Error metrics
	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint, method, and type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of operations that resulted in an error",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	// System performance metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordCaptureAdded increments the captures added counter.
func RecordCaptureAdded() {
	globalManager.capturesAdded.Inc()
}

// RecordCaptureDuplicate increments the duplicate captures counter.
func RecordCaptureDuplicate() {
	globalManager.capturesDuplicate.Inc()
}

// RecordCapturesAcknowledged adds to the acknowledged captures counter.
func RecordCapturesAcknowledged(count int) {
	globalManager.capturesAcknowledged.Add(float64(count))
}

// RecordSyncPoll increments the sync polls counter.
func RecordSyncPoll() {
	globalManager.syncPolls.Inc()
}

// UpdatePendingCaptures sets the current pending capture count.
func UpdatePendingCaptures(count int) {
	globalManager.pendingCaptures.Set(float64(count))
}

// UpdateTotalCaptures sets the total capture count.
func UpdateTotalCaptures(count int) {
	globalManager.totalCaptures.Set(float64(count))
}

// RecordStoreUpdateLatency records a store mutation latency in milliseconds.
func RecordStoreUpdateLatency(latencyMs float64) {
	globalManager.storeUpdateLatency.Observe(latencyMs)
}

// RecordStoreQueryLatency records a store query latency in milliseconds.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordPersistenceError increments the recovered persistence failures counter.
func RecordPersistenceError() {
	globalManager.persistenceErrors.Inc()
}

// RecordStoreReload increments the forced reload counter.
func RecordStoreReload() {
	globalManager.storeReloads.Inc()
}

// RecordImageCacheHit increments the local image cache hit counter.
func RecordImageCacheHit() {
	globalManager.imageCacheHits.Inc()
}

// RecordImageCacheMiss increments the local image cache miss counter.
func RecordImageCacheMiss() {
	globalManager.imageCacheMisses.Inc()
}

// RecordImageCacheEviction increments the expired-entry eviction counter.
func RecordImageCacheEviction() {
	globalManager.imageCacheEvictions.Inc()
}

// UpdateImageCacheSize sets the current local image cache size.
func UpdateImageCacheSize(size int) {
	globalManager.imageCacheSize.Set(float64(size))
}

// RecordPlaceholderFallback increments the placeholder fallback counter.
func RecordPlaceholderFallback() {
	globalManager.placeholderFallbacks.Inc()
}

// RecordImageBackendRequest records an image backend request outcome.
func RecordImageBackendRequest(operation, outcome string) {
	globalManager.imageBackendRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordImageBackendLatency records image backend round-trip latency.
func RecordImageBackendLatency(latencyMs float64) {
	globalManager.imageBackendLatency.Observe(latencyMs)
}

// RecordImageBackendRetry increments the image backend retry counter.
func RecordImageBackendRetry() {
	globalManager.imageBackendRetries.Inc()
}

// RecordRegistrationAttempt increments the registration attempts counter.
func RecordRegistrationAttempt() {
	globalManager.registrationAttempts.Inc()
}

// RecordRegistrationFailure increments the registration failures counter.
func RecordRegistrationFailure() {
	globalManager.registrationFailures.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
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

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
