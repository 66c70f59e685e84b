package metrics

import (
	"runtime"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Academy business metrics
	checkinsProcessed   prometheus.Counter
	checkinsDuplicate   prometheus.Counter
	promotionsApplied   *prometheus.CounterVec
	promotionsRejected  *prometheus.CounterVec
	rosterMembers       prometheus.Gauge
	membersByRank       *prometheus.GaugeVec
	sessionsScheduled   prometheus.Counter
	catalogLatency      *prometheus.HistogramVec
	rankComparisonError prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Store
	storeUpdateLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// Runtime
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide metrics registry

var globalManager atomic.Pointer[Manager] //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager.Store(NewManager(WithPrometheusRegistry(customRegistry)))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "jitsu",
		subsystem:        "academy",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// Use swaps the process-wide manager. Tests use it with an isolated registry.
func Use(m *Manager) error {
	if m == nil {
		return ErrNilManager
	}
	globalManager.Store(m)
	return nil
}

func (m *Manager) counter(auto promauto.Factory, name, help string) prometheus.Counter {
	return auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(auto promauto.Factory, name, help string, labels ...string) *prometheus.CounterVec {
	return auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(auto promauto.Factory, name, help string) prometheus.Gauge {
	return auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(auto promauto.Factory, name, help string) prometheus.Histogram {
	return auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(auto promauto.Factory, name, help string, labels ...string) *prometheus.HistogramVec {
	return auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.checkinsProcessed = m.counter(auto, "checkins_processed_total", "Check-ins written to the attendance store")
	m.checkinsDuplicate = m.counter(auto, "checkins_duplicate_total", "Check-ins dropped as duplicates")
	m.promotionsApplied = m.counterVec(auto, "promotions_applied_total", "Grade promotions applied", "rank")
	m.promotionsRejected = m.counterVec(auto, "promotions_rejected_total", "Grade promotions rejected", "reason")
	m.rosterMembers = m.gauge(auto, "roster_members", "Members currently held in the roster store")
	m.membersByRank = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "members_by_rank",
		Help: "Members per belt rank", ConstLabels: m.constLabels,
	}, []string{"rank"})
	m.sessionsScheduled = m.counter(auto, "sessions_scheduled_total", "Class sessions materialized from the weekly schedule")
	m.catalogLatency = m.histogramVec(auto, "catalog_latency_milliseconds", "Team catalog call latency in milliseconds", "operation")
	m.rankComparisonError = m.counter(auto, "rank_comparison_errors_total", "Roster orderings rejected for an invalid rank")

	m.queueSize = m.gauge(auto, "queue_size", "Current size of the event queue")
	m.queueCapacity = m.gauge(auto, "queue_capacity", "Maximum queue capacity")
	m.queueEnqueued = m.counter(auto, "queue_enqueue_total", "Events enqueued")
	m.queueDequeued = m.counter(auto, "queue_dequeue_total", "Events dequeued")
	m.queueEnqueueErrors = m.counter(auto, "queue_enqueue_errors_total", "Events rejected by a full or closed queue")

	m.workerCount = m.gauge(auto, "worker_count", "Number of running workers")
	m.workerProcessingLatency = m.histogram(auto, "worker_processing_latency_milliseconds", "Per-event worker processing latency")
	m.workerErrors = m.counter(auto, "worker_errors_total", "Events the workers failed to apply")

	m.storeUpdateLatency = m.histogram(auto, "store_update_latency_milliseconds", "Roster store write latency")
	m.storeQueryLatency = m.histogram(auto, "store_query_latency_milliseconds", "Roster store read latency")

	m.httpRequests = m.counterVec(auto, "http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec(auto, "http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.httpRateLimited = m.counterVec(auto, "http_rate_limited_total", "Requests rejected by the rate limiter", "endpoint")

	m.errorsByComponent = m.counterVec(auto, "errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorsByEndpoint = m.counterVec(auto, "errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge(auto, "system_memory_usage_bytes", "Heap bytes in use")
	m.systemGoroutineCount = m.gauge(auto, "system_goroutine_count", "Number of goroutines")
}

func active() *Manager {
	m := globalManager.Load()
	if m == nil || !m.enabled {
		return nil
	}
	return m
}

// RecordCheckInProcessed counts a stored check-in.
func RecordCheckInProcessed() {
	if m := active(); m != nil {
		m.checkinsProcessed.Inc()
	}
}

// RecordCheckInDuplicate counts a check-in dropped by the deduper.
func RecordCheckInDuplicate() {
	if m := active(); m != nil {
		m.checkinsDuplicate.Inc()
	}
}

// RecordPromotionApplied counts a promotion to the given rank id.
func RecordPromotionApplied(rank string) {
	if m := active(); m != nil {
		m.promotionsApplied.WithLabelValues(rank).Inc()
	}
}

// RecordPromotionRejected counts a refused promotion.
func RecordPromotionRejected(reason string) {
	if m := active(); m != nil {
		m.promotionsRejected.WithLabelValues(reason).Inc()
	}
}

// UpdateRosterMembers sets the roster size.
func UpdateRosterMembers(count int) {
	if m := active(); m != nil {
		m.rosterMembers.Set(float64(count))
	}
}

// UpdateMembersByRank sets the member count for one rank.
func UpdateMembersByRank(rank string, count int) {
	if m := active(); m != nil {
		m.membersByRank.WithLabelValues(rank).Set(float64(count))
	}
}

// RecordSessionsScheduled adds n materialized sessions.
func RecordSessionsScheduled(n int) {
	if m := active(); m != nil && n > 0 {
		m.sessionsScheduled.Add(float64(n))
	}
}

// RecordCatalogLatency records team catalog latency for an operation.
func RecordCatalogLatency(operation string, latencyMs float64) {
	if m := active(); m != nil {
		m.catalogLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// RecordRankComparisonError counts a roster ordering rejected for bad data.
func RecordRankComparisonError() {
	if m := active(); m != nil {
		m.rankComparisonError.Inc()
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if m := active(); m != nil {
		m.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if m := active(); m != nil {
		m.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if m := active(); m != nil {
		m.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if m := active(); m != nil {
		m.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if m := active(); m != nil {
		m.queueEnqueueErrors.Inc()
	}
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	if m := active(); m != nil {
		m.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records per-event processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if m := active(); m != nil {
		m.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if m := active(); m != nil {
		m.workerErrors.Inc()
	}
}

// RecordStoreUpdateLatency records a roster store write.
func RecordStoreUpdateLatency(latencyMs float64) {
	if m := active(); m != nil {
		m.storeUpdateLatency.Observe(latencyMs)
	}
}

// RecordStoreQueryLatency records a roster store read.
func RecordStoreQueryLatency(latencyMs float64) {
	if m := active(); m != nil {
		m.storeQueryLatency.Observe(latencyMs)
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if m := active(); m != nil {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if m := active(); m != nil {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordRateLimited counts a request refused by the limiter.
func RecordRateLimited(endpoint string) {
	if m := active(); m != nil {
		m.httpRateLimited.WithLabelValues(endpoint).Inc()
	}
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if m := active(); m != nil {
		m.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method and type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m := active(); m != nil {
		m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// CollectRuntime samples heap usage and goroutine count.
func CollectRuntime() {
	m := active()
	if m == nil {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapInuse))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
