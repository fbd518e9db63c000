// Package metrics provides Prometheus metrics for the HacMan progression engine.
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

// Manager manages all Prometheus metrics for the progression engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Solve ledger metrics
	solvesAccepted  prometheus.Counter
	solvesDuplicate prometheus.Counter
	solvesRejected  *prometheus.CounterVec

	// Profile aggregation metrics
	profileRecomputeLatency prometheus.Histogram

	// Leaderboard metrics
	leaderboardUpserts       prometheus.Counter
	leaderboardUpsertLatency prometheus.Histogram
	leaderboardQueryLatency  prometheus.Histogram
	leaderboardPlayers       prometheus.Gauge

	// Recommendation metrics
	recommendationCacheHits   prometheus.Counter
	recommendationCacheMisses prometheus.Counter
	recommendationLatency     prometheus.Histogram

	// Catalog metrics
	catalogRefreshes      prometheus.Counter
	catalogRefreshErrors  prometheus.Counter
	catalogChallenges     prometheus.Gauge
	catalogDegraded       prometheus.Gauge
	catalogRefreshLatency prometheus.Histogram

	// Refresh queue and worker metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	workerErrors       prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
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
		namespace:        "hacman",
		subsystem:        "progression",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.solvesAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "solves_accepted_total",
		Help:      "Total number of first solves recorded in the ledger",
	})

	m.solvesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "solves_duplicate_total",
		Help:      "Total number of duplicate solve submissions rejected idempotently",
	})

	m.solvesRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "solves_rejected_total",
			Help:      "Total number of solve submissions rejected before touching the ledger",
		},
		[]string{"reason"},
	)

	m.profileRecomputeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_recompute_latency_milliseconds",
		Help:      "Histogram of per-player profile recomputation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leaderboardUpserts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_upserts_total",
		Help:      "Total number of leaderboard entry repositions",
	})

	m.leaderboardUpsertLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_upsert_latency_milliseconds",
		Help:      "Histogram of leaderboard upsert latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leaderboardQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_query_latency_milliseconds",
		Help:      "Histogram of leaderboard rank/page query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leaderboardPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_players",
		Help:      "Number of players currently present on the leaderboard",
	})

	m.recommendationCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendation_cache_hits_total",
		Help:      "Total number of recommendation reads served from cache",
	})

	m.recommendationCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendation_cache_misses_total",
		Help:      "Total number of recommendation reads that required recomputation",
	})

	m.recommendationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendation_latency_milliseconds",
		Help:      "Histogram of recommendation scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.catalogRefreshes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_refreshes_total",
		Help:      "Total number of successful catalog snapshot refreshes",
	})

	m.catalogRefreshErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_refresh_errors_total",
		Help:      "Total number of failed catalog refresh attempts",
	})

	m.catalogChallenges = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_challenges",
		Help:      "Number of challenges in the current catalog snapshot",
	})

	m.catalogDegraded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_degraded",
		Help:      "1 when the engine is running on a stale catalog snapshot, 0 otherwise",
	})

	m.catalogRefreshLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_refresh_latency_milliseconds",
		Help:      "Histogram of catalog refresh latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_size",
		Help:      "Current number of pending profile refresh jobs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_capacity",
		Help:      "Configured capacity of the profile refresh queue",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_enqueue_errors_total",
		Help:      "Total number of refresh jobs dropped due to backpressure",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of profile refresh workers",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker errors",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "Histogram of HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current heap memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Histogram of average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// RecordSolveAccepted increments the accepted solves counter.
func RecordSolveAccepted() {
	globalManager.solvesAccepted.Inc()
}

// RecordSolveDuplicate increments the duplicate solves counter.
func RecordSolveDuplicate() {
	globalManager.solvesDuplicate.Inc()
}

// RecordSolveRejected increments the rejected solves counter for a reason.
func RecordSolveRejected(reason string) {
	globalManager.solvesRejected.WithLabelValues(reason).Inc()
}

// RecordProfileRecomputeLatency records profile recomputation latency in milliseconds.
func RecordProfileRecomputeLatency(latencyMs float64) {
	globalManager.profileRecomputeLatency.Observe(latencyMs)
}

// RecordLeaderboardUpsert increments the leaderboard upserts counter.
func RecordLeaderboardUpsert() {
	globalManager.leaderboardUpserts.Inc()
}

// RecordLeaderboardUpsertLatency records leaderboard upsert latency in milliseconds.
func RecordLeaderboardUpsertLatency(latencyMs float64) {
	globalManager.leaderboardUpsertLatency.Observe(latencyMs)
}

// RecordLeaderboardQueryLatency records leaderboard query latency in milliseconds.
func RecordLeaderboardQueryLatency(latencyMs float64) {
	globalManager.leaderboardQueryLatency.Observe(latencyMs)
}

// UpdateLeaderboardPlayers sets the current leaderboard player count.
func UpdateLeaderboardPlayers(count int) {
	globalManager.leaderboardPlayers.Set(float64(count))
}

// RecordRecommendationCacheHit increments the recommendation cache hit counter.
func RecordRecommendationCacheHit() {
	globalManager.recommendationCacheHits.Inc()
}

// RecordRecommendationCacheMiss increments the recommendation cache miss counter.
func RecordRecommendationCacheMiss() {
	globalManager.recommendationCacheMisses.Inc()
}

// RecordRecommendationLatency records recommendation scoring latency in milliseconds.
func RecordRecommendationLatency(latencyMs float64) {
	globalManager.recommendationLatency.Observe(latencyMs)
}

// RecordCatalogRefresh increments the successful catalog refresh counter.
func RecordCatalogRefresh() {
	globalManager.catalogRefreshes.Inc()
}

// RecordCatalogRefreshError increments the failed catalog refresh counter.
func RecordCatalogRefreshError() {
	globalManager.catalogRefreshErrors.Inc()
}

// UpdateCatalogChallenges sets the current catalog challenge count.
func UpdateCatalogChallenges(count int) {
	globalManager.catalogChallenges.Set(float64(count))
}

// UpdateCatalogDegraded flags whether the engine runs on a stale snapshot.
func UpdateCatalogDegraded(degraded bool) {
	if degraded {
		globalManager.catalogDegraded.Set(1)
		return
	}
	globalManager.catalogDegraded.Set(0)
}

// RecordCatalogRefreshLatency records catalog refresh latency in milliseconds.
func RecordCatalogRefreshLatency(latencyMs float64) {
	globalManager.catalogRefreshLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current refresh queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured refresh queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError increments the dropped refresh job counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the current heap memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records average GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
