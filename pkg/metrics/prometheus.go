// Package metrics provides Prometheus metrics for the aether services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the aether services.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Ledger Metrics - What really matters for balances
	transactionsApplied   prometheus.Counter
	transactionsIgnored   prometheus.Counter
	transactionsDuplicate prometheus.Counter
	transactionsRejected  *prometheus.CounterVec
	accountsTotal         prometheus.Gauge
	applyLatency          prometheus.Histogram
	queryLatency          prometheus.Histogram
	genesisAccounts       prometheus.Gauge

	// Oracle Metrics
	analysesTotal     *prometheus.CounterVec
	downstreamErrors  *prometheus.CounterVec
	downstreamLatency *prometheus.HistogramVec
	rewardFex         prometheus.Histogram
	rateLimitRejected prometheus.Counter
	sentimentCompound prometheus.Histogram

	// Weaver Metrics - Queue and worker performance
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	tunings            prometheus.Counter
	workerLatency      prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

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
		namespace:        "aether",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.transactionsApplied = m.counter("ledger_transactions_applied_total", "Total number of reward transactions applied to balances")
	m.transactionsIgnored = m.counter("ledger_transactions_ignored_total", "Total number of transactions with an unrecognized type")
	m.transactionsDuplicate = m.counter("ledger_transactions_duplicate_total", "Total number of transactions suppressed by tx_id")
	m.transactionsRejected = m.counterVec("ledger_transactions_rejected_total", "Total number of transactions rejected by validation", "reason")
	m.accountsTotal = m.gauge("ledger_accounts_total", "Total number of accounts held by the ledger")
	m.applyLatency = m.histogram("ledger_apply_latency_milliseconds", "Histogram of transaction apply latency in milliseconds", m.histogramBuckets)
	m.queryLatency = m.histogram("ledger_query_latency_milliseconds", "Histogram of account read latency in milliseconds", m.histogramBuckets)
	m.genesisAccounts = m.gauge("ledger_genesis_accounts", "Number of accounts seeded from the genesis file")

	m.analysesTotal = m.counterVec("oracle_analyses_total", "Total number of insight analyses by skill and outcome", "skill", "outcome")
	m.downstreamErrors = m.counterVec("oracle_downstream_errors_total", "Total number of failed downstream calls by target and kind", "target", "kind")
	m.downstreamLatency = m.histogramVec("oracle_downstream_latency_milliseconds", "Downstream call latency in milliseconds", "target")
	m.rewardFex = m.histogram("oracle_reward_fex", "Distribution of fex rewards granted", []float64{0.5, 1, 2, 5, 10, 25, 50, 100})
	m.rateLimitRejected = m.counter("oracle_rate_limited_total", "Total number of analyses rejected by the per-account rate limiter")
	m.sentimentCompound = m.histogram("oracle_sentiment_compound", "Distribution of VADER compound sentiment scores", []float64{-0.75, -0.5, -0.25, 0, 0.25, 0.5, 0.75, 1})

	m.queueSize = m.gauge("weaver_queue_size", "Current size of the tune queue (backlog indicator)")
	m.queueCapacity = m.gauge("weaver_queue_capacity", "Maximum capacity of the tune queue")
	m.queueEnqueueRate = m.counter("weaver_queue_enqueue_total", "Total number of tune events enqueued")
	m.queueDequeueRate = m.counter("weaver_queue_dequeue_total", "Total number of tune events dequeued")
	m.queueEnqueueErrors = m.counter("weaver_queue_enqueue_errors_total", "Total number of tune events dropped at enqueue")
	m.workerCount = m.gauge("weaver_worker_count", "Current number of tune workers")
	m.tunings = m.counter("weaver_tunings_total", "Total number of tune events processed")
	m.workerLatency = m.histogram("weaver_worker_latency_milliseconds", "Tune processing latency in milliseconds", m.histogramBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by HTTP endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// Ledger Metrics Functions.

// RecordTransactionApplied increments the applied transactions counter.
func RecordTransactionApplied() { globalManager.transactionsApplied.Inc() }

// RecordTransactionIgnored increments the ignored transactions counter.
func RecordTransactionIgnored() { globalManager.transactionsIgnored.Inc() }

// RecordTransactionDuplicate increments the duplicate transactions counter.
func RecordTransactionDuplicate() { globalManager.transactionsDuplicate.Inc() }

// RecordTransactionRejected increments the rejected transactions counter.
func RecordTransactionRejected(reason string) {
	globalManager.transactionsRejected.WithLabelValues(reason).Inc()
}

// UpdateAccountsTotal sets the number of accounts.
func UpdateAccountsTotal(count int) { globalManager.accountsTotal.Set(float64(count)) }

// RecordApplyLatency records transaction apply latency in milliseconds.
func RecordApplyLatency(latencyMs float64) { globalManager.applyLatency.Observe(latencyMs) }

// RecordQueryLatency records account read latency in milliseconds.
func RecordQueryLatency(latencyMs float64) { globalManager.queryLatency.Observe(latencyMs) }

// UpdateGenesisAccounts sets the number of seeded accounts.
func UpdateGenesisAccounts(count int) { globalManager.genesisAccounts.Set(float64(count)) }

// Oracle Metrics Functions.

// RecordAnalysis counts an analysis for skill with the given outcome.
func RecordAnalysis(skill, outcome string) {
	globalManager.analysesTotal.WithLabelValues(skill, outcome).Inc()
}

// RecordDownstreamError counts a failed call to target classified by kind.
func RecordDownstreamError(target, kind string) {
	globalManager.downstreamErrors.WithLabelValues(target, kind).Inc()
}

// RecordDownstreamLatency records the latency of a call to target.
func RecordDownstreamLatency(target string, latencyMs float64) {
	globalManager.downstreamLatency.WithLabelValues(target).Observe(latencyMs)
}

// RecordReward records the fex reward granted by an analysis.
func RecordReward(fex float64) { globalManager.rewardFex.Observe(fex) }

// RecordSentiment records a compound sentiment score.
func RecordSentiment(compound float64) { globalManager.sentimentCompound.Observe(compound) }

// RecordRateLimited increments the rate limiter rejection counter.
func RecordRateLimited() { globalManager.rateLimitRejected.Inc() }

// Weaver Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueueRate.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeueRate.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordTuning increments the processed tunings counter.
func RecordTuning() { globalManager.tunings.Inc() }

// RecordWorkerLatency records tune processing latency in milliseconds.
func RecordWorkerLatency(latencyMs float64) { globalManager.workerLatency.Observe(latencyMs) }

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error for an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the memory usage.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the custom registry for HTTP handler setup.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
