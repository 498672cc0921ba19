package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const (
	defaultRefreshInterval    = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	constLabels      map[string]string
	registry         *prometheus.Registry

	// Orchestrator
	cycles            *prometheus.CounterVec
	cycleDuration     prometheus.Histogram
	generateDuration  prometheus.Histogram
	publishErrors     *prometheus.CounterVec
	triggersRejected  *prometheus.CounterVec
	orchestratorState prometheus.Gauge
	selectedPositions prometheus.Gauge
	avgSalary         prometheus.Gauge
	datasetSize       *prometheus.GaugeVec

	// Trigger queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueWait        prometheus.Histogram

	// Views
	streamSubscribers prometheus.Gauge
	streamDropped     prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorByComponent    *prometheus.CounterVec
	errorByEndpoint     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Without a registry option a fresh
// registry is used.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "jobmarket",
		subsystem:        "dashboard",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		refreshInterval:  defaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

// Registry returns the registry the manager registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.cycles = auto.NewCounterVec(m.counter("cycles_total", "Generation cycles completed, by trigger reason"), []string{"reason"})
	m.cycleDuration = auto.NewHistogram(m.histogram("cycle_duration_milliseconds", "Full cycle latency from dequeue to last publication", m.histogramBuckets))
	m.generateDuration = auto.NewHistogram(m.histogram("generate_duration_milliseconds", "Time spent running every generator for one snapshot", m.histogramBuckets))
	m.publishErrors = auto.NewCounterVec(m.counter("publish_errors_total", "Sink failures while publishing a dataset"), []string{"kind"})
	m.triggersRejected = auto.NewCounterVec(m.counter("triggers_rejected_total", "Triggers that did not produce a cycle"), []string{"reason"})
	m.orchestratorState = auto.NewGauge(m.gauge("orchestrator_state", "Current orchestrator state (0 idle, 1 generating, 2 publishing)"))
	m.selectedPositions = auto.NewGauge(m.gauge("selected_positions", "Positions selected in the current filter"))
	m.avgSalary = auto.NewGauge(m.gauge("avg_salary", "Average salary of the current filter"))
	m.datasetSize = auto.NewGaugeVec(m.gauge("dataset_size", "Number of records in the last published dataset"), []string{"kind"})

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Triggers waiting for the orchestrator"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum pending triggers"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Pending triggers over capacity"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueued_total", "Triggers accepted by the queue"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeued_total", "Triggers taken by the orchestrator"))
	m.queueWait = auto.NewHistogram(m.histogram("queue_wait_milliseconds", "Time a trigger waited before its cycle started", m.histogramBuckets))

	m.streamSubscribers = auto.NewGauge(m.gauge("stream_subscribers", "Connected event-stream clients"))
	m.streamDropped = auto.NewCounter(m.counter("stream_dropped_total", "Stream messages dropped for slow clients"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.errorByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})
	m.errorByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total", "Errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}))
}

// RecordCycle counts a completed cycle and its latency.
func RecordCycle(reason string, latencyMs float64) {
	globalManager.cycles.WithLabelValues(reason).Inc()
	globalManager.cycleDuration.Observe(latencyMs)
}

// RecordGenerateLatency records the time spent generating one bundle.
func RecordGenerateLatency(latencyMs float64) {
	globalManager.generateDuration.Observe(latencyMs)
}

// RecordPublishError counts a sink failure for kind.
func RecordPublishError(kind string) {
	globalManager.publishErrors.WithLabelValues(kind).Inc()
}

// RecordTriggerRejected counts a trigger that did not run, e.g. invalid or backpressure.
func RecordTriggerRejected(reason string) {
	globalManager.triggersRejected.WithLabelValues(reason).Inc()
}

// UpdateOrchestratorState sets the state gauge.
func UpdateOrchestratorState(state int) {
	globalManager.orchestratorState.Set(float64(state))
}

// UpdateFilter publishes the shape of the current filter.
func UpdateFilter(selected int, avgSalary float64) {
	globalManager.selectedPositions.Set(float64(selected))
	globalManager.avgSalary.Set(avgSalary)
}

// UpdateDatasetSize sets the record count of the last dataset of kind.
func UpdateDatasetSize(kind string, size int) {
	globalManager.datasetSize.WithLabelValues(kind).Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the pending trigger count and utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter and observes the wait time.
func RecordQueueDequeue(waitMs float64) {
	globalManager.queueDequeued.Inc()
	globalManager.queueWait.Observe(waitMs)
}

// UpdateStreamSubscribers sets the connected stream client count.
func UpdateStreamSubscribers(count int) {
	globalManager.streamSubscribers.Set(float64(count))
}

// RecordStreamDropped counts a message dropped for a slow client.
func RecordStreamDropped() {
	globalManager.streamDropped.Inc()
}

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
	globalManager.errorByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMetrics samples memory, goroutine and GC figures.
func UpdateSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.Alloc))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		globalManager.systemGCPauseTime.Observe(float64(ms.PauseTotalNs) / float64(ms.NumGC) / nanosecondsPerMillisecond)
	}
}

// RunSystemCollector samples system metrics every refresh interval until ctx ends.
func RunSystemCollector(ctx context.Context) {
	ticker := time.NewTicker(globalManager.refreshInterval)
	defer ticker.Stop()
	UpdateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			UpdateSystemMetrics()
		}
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Value returns the current value of a gauge or counter sample in the global
// registry whose labels include every pair in labels.
func Value(name string, labels map[string]string) (float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return 0, err
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if !hasLabels(metric, labels) {
				continue
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue(), nil
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue(), nil
			case metric.GetHistogram() != nil:
				return float64(metric.GetHistogram().GetSampleCount()), nil
			}
		}
	}
	return 0, ErrMetricNotFound
}

func hasLabels(metric *dto.Metric, want map[string]string) bool {
	for k, v := range want {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == k && lp.GetValue() == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
