package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
//
// Every instance owns its registry, so tests and multiple servers in one
// process never collide on metric names.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Workspace metrics
	Nodes             prometheus.Gauge
	TabsOpen          prometheus.Gauge
	Mutations         *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Persistence metrics
	PersistWrites    *prometheus.CounterVec
	PersistFallbacks *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	TotalMutations    int64   `json:"total_mutations"`
	PersistFailures   int64   `json:"persist_failures"`
	Nodes             int64   `json:"nodes"`
	TabsOpen          int64   `json:"tabs_open"`
	ActiveConnections int64   `json:"active_connections"`
	AvgLatencyMs      float64 `json:"avg_latency_ms"`
	UptimeSeconds     float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webide_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webide_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webide_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webide_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Workspace metrics
		Nodes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "workspace_nodes",
				Help: "Number of nodes in the workspace tree",
			},
		),
		TabsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "workspace_tabs_open",
				Help: "Number of open editor tabs",
			},
		),
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_mutations_total",
				Help: "Total number of applied workspace mutations",
			},
			[]string{"op"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workspace_operation_duration_seconds",
				Help:    "Workspace operation duration in seconds, persistence included",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"op", "status"},
		),

		// Persistence metrics
		PersistWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_persist_writes_total",
				Help: "Total number of slot writes",
			},
			[]string{"slot", "status"},
		),
		PersistFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_persist_load_fallbacks_total",
				Help: "Slots replaced by defaults on load",
			},
			[]string{"slot", "reason"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "workspace_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "webide_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordMutation counts an applied workspace mutation
func (m *Metrics) RecordMutation(op string) {
	m.Mutations.WithLabelValues(op).Inc()
	m.mu.Lock()
	m.snapshot.TotalMutations++
	m.mu.Unlock()
}

// RecordOperation records how long a workspace operation took
func (m *Metrics) RecordOperation(op, status string, duration time.Duration) {
	m.OperationDuration.WithLabelValues(op, status).Observe(duration.Seconds())
}

// RecordPersistWrite counts a slot write
func (m *Metrics) RecordPersistWrite(slot, status string) {
	m.PersistWrites.WithLabelValues(slot, status).Inc()
	if status != "success" {
		m.mu.Lock()
		m.snapshot.PersistFailures++
		m.mu.Unlock()
	}
}

// RecordLoadFallback counts a slot that was replaced by its default on load
func (m *Metrics) RecordLoadFallback(slot, reason string) {
	m.PersistFallbacks.WithLabelValues(slot, reason).Inc()
}

// SetWorkspaceSize updates the node and tab gauges
func (m *Metrics) SetWorkspaceSize(nodes, tabs int) {
	m.Nodes.Set(float64(nodes))
	m.TabsOpen.Set(float64(tabs))
	m.mu.Lock()
	m.snapshot.Nodes = int64(nodes)
	m.snapshot.TabsOpen = int64(tabs)
	m.mu.Unlock()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}
