// Package metrics holds the Prometheus collectors for the API and workers.
// All methods are safe on a nil *Metrics so components can run without it.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry and every collector registered on it.
type Metrics struct {
	registry *prometheus.Registry

	ordersCreated   prometheus.Counter
	orderFailures   *prometheus.CounterVec
	exportRuns      *prometheus.CounterVec
	exportDocuments prometheus.Counter
	exportDuration  prometheus.Histogram
	renderDuration  prometheus.Histogram
	notifications   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders committed to the database",
		}),
		orderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_create_failures_total",
			Help: "Rejected or aborted order submissions",
		}, []string{"reason"}),
		exportRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "export_runs_total",
			Help: "Bulk export runs by outcome",
		}, []string{"result"}),
		exportDocuments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "export_documents_total",
			Help: "Documents rendered into export archives",
		}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "export_duration_seconds",
			Help:    "Wall time of a bulk export run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "render_duration_seconds",
			Help:    "Time to render a single order document",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Order confirmation deliveries by outcome",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ordersCreated,
		m.orderFailures,
		m.exportRuns,
		m.exportDocuments,
		m.exportDuration,
		m.renderDuration,
		m.notifications,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// OrderFailed records a rejected submission; reason is "validation" or "persistence".
func (m *Metrics) OrderFailed(reason string) {
	if m == nil {
		return
	}
	m.orderFailures.WithLabelValues(reason).Inc()
}

// ExportFinished records one export run.
func (m *Metrics) ExportFinished(result string, documents int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.exportRuns.WithLabelValues(result).Inc()
	m.exportDocuments.Add(float64(documents))
	m.exportDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) DocumentRendered(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.renderDuration.Observe(elapsed.Seconds())
}

// Notification records a delivery attempt outcome: "sent", "retry",
// "failed" or "enqueue_failed".
func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
