// Package metrics exposes the service's Prometheus collectors. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	readingsTotal     *prometheus.CounterVec
	violationsTotal   prometheus.Counter
	mailJobsTotal     *prometheus.CounterVec
	triggersTotal     *prometheus.CounterVec
	refillSkipped     *prometheus.CounterVec
}

// New registers every collector on a fresh registry, plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		readingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensor_readings_ingested_total",
			Help: "Sensor values written to the realtime store by sensor and source.",
		}, []string{"sensor", "source"}),
		violationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "threshold_violations_created_total",
			Help: "Threshold violation records created.",
		}),
		mailJobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mail_jobs_total",
			Help: "Mail jobs written to the queue by alert kind and result.",
		}, []string{"kind", "result"}),
		triggersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triggers_handled_total",
			Help: "Trigger events handled by kind and result.",
		}, []string{"kind", "result"}),
		refillSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "refill_alerts_skipped_total",
			Help: "Refill triggers that did not alert, by reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.readingsTotal,
		m.violationsTotal,
		m.mailJobsTotal,
		m.triggersTotal,
		m.refillSkipped,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request count and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ReadingIngested(sensor, source string) {
	if m == nil {
		return
	}
	m.readingsTotal.WithLabelValues(sensor, source).Inc()
}

func (m *Metrics) ViolationCreated() {
	if m == nil {
		return
	}
	m.violationsTotal.Inc()
}

// MailJobs records the outcome of one fan-out.
func (m *Metrics) MailJobs(kind string, written, failed int) {
	if m == nil {
		return
	}
	m.mailJobsTotal.WithLabelValues(kind, "written").Add(float64(written))
	m.mailJobsTotal.WithLabelValues(kind, "failed").Add(float64(failed))
}

func (m *Metrics) TriggerHandled(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.triggersTotal.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) RefillSkipped(reason string) {
	if m == nil {
		return
	}
	m.refillSkipped.WithLabelValues(reason).Inc()
}
