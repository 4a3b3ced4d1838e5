package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by the API, the throttle path
// and the notice relay.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDuration    *prometheus.HistogramVec
	messageEvaluations     *prometheus.CounterVec
	noticesDispatchedTotal *prometheus.CounterVec
	noticesDeliveredTotal  prometheus.Counter
	noticesRejectedTotal   *prometheus.CounterVec
	storeFailuresTotal     *prometheus.CounterVec
	workerInflight         prometheus.Gauge
}

const namespace = "slowmode"

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		messageEvaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "message_evaluations_total",
				Help:      "Total number of message evaluations grouped by decision.",
			},
			[]string{"decision"},
		),
		noticesDispatchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notices_dispatched_total",
				Help:      "Total number of wait notices handed to a relay transport.",
			},
			[]string{"transport", "result"},
		),
		noticesDeliveredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notices_delivered_total",
				Help:      "Total number of wait notices delivered to users.",
			},
		),
		noticesRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notices_rejected_total",
				Help:      "Total number of wait notices the consumer refused or failed to deliver.",
			},
			[]string{"reason"},
		),
		storeFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_failures_total",
				Help:      "Total number of swallowed storage failures by operation.",
			},
			[]string{"operation"},
		),
		workerInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "worker_inflight",
				Help:      "Current number of notices being delivered by queue workers.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.messageEvaluations,
		m.noticesDispatchedTotal,
		m.noticesDeliveredTotal,
		m.noticesRejectedTotal,
		m.storeFailuresTotal,
		m.workerInflight,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	if m == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

// IncEvaluation counts one decision: "allowed", "denied" or "unthrottled".
func (m *Metrics) IncEvaluation(decision string) {
	if m == nil {
		return
	}
	m.messageEvaluations.WithLabelValues(normalizeLabel(decision)).Inc()
}

func (m *Metrics) IncNoticeDispatched(transport string, result string) {
	if m == nil {
		return
	}
	m.noticesDispatchedTotal.WithLabelValues(normalizeLabel(transport), normalizeLabel(result)).Inc()
}

func (m *Metrics) IncNoticeDelivered() {
	if m == nil {
		return
	}
	m.noticesDeliveredTotal.Inc()
}

func (m *Metrics) IncNoticeRejected(reason string) {
	if m == nil {
		return
	}
	m.noticesRejectedTotal.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *Metrics) IncStoreFailure(operation string) {
	if m == nil {
		return
	}
	m.storeFailuresTotal.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *Metrics) IncWorkerInFlight() {
	if m == nil {
		return
	}
	m.workerInflight.Inc()
}

func (m *Metrics) DecWorkerInFlight() {
	if m == nil {
		return
	}
	m.workerInflight.Dec()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
