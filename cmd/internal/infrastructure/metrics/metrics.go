// Package metrics owns a private Prometheus registry with the counters of the
// directory service.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "setores"

// Unlock attempt results.
const (
	UnlockOK      = "ok"
	UnlockDenied  = "denied"
	UnlockLimited = "limited"
)

type Metrics struct {
	registry *prometheus.Registry

	unlockAttempts  *prometheus.CounterVec
	persistWrites   *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		unlockAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unlock_attempts_total",
			Help:      "Admin unlock attempts by result.",
		}, []string{"result"}),
		persistWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "override_writes_total",
			Help:      "Override file writes by result.",
		}, []string{"result"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Successful directory mutations by operation.",
		}, []string{"operation"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.unlockAttempts,
		m.persistWrites,
		m.mutations,
		m.requests,
		m.requestDuration,
	)
	return m
}

// TrackRecords exposes the current number of setores through count.
func (m *Metrics) TrackRecords(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "records",
		Help:      "Setores currently indexed.",
	}, func() float64 { return float64(count()) }))
}

func (m *Metrics) UnlockAttempt(result string) {
	m.unlockAttempts.WithLabelValues(result).Inc()
}

// PersistResult matches the OnPersist hook of the override persister.
func (m *Metrics) PersistResult(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.persistWrites.WithLabelValues(result).Inc()
}

func (m *Metrics) Mutation(operation string) {
	m.mutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records count and latency per route template, so /api/setores/ti
// and /api/setores/rh share one series.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			// echo's error handler writes the response after this returns
			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			m.requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
