// Package metrics exposes Prometheus instrumentation for the unit service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bobox/internal/unit"
)

const namespace = "bobox"

// StatusCounter is satisfied by *unit.Store.
type StatusCounter interface {
	CountByStatus() map[unit.Status]int
}

type Metrics struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New builds a private registry. counter may be nil, in which case the
// per-status unit gauge is not exported.
func New(counter StatusCounter) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_transitions_total",
			Help:      "Status transition requests by source status, target status and outcome.",
		}, []string{"from", "to", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.transitions,
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if counter != nil {
		reg.MustRegister(newUnitsCollector(counter))
	}
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordTransition implements unit.TransitionRecorder.
func (m *Metrics) RecordTransition(from, to unit.Status, outcome string) {
	m.transitions.WithLabelValues(string(from), string(to), outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency keyed by chi route pattern,
// so /api/units/{id} is one series regardless of id.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type unitsCollector struct {
	desc    *prometheus.Desc
	counter StatusCounter
}

func newUnitsCollector(counter StatusCounter) *unitsCollector {
	return &unitsCollector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "units"),
			"Units currently in each status.",
			[]string{"status"}, nil,
		),
		counter: counter,
	}
}

func (c *unitsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *unitsCollector) Collect(ch chan<- prometheus.Metric) {
	for status, n := range c.counter.CountByStatus() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), string(status))
	}
}
