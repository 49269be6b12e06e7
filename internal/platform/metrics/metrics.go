// Package metrics exposes Prometheus counters for HTTP traffic and clinical
// calculations on a dedicated registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Calculation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder is what domain services use to count calculations and the bands
// of persisted assessments.
type Recorder interface {
	ObserveCalculation(kind, outcome string)
	ObserveBand(kind, band string)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveCalculation(string, string) {}
func (Nop) ObserveBand(string, string) {}

// Collector holds the unit's metrics.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	calculations *prometheus.CounterVec
	riskBands    *prometheus.CounterVec
}

// New registers every metric on a fresh registry, along with the Go runtime
// and process collectors.
func New(unit string) *Collector {
	constLabels := prometheus.Labels{"unit": unit}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "surgassist_http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status_code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "surgassist_http_request_duration_seconds",
				Help:        "Duration of HTTP requests in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"method", "route"},
		),
		calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "surgassist_calculations_total",
				Help:        "Clinical score calculations by kind and outcome",
				ConstLabels: constLabels,
			},
			[]string{"kind", "outcome"},
		),
		riskBands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "surgassist_risk_band_total",
				Help:        "Persisted assessments by kind and resulting band",
				ConstLabels: constLabels,
			},
			[]string{"kind", "band"},
		),
	}
	c.registry.MustRegister(
		c.httpRequests, c.httpDuration, c.calculations, c.riskBands,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) ObserveCalculation(kind, outcome string) {
	c.calculations.WithLabelValues(kind, outcome).Inc()
}

// ObserveBand counts a persisted assessment's band, e.g. a diabetic-foot risk
// category or a WHO discharge recommendation.
func (c *Collector) ObserveBand(kind, band string) {
	c.riskBands.WithLabelValues(kind, band).Inc()
}

// Middleware records request counts and latency keyed by the matched route.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			method := ctx.Request().Method
			c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			c.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
}
