package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several handlers can live in one
// process (tests build one per app).
type Metrics struct {
	registry           *prometheus.Registry
	requestDuration    *prometheus.HistogramVec
	accessDenied       *prometheus.CounterVec
	rateGateRejections *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "classboard",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		accessDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "classboard",
			Name:      "access_denied_total",
			Help:      "Requests refused by the access policy, by reason.",
		}, []string{"reason"}),
		rateGateRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "classboard",
			Name:      "rate_gate_rejections_total",
			Help:      "Writes refused by a cooldown, by resource class.",
		}, []string{"class"}),
	}

	metrics.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.requestDuration,
		metrics.accessDenied,
		metrics.rateGateRejections,
	)
	return metrics
}

// Observe records the duration of every request under its route pattern so
// path parameters do not explode the label set.
func (metrics *Metrics) Observe(c *fiber.Ctx) error {
	started := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fiberErr *fiber.Error
	if err != nil {
		status = fiber.StatusInternalServerError
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}
	}

	route := "unmatched"
	if matched := c.Route(); matched != nil && matched.Path != "/" {
		route = matched.Path
	}
	metrics.requestDuration.
		WithLabelValues(c.Method(), route, strconv.Itoa(status)).
		Observe(time.Since(started).Seconds())
	return err
}

func (metrics *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{}))
}

func (metrics *Metrics) countAccessDenied(reason string) {
	metrics.accessDenied.WithLabelValues(reason).Inc()
}

func (metrics *Metrics) countRateGateRejection(class string) {
	metrics.rateGateRejections.WithLabelValues(class).Inc()
}
