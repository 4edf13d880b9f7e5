package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the HTTP request collectors of the service.
type Metrics struct {
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewMetrics creates the request collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "product_service_requests_total",
				Help: "Total number of requests to product service",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "product_service_request_duration_seconds",
				Help:    "Duration of product service requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
	reg.MustRegister(m.requestCounter, m.requestLatency)
	return m
}

// Handler records a count and a latency observation per request. Requests are
// labelled with the matched route pattern, not the raw path, to bound cardinality.
func (m *Metrics) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The app's error handler has not written the response yet.
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		endpoint := c.Route().Path
		m.requestCounter.WithLabelValues(c.Method(), endpoint, strconv.Itoa(status)).Inc()
		m.requestLatency.WithLabelValues(c.Method(), endpoint).Observe(time.Since(start).Seconds())

		return err
	}
}
