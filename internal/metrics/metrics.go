// Package metrics exposes Prometheus instrumentation for the shop.
//
//	app.Use(metrics.Middleware())
//	app.Get("/metrics", metrics.Handler())
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flowerstream",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowerstream",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// CheckoutSteps counts checkout state transitions, labelled by the state reached.
	CheckoutSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowerstream",
			Subsystem: "checkout",
			Name:      "steps_total",
			Help:      "Checkout flow states reached.",
		},
		[]string{"state"},
	)

	// CheckoutFailures counts aborted checkouts by reason.
	CheckoutFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowerstream",
			Subsystem: "checkout",
			Name:      "failures_total",
			Help:      "Checkouts aborted, by reason.",
		},
		[]string{"reason"}, // empty_cart | stock | delivery | payment | unpaid | fulfillment | refund
	)

	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flowerstream",
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders persisted after a paid checkout.",
	})

	OrderRevenue = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flowerstream",
		Subsystem: "orders",
		Name:      "revenue_base_total",
		Help:      "Sum of order totals in the base currency.",
	})
)

var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(
		RequestDuration,
		RequestTotal,
		CheckoutSteps,
		CheckoutFailures,
		OrdersPlaced,
		OrderRevenue,
	)
}

// Middleware records duration and count per route pattern, not raw path, to keep
// label cardinality bounded.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		code := strconv.Itoa(status)
		RequestDuration.WithLabelValues(c.Method(), route, code).Observe(time.Since(start).Seconds())
		RequestTotal.WithLabelValues(c.Method(), route, code).Inc()
		return err
	}
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
