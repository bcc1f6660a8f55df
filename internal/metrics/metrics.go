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
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localbazaar",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "localbazaar",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	ListingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "localbazaar",
		Name:      "listings_created_total",
		Help:      "Listings created by sellers.",
	})

	OrderStatus = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "localbazaar",
		Name:      "orders_status_total",
		Help:      "Orders entering each status, including creation as pending.",
	}, []string{"status"})

	ReportStatus = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "localbazaar",
		Name:      "reports_status_total",
		Help:      "Moderation decisions by resulting status and action.",
	}, []string{"status", "action"})

	ReconcileCorrections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "localbazaar",
		Name:      "reconcile_corrections_total",
		Help:      "User counter rows rewritten by reconciliation.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		ListingsCreated,
		OrderStatus,
		ReportStatus,
		ReconcileCorrections,
	)
}

// Middleware records request counts and latency labelled by matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil && status < 400 {
			status = fiber.StatusInternalServerError
		}
		route := c.Route().Path
		if route == "" || route == "/" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
