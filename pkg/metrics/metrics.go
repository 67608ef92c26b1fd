package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyhub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	gatewayOrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_gateway_orders_total",
			Help: "Payment gateway order creations by outcome.",
		},
		[]string{"outcome"},
	)

	enrollmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_enrollments_total",
			Help: "Course enrollment attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// Middleware records request counts and latency for every route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		requestsTotal.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		requestDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}

// ObserveGatewayOrder records the outcome of a gateway order creation.
func ObserveGatewayOrder(ok bool) {
	gatewayOrdersTotal.WithLabelValues(outcome(ok)).Inc()
}

// ObserveEnrollment records the outcome of a single course enrollment.
func ObserveEnrollment(ok bool) {
	enrollmentsTotal.WithLabelValues(outcome(ok)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
