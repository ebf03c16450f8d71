// Package metrics exposes Prometheus collectors for the HTTP layer and
// business events.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babybliss_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "babybliss_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babybliss_bookings_created_total",
		Help: "Bookings created by source and package",
	}, []string{"source", "package"})

	BookingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babybliss_bookings_rejected_total",
		Help: "Public booking requests rejected by reason",
	}, []string{"reason"})

	ArchiveOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babybliss_archive_operations_total",
		Help: "Archive, restore and purge operations by kind",
	}, []string{"operation", "kind"})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babybliss_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	EmailsQueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babybliss_emails_queued_total",
		Help: "Customer emails queued by template",
	}, []string{"template"})
)

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
