package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orclabs/elt-orchestrator/internal/metrics"
)

// Metrics observes latency, volume, and concurrency per route. The public
// liveness endpoint is excluded: probes fire every few seconds and would
// dominate the histograms.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		if path == "/health" {
			c.Next()
			return
		}

		metrics.HTTPRequestsInFlight.Inc()
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()
		metrics.HTTPRequestsInFlight.Dec()

		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		metrics.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	}
}
