package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medeiros-dev/push-notification-service/internal/observability/metrics"
)

// RequestMetrics records request count and latency per route, skipping /metrics.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}
		if endpoint == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		metrics.HttpRequestsTotal.WithLabelValues(endpoint, http.StatusText(status)).Inc()
		metrics.HttpRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}
