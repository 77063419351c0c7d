package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetrics records request counts and latencies.
type HTTPMetrics interface {
	RequestStarted() func()
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics observes every request under its route pattern so that path
// parameters do not explode label cardinality. Unmatched paths are recorded
// with an empty route.
func Metrics(m HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		done := m.RequestStarted()
		start := time.Now()

		c.Next()

		done()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
