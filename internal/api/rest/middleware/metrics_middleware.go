package middleware

import (
	"time"

	"github.com/Dhoini/course-marketplace/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware записывает длительность запросов по шаблону маршрута
func MetricsMiddleware(m metrics.MarketplaceMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
