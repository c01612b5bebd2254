package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetrics is gin middleware recording request counts and latency.
// Labels use the route pattern, not the raw URL, so per-origin query
// strings cannot explode cardinality; requests that matched no route
// are folded into a single "unmatched" label.
//
// Routes named in longLived are counted but excluded from the latency
// histogram: the websocket channel stays open for the life of the
// embedding page, and observing connection lifetimes as request
// latency would drown the real request distribution.
func HTTPMetrics(longLived ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(longLived))
	for _, route := range longLived {
		skip[route] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()

		if !skip[route] {
			HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		}
	}
}
