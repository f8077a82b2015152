package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitload/internal/metrics"
)

// Metrics records request counts and latency for the status API.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		metrics.HTTPRequests.WithLabelValues(
			c.Method(), path, strconv.Itoa(c.Response().StatusCode()),
		).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Method(), path).
			Observe(time.Since(start).Seconds())
		return err
	}
}
