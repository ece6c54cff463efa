package middleware

import (
	"strconv"
	"time"

	"smartfarm/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latency by route pattern.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		route := c.Route().Path
		if status == fiber.StatusNotFound && route == "/" {
			// unmatched paths would otherwise explode the label space
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
