package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/metrics"
)

// Metrics records request counts and latency per route template, so
// /api/media/1 and /api/media/2 share one series.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := c.Route().Path
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Method(), path, strconv.Itoa(status), time.Since(start).Seconds())
		return err
	}
}
