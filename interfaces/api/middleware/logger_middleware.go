package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tablostudio/tablo-api/pkg/logger"
)

// LoggerMiddleware logs each request with latency and status
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logger.API("request", "Request handled", map[string]interface{}{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start).String(),
			"ip":      c.IP(),
		})

		return err
	}
}
