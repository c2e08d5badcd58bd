package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/fulfillment/response"
)

// ErrorHandler answers webhook failures with the fallback reply and HTTP 200
// so the platform always gets something it can render.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		fields := map[string]interface{}{
			"path":   c.Path(),
			"method": c.Method(),
			"status": code,
			"error":  err.Error(),
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("Request failed", fields)
		} else {
			log.Warn("Request rejected", fields)
		}

		if c.Path() == WebhookPath {
			return writeJSON(c, response.FallbackJSON())
		}
		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

// RateLimit sheds webhook load above rps with a token bucket. rps <= 0
// disables it.
func RateLimit(rps float64, burst int) fiber.Handler {
	if rps <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			return fiber.ErrTooManyRequests
		}
		return c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.Debug("HTTP request", map[string]interface{}{
			"method":    c.Method(),
			"path":      c.Path(),
			"status":    c.Response().StatusCode(),
			"latencyMs": time.Since(start).Milliseconds(),
		})
		return err
	}
}
