package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig describes one limiter tier. Requests are keyed by client
// IP; Storage may be shared across tiers and instances (redis) or local
// (memory).
type RateLimitConfig struct {
	Max     int
	Window  time.Duration
	Storage fiber.Storage
	Name    string
}

// RateLimit returns a limiter that rejects over-budget clients with the
// standard JSON error shape instead of fiber's default plain text.
func RateLimit(config RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.Max,
		Expiration: config.Window,
		Storage:    config.Storage,
		KeyGenerator: func(ctx *fiber.Ctx) string {
			return config.Name + ":" + ctx.IP()
		},
		LimitReached: func(ctx *fiber.Ctx) error {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		},
	})
}
