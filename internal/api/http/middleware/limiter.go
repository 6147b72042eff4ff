package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/sapan_backend/config"
)

// NewLimiterWithRedis rate limits per client IP with counters shared in Redis.
func NewLimiterWithRedis(rdb *redis.Client, rl config.RateLimit) fiber.Handler {
	maxReq := rl.Max
	if maxReq <= 0 {
		maxReq = 20
	}
	exp := time.Duration(rl.ExpirationSeconds) * time.Second
	if exp <= 0 {
		exp = 30 * time.Second
	}

	return limiter.New(limiter.Config{
		Storage: fiberredis.NewFromConnection(rdb),

		// sliding window
		Max:               maxReq,
		Expiration:        exp,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests"})
		},
	})
}
