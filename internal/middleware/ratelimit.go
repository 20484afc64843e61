package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware counts requests per path and caller in Redis. It
// falls back to fiber's in-process limiter when rdb is nil.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	if rdb == nil {
		return limiter.New(limiter.Config{
			Max:          limit,
			Expiration:   window,
			KeyGenerator: rateLimitKey,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
			},
		})
	}

	return func(c *fiber.Ctx) error {
		key := "rl:" + rateLimitKey(c)

		ctx := context.Background()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			return c.Next() // fail open
		}

		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}

		return c.Next()
	}
}

// rateLimitKey prefers the wallet over the IP once the caller is
// authenticated.
func rateLimitKey(c *fiber.Ctx) string {
	if user := GetUserID(c); user != "" {
		return fmt.Sprintf("%s:%s", c.Path(), user)
	}
	return fmt.Sprintf("%s:%s", c.Path(), c.IP())
}
