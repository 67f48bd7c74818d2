// FILE: internal/pkg/serverutils/rate_limiter.go
package serverutils

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware caps requests per caller over a sliding window using a
// Redis counter. Keys by user_id when JwtMiddleware ran first, else by IP.
// Fails open when Redis is unreachable.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		caller, _ := ctx.Locals("user_id").(string)
		if caller == "" {
			caller = ctx.IP()
		}
		key := fmt.Sprintf("ratelimit:%s:%s", ctx.Path(), caller)

		count, err := rdb.Incr(ctx.Context(), key).Result()
		if err != nil {
			log.Printf("[WARN] Rate limiter unavailable: %v", err)
			return ctx.Next()
		}
		if count == 1 {
			rdb.Expire(ctx.Context(), key, window)
		}

		if count > int64(limit) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(429, "Too many requests, slow down"))
		}

		return ctx.Next()
	}
}
