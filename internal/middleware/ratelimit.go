package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// EmailRateLimit limits attempts per email (falling back to client IP) using
// Redis. Applied to login to slow brute-force guessing and to forgot-password
// to stop reset-email flooding. Fails open when the cache is unavailable.
func EmailRateLimit(cache *redis.Client, prefix string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			Email string `json:"email"`
		}
		_ = c.BodyParser(&req)
		subject := strings.TrimSpace(req.Email)
		if subject == "" {
			subject = c.IP()
		}
		key := "rl:" + prefix + ":" + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, window)
		}
		if cnt > int64(max) {
			return fiber.NewError(http.StatusTooManyRequests, "too many attempts, try again later")
		}
		return c.Next()
	}
}
