package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/orderking/orderking_api/internal/auth"
)

// JWTAuth returns a middleware that validates bearer session tokens and
// stores the subject in locals. Missing, malformed, badly-signed and expired
// tokens all produce the same response; only the log line tells them apart.
func JWTAuth(tokens *auth.TokenManager, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "invalid or expired token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "expired"
			}
			logger.Info("session token rejected", slog.String("reason", reason), slog.String("path", c.Path()))
			return fiber.NewError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals("user_id", userID.String())
		return c.Next()
	}
}
