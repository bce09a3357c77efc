package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/orderking/orderking_api/internal/auth"
)

// RegisterAuthRoutes wires the public authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, loginLimiter, forgotLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	if loginLimiter != nil {
		group.Post("/login", loginLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	if forgotLimiter != nil {
		group.Post("/forgot-password", forgotLimiter, h.ForgotPassword)
	} else {
		group.Post("/forgot-password", h.ForgotPassword)
	}
	group.Post("/reset-password", h.ResetPassword)
	group.Post("/verify-reset-token", h.VerifyResetToken)
}
