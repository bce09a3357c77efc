package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/orderking/orderking_api/internal/qr"
)

// RegisterQRRoutes wires the verification-code endpoint behind the JWT gate.
func RegisterQRRoutes(r fiber.Router, h *qr.Handler, jwtmw fiber.Handler) {
	group := r.Group("/qr", jwtmw)
	group.Get("/current", h.Current)
}
