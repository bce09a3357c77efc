package qr

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler serves the current verification code to authenticated clients.
type Handler struct {
	broadcaster *Broadcaster
}

// NewHandler wires the QR endpoint to the broadcaster.
func NewHandler(b *Broadcaster) *Handler {
	return &Handler{broadcaster: b}
}

// Current returns the rotating code. The route must sit behind the JWT
// middleware; this handler itself never sees unauthenticated traffic.
func (h *Handler) Current(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"uuid": h.broadcaster.Current()})
}
