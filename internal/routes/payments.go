package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pursehub/pursehub/internal/payments"
)

// RegisterTransactionRoutes wires transfer endpoints.
func RegisterTransactionRoutes(r fiber.Router, h *payments.Handler) {
	r.Get("/transactions", h.List)
	r.Post("/transactions", h.Create)
	r.Get("/transactions/:id", h.Get)
}
