package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pursehub/pursehub/internal/auth"
)

// RegisterAuthRoutes wires login, token refresh and logout. Login optionally
// sits behind the rate limiter so credential stuffing is throttled.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")

	login := []fiber.Handler{h.Login}
	if rateLimiter != nil {
		login = []fiber.Handler{rateLimiter, h.Login}
	}
	group.Post("/login", login...)
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", h.Logout)
}
