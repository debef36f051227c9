package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pursehub/pursehub/internal/auth"
	"github.com/pursehub/pursehub/internal/config"
)

// JWTAuth returns a middleware that validates HS256 access tokens and stores
// the authenticated principal in the request locals.
func JWTAuth(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.ParseAndVerifyHS256(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		if auth.Expired(claims) {
			return fiber.NewError(http.StatusUnauthorized, "token expired")
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", sub)
		return c.Next()
	}
}
