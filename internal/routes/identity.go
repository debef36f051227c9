package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pursehub/pursehub/internal/identity"
)

// RegisterIdentityRoutes wires user registration.
func RegisterIdentityRoutes(r fiber.Router, ids *identity.Service, logger *slog.Logger) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := ids.Register(c.UserContext(), identity.Credentials{Email: req.Email, Password: req.Password})
		if err != nil {
			if errors.Is(err, identity.ErrEmailTaken) {
				return fiber.NewError(http.StatusConflict, err.Error())
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if logger != nil {
			logger.Info("identity.register completed",
				slog.String("user_id", user.ID),
				slog.String("email", user.Email),
				slog.Int("status", http.StatusCreated),
			)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"user_id": user.ID,
			"email":   user.Email,
		})
	})
}
