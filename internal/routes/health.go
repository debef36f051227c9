package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds the readiness endpoint. A wallet service that
// cannot reach its database must not report healthy: transfers would accept
// requests they cannot settle.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		components := fiber.Map{}
		healthy := true

		if d.DB != nil {
			if err := d.DB.Ping(ctx); err != nil {
				components["postgres"] = err.Error()
				healthy = false
			} else {
				components["postgres"] = "ok"
			}
		}
		if d.Cache != nil {
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				components["redis"] = err.Error()
				healthy = false
			} else {
				components["redis"] = "ok"
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    components,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
