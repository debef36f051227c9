package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pursehub/pursehub/internal/payments"
	"github.com/pursehub/pursehub/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, p *payments.Handler) {
	r.Get("/wallets", h.List)
	r.Post("/wallets", h.Create)
	r.Get("/wallets/:name", h.Get)
	r.Delete("/wallets/:name", h.Delete)
	r.Get("/wallets/:name/transactions", p.ListForWallet)
}
