package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

type walletResponse struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	OwnerID    string          `json:"owner_id"`
	CreatedOn  time.Time       `json:"created_on"`
	ModifiedOn time.Time       `json:"modified_on"`
}

func toResponse(w Wallet) walletResponse {
	return walletResponse{
		Name:       w.Name,
		Type:       string(w.Type),
		Currency:   string(w.Currency),
		Balance:    w.Balance,
		OwnerID:    w.OwnerID,
		CreatedOn:  w.CreatedOn,
		ModifiedOn: w.ModifiedOn,
	}
}

// Create provisions a wallet for the authenticated owner.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	wallet, err := h.service.Create(c.UserContext(), CreateInput{
		OwnerID:  uid,
		Type:     CardType(req.Type),
		Currency: Currency(req.Currency),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCardType), errors.Is(err, ErrInvalidCurrency), errors.Is(err, ErrLimitExceeded):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(toResponse(wallet))
}

// List returns the authenticated owner's wallets.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	wallets, err := h.service.List(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]walletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, toResponse(w))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Get returns one of the owner's wallets by name.
func (h *Handler) Get(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	wallet, err := h.service.Get(c.UserContext(), uid, c.Params("name"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(wallet))
}

// Delete removes one of the owner's wallets.
func (h *Handler) Delete(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	name := c.Params("name")
	if err := h.service.Delete(c.UserContext(), uid, name); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		case errors.Is(err, ErrInUse):
			return fiber.NewError(http.StatusConflict, "wallet has transactions")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.SendStatus(http.StatusNoContent)
}
