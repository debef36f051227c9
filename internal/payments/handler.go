package payments

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/pursehub/pursehub/internal/access"
	"github.com/pursehub/pursehub/internal/ledger"
	"github.com/pursehub/pursehub/internal/wallet"
)

// Handler exposes transaction endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a transaction handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	Sender         string `json:"sender"`
	Receiver       string `json:"receiver"`
	TransferAmount string `json:"transfer_amount"`
}

type transactionResponse struct {
	ID             string          `json:"id"`
	Sender         string          `json:"sender"`
	Receiver       string          `json:"receiver"`
	TransferAmount decimal.Decimal `json:"transfer_amount"`
	Commission     decimal.Decimal `json:"commission"`
	Status         string          `json:"status"`
	Timestamp      time.Time       `json:"timestamp"`
}

func toResponse(tx ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:             tx.ID,
		Sender:         tx.Sender,
		Receiver:       tx.Receiver,
		TransferAmount: tx.Amount,
		Commission:     tx.Commission,
		Status:         string(tx.Status),
		Timestamp:      tx.Timestamp,
	}
}

// Create processes a wallet-to-wallet transfer.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.TransferAmount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid transfer_amount")
	}
	uid, _ := c.Locals("user_id").(string)

	tx, err := h.service.CreateTransaction(c.UserContext(), uid, TransferInput{
		SenderName:   req.Sender,
		ReceiverName: req.Receiver,
		Amount:       amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		case errors.Is(err, access.ErrNotOwner):
			return fiber.NewError(http.StatusForbidden, "sender wallet is not owned by you")
		case errors.Is(err, ErrCurrencyMismatch), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrSameWallet):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(toResponse(tx))
}

// List returns all transactions visible to the authenticated user.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	txs, err := h.service.ListForOwner(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toResponse(tx))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Get returns a single transaction by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	tx, err := h.service.GetForOwner(c.UserContext(), uid, c.Params("id"))
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "transaction not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(tx))
}

// ListForWallet returns the transaction history of one of the user's wallets.
func (h *Handler) ListForWallet(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	txs, err := h.service.ListForWallet(c.UserContext(), uid, c.Params("name"))
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toResponse(tx))
	}
	return c.Status(http.StatusOK).JSON(out)
}
