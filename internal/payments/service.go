package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pursehub/pursehub/internal/access"
	"github.com/pursehub/pursehub/internal/ledger"
	"github.com/pursehub/pursehub/internal/notification"
	"github.com/pursehub/pursehub/internal/wallet"
)

// DefaultCommission is the rate charged on transfers between wallets of
// different owners. Same-owner transfers are free.
var DefaultCommission = decimal.New(10, -2) // 0.10

var (
	// ErrInvalidAmount indicates a non-positive transfer amount.
	ErrInvalidAmount = errors.New("transfer amount must be positive")

	// ErrCurrencyMismatch indicates sender and receiver wallets hold different
	// currencies. No conversion is performed.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrSameWallet indicates sender and receiver are the same wallet.
	ErrSameWallet = errors.New("sender and receiver must differ")
)

// Service is the transfer engine: it validates a requested transfer, computes
// commission and delegates the atomic balance update to the ledger store.
type Service struct {
	wallets  wallet.Repository
	store    ledger.Store
	policy   access.Policy
	notifier notification.Notifier
}

// NewService constructs a transfer engine instance.
func NewService(wallets wallet.Repository, store ledger.Store, policy access.Policy, notifier notification.Notifier) *Service {
	return &Service{wallets: wallets, store: store, policy: policy, notifier: notifier}
}

// TransferInput captures the data needed to move funds between wallets.
type TransferInput struct {
	SenderName   string
	ReceiverName string
	Amount       decimal.Decimal
}

// CreateTransaction validates and executes a transfer on behalf of the
// principal. The sender is debited amount*(1+rate) with the rate rounded into
// the ratio first; the receiver is credited the plain amount, so the fee
// leaves circulation. The returned transaction is PAID; on settlement failure
// the provisional FAILED record remains as an audit trail and no balance
// changes persist.
func (s *Service) CreateTransaction(ctx context.Context, principalID string, input TransferInput) (ledger.Transaction, error) {
	if !input.Amount.IsPositive() {
		return ledger.Transaction{}, ErrInvalidAmount
	}
	if input.SenderName == input.ReceiverName {
		return ledger.Transaction{}, ErrSameWallet
	}

	sender, err := s.wallets.GetByName(ctx, input.SenderName)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if err := s.policy.AuthorizeTransfer(principalID, sender.OwnerID); err != nil {
		return ledger.Transaction{}, err
	}
	receiver, err := s.wallets.GetByName(ctx, input.ReceiverName)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if sender.Currency != receiver.Currency {
		return ledger.Transaction{}, ErrCurrencyMismatch
	}

	rate := decimal.Zero
	if sender.OwnerID != receiver.OwnerID {
		rate = DefaultCommission
	}
	ratio := decimal.NewFromInt(1).Add(rate).Round(2)
	debit := input.Amount.Mul(ratio).Round(2)

	if sender.Balance.LessThan(debit) {
		return ledger.Transaction{}, ledger.ErrInsufficientFunds
	}

	tx := ledger.Transaction{
		ID:         uuid.NewString(),
		Sender:     sender.Name,
		Receiver:   receiver.Name,
		Amount:     input.Amount,
		Commission: rate,
		Status:     ledger.StatusFailed,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.store.Create(ctx, tx); err != nil {
		return ledger.Transaction{}, fmt.Errorf("record transaction: %w", err)
	}

	settled, err := s.store.Settle(ctx, tx.ID, debit)
	if err != nil {
		return ledger.Transaction{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransfer,
			Destination: receiver.OwnerID,
			Body:        fmt.Sprintf("You received %s %s on wallet %s", input.Amount, sender.Currency, receiver.Name),
		})
	}

	return settled, nil
}

// ListForOwner returns all transactions touching the principal's wallets,
// oldest first.
func (s *Service) ListForOwner(ctx context.Context, principalID string) ([]ledger.Transaction, error) {
	return s.store.ListForOwner(ctx, principalID)
}

// GetForOwner fetches a transaction by id if the principal owns either wallet
// involved; otherwise ledger.ErrNotFound.
func (s *Service) GetForOwner(ctx context.Context, principalID, id string) (ledger.Transaction, error) {
	return s.store.GetForOwner(ctx, principalID, id)
}

// ListForWallet returns transactions of one of the principal's own wallets.
// The wallet lookup is owner-scoped first, so foreign wallet names cannot be
// enumerated through this path.
func (s *Service) ListForWallet(ctx context.Context, principalID, walletName string) ([]ledger.Transaction, error) {
	w, err := s.wallets.GetByName(ctx, walletName)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanView(principalID, w.OwnerID) {
		return nil, wallet.ErrNotFound
	}
	return s.store.ListForWallet(ctx, w.Name)
}
