package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds occurs when the sender wallet cannot cover the debit
	// (transfer amount plus commission).
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotFound indicates the transaction does not exist or is not visible to
	// the caller.
	ErrNotFound = errors.New("transaction not found")

	// ErrAlreadySettled indicates an attempt to settle a transaction that is
	// already PAID. PAID transactions never change again.
	ErrAlreadySettled = errors.New("transaction already settled")
)

// Status is the lifecycle state of a transaction. Transactions are created
// FAILED and promoted to PAID only after both balance mutations commit in the
// same atomic unit; a PAID transaction never reverts.
type Status string

const (
	StatusFailed Status = "FAILED"
	StatusPaid   Status = "PAID"
)

// Transaction records a transfer between two wallets. Commission holds the
// rate charged (0 for same-owner transfers), not an absolute fee amount.
type Transaction struct {
	ID         string
	Sender     string
	Receiver   string
	Amount     decimal.Decimal
	Commission decimal.Decimal
	Status     Status
	Timestamp  time.Time
}

// WalletDirectory is the slice of the wallet store the in-memory ledger needs:
// owner resolution for visibility scoping, and the atomic balance mutation.
type WalletDirectory interface {
	OwnerOf(ctx context.Context, name string) (string, error)
	ApplyTransfer(ctx context.Context, sender string, debit decimal.Decimal, receiver string, credit decimal.Decimal) error
}

// Store persists transactions and performs the settlement atomic unit.
type Store interface {
	// Create inserts a provisional FAILED transaction record.
	Create(ctx context.Context, tx Transaction) error

	// Settle atomically debits the sender by debit, credits the receiver by the
	// recorded transfer amount, and promotes the transaction to PAID. On any
	// failure the record stays FAILED and no balance changes persist.
	Settle(ctx context.Context, id string, debit decimal.Decimal) (Transaction, error)

	// GetForOwner fetches a transaction visible to the owner: the owner must
	// hold at least one of the two wallets involved. Returns ErrNotFound
	// otherwise, deliberately hiding existence from third parties.
	GetForOwner(ctx context.Context, ownerID, id string) (Transaction, error)

	// ListForOwner returns transactions touching any of the owner's wallets,
	// ordered by creation time ascending.
	ListForOwner(ctx context.Context, ownerID string) ([]Transaction, error)

	// ListForWallet returns transactions where the wallet is sender or
	// receiver, ordered by creation time ascending. Callers scope the wallet
	// to the requesting owner first.
	ListForWallet(ctx context.Context, walletName string) ([]Transaction, error)

	// ExistsForWallet reports whether any transaction references the wallet.
	ExistsForWallet(ctx context.Context, walletName string) (bool, error)

	// DeleteForWallet removes all transactions referencing the wallet. Used by
	// the cascade delete policy.
	DeleteForWallet(ctx context.Context, walletName string) error
}
