package wallet

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// MaxWalletsPerOwner caps how many wallets a single owner may hold.
const MaxWalletsPerOwner = 5

var (
	// ErrNotFound indicates the wallet does not exist or is not visible to the caller.
	ErrNotFound = errors.New("wallet not found")

	// ErrNameTaken indicates a generated wallet name collided with an existing one.
	ErrNameTaken = errors.New("wallet name taken")

	// ErrLimitExceeded indicates the owner already holds the maximum number of wallets.
	ErrLimitExceeded = errors.New("wallet limit exceeded")

	// ErrInUse indicates the wallet is referenced by transactions and the delete
	// policy is set to restrict.
	ErrInUse = errors.New("wallet has transactions")

	// ErrInvalidCardType indicates an unknown card type value.
	ErrInvalidCardType = errors.New("invalid card type")

	// ErrInvalidCurrency indicates an unknown currency value.
	ErrInvalidCurrency = errors.New("invalid currency")
)

// CardType is the payment network a wallet is issued on.
type CardType string

const (
	CardVisa       CardType = "Visa"
	CardMastercard CardType = "Mastercard"
)

// Validate reports whether the card type is one of the supported networks.
func (t CardType) Validate() error {
	switch t {
	case CardVisa, CardMastercard:
		return nil
	default:
		return ErrInvalidCardType
	}
}

// Currency is the denomination of a wallet. Wallets never change currency.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyRUB Currency = "RUB"
)

// Validate reports whether the currency is supported.
func (c Currency) Validate() error {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyRUB:
		return nil
	default:
		return ErrInvalidCurrency
	}
}

// SignupBonus returns the balance a freshly provisioned wallet is seeded with.
func (c Currency) SignupBonus() decimal.Decimal {
	switch c {
	case CurrencyRUB:
		return decimal.NewFromInt(100)
	default:
		return decimal.NewFromInt(3)
	}
}

// Wallet is a named, currency-typed balance account owned by exactly one user.
// Currency and owner are fixed at creation; only the balance changes afterwards.
type Wallet struct {
	Name       string
	Type       CardType
	Currency   Currency
	Balance    decimal.Decimal
	OwnerID    string
	CreatedOn  time.Time
	ModifiedOn time.Time
}
