package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/pursehub/pursehub/internal/access"
	"github.com/pursehub/pursehub/internal/ledger"
)

// DeletePolicy controls what happens when a wallet with transactions is deleted.
type DeletePolicy string

const (
	// DeleteRestrict blocks deletion while any transaction references the wallet.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade removes the wallet together with its transactions.
	DeleteCascade DeletePolicy = "cascade"
)

// Name generation is retried on collision; with 36^8 possible names a handful
// of attempts is plenty.
const nameAttempts = 5

// Service provisions wallets and exposes owner-scoped wallet operations.
type Service struct {
	repo         Repository
	transactions ledger.Store
	policy       access.Policy
	deletePolicy DeletePolicy
}

// NewService builds a wallet service instance.
func NewService(repo Repository, transactions ledger.Store, policy access.Policy, deletePolicy DeletePolicy) *Service {
	if deletePolicy == "" {
		deletePolicy = DeleteRestrict
	}
	return &Service{repo: repo, transactions: transactions, policy: policy, deletePolicy: deletePolicy}
}

// CreateInput captures data required to create a wallet.
type CreateInput struct {
	OwnerID  string
	Type     CardType
	Currency Currency
}

// Create provisions a wallet with a generated unique name and a
// currency-dependent signup bonus. Owners hold at most MaxWalletsPerOwner
// wallets.
func (s *Service) Create(ctx context.Context, input CreateInput) (Wallet, error) {
	if err := input.Type.Validate(); err != nil {
		return Wallet{}, err
	}
	if err := input.Currency.Validate(); err != nil {
		return Wallet{}, err
	}

	count, err := s.repo.CountByOwner(ctx, input.OwnerID)
	if err != nil {
		return Wallet{}, fmt.Errorf("count wallets: %w", err)
	}
	if count >= MaxWalletsPerOwner {
		return Wallet{}, ErrLimitExceeded
	}

	now := time.Now().UTC()
	wallet := Wallet{
		Type:       input.Type,
		Currency:   input.Currency,
		Balance:    input.Currency.SignupBonus(),
		OwnerID:    input.OwnerID,
		CreatedOn:  now,
		ModifiedOn: now,
	}

	for attempt := 0; attempt < nameAttempts; attempt++ {
		name, err := GenerateName()
		if err != nil {
			return Wallet{}, err
		}
		wallet.Name = name
		err = s.repo.Create(ctx, wallet)
		if err == nil {
			return wallet, nil
		}
		if err != ErrNameTaken {
			return Wallet{}, fmt.Errorf("create wallet: %w", err)
		}
	}
	return Wallet{}, fmt.Errorf("create wallet: %w after %d attempts", ErrNameTaken, nameAttempts)
}

// List returns all wallets owned by the principal.
func (s *Service) List(ctx context.Context, principalID string) ([]Wallet, error) {
	return s.repo.ListByOwner(ctx, principalID)
}

// Get fetches a wallet by name, scoped to the principal. Non-owned wallets are
// reported as ErrNotFound.
func (s *Service) Get(ctx context.Context, principalID, name string) (Wallet, error) {
	wallet, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return Wallet{}, err
	}
	if !s.policy.CanView(principalID, wallet.OwnerID) {
		return Wallet{}, ErrNotFound
	}
	return wallet, nil
}

// Delete removes a wallet the principal owns. When transactions still
// reference the wallet the configured policy decides: restrict returns
// ErrInUse, cascade deletes the transactions first.
func (s *Service) Delete(ctx context.Context, principalID, name string) error {
	wallet, err := s.Get(ctx, principalID, name)
	if err != nil {
		return err
	}

	referenced, err := s.transactions.ExistsForWallet(ctx, wallet.Name)
	if err != nil {
		return fmt.Errorf("check wallet transactions: %w", err)
	}
	if referenced {
		switch s.deletePolicy {
		case DeleteCascade:
			if err := s.transactions.DeleteForWallet(ctx, wallet.Name); err != nil {
				return fmt.Errorf("cascade delete transactions: %w", err)
			}
		default:
			return ErrInUse
		}
	}

	return s.repo.Delete(ctx, wallet.Name)
}
