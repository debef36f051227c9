package wallet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pursehub/pursehub/internal/ledger"
)

// MemoryRepository is an in-memory wallet store for tests. It also implements
// ledger.WalletDirectory so the in-memory ledger can settle transfers against
// it; the balance check and both mutations happen under a single lock.
type MemoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Wallet
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{storage: make(map[string]Wallet)}
}

func (r *MemoryRepository) Create(_ context.Context, wallet Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[wallet.Name]; exists {
		return ErrNameTaken
	}
	r.storage[wallet.Name] = wallet
	return nil
}

func (r *MemoryRepository) GetByName(_ context.Context, name string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallet, ok := r.storage[name]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return wallet, nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var wallets []Wallet
	for _, w := range r.storage {
		if w.OwnerID == ownerID {
			wallets = append(wallets, w)
		}
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].CreatedOn.Before(wallets[j].CreatedOn) })
	return wallets, nil
}

func (r *MemoryRepository) CountByOwner(_ context.Context, ownerID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, w := range r.storage {
		if w.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[name]; !ok {
		return ErrNotFound
	}
	delete(r.storage, name)
	return nil
}

// OwnerOf resolves the owner of a wallet by name.
func (r *MemoryRepository) OwnerOf(_ context.Context, name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallet, ok := r.storage[name]
	if !ok {
		return "", ErrNotFound
	}
	return wallet.OwnerID, nil
}

// ApplyTransfer atomically debits the sender and credits the receiver. The
// sufficiency check and both mutations happen under one lock so concurrent
// transfers cannot both pass the check on a stale balance.
func (r *MemoryRepository) ApplyTransfer(_ context.Context, sender string, debit decimal.Decimal, receiver string, credit decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, ok := r.storage[sender]
	if !ok {
		return ErrNotFound
	}
	to, ok := r.storage[receiver]
	if !ok {
		return ErrNotFound
	}
	if from.Balance.LessThan(debit) {
		return ledger.ErrInsufficientFunds
	}

	now := time.Now().UTC()
	from.Balance = from.Balance.Sub(debit)
	from.ModifiedOn = now
	to.Balance = to.Balance.Add(credit)
	to.ModifiedOn = now
	r.storage[sender] = from
	r.storage[receiver] = to
	return nil
}
