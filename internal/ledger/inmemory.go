package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

type inMemoryStore struct {
	mu           sync.RWMutex
	transactions []Transaction
	byID         map[string]int
	wallets      WalletDirectory
}

// NewInMemory creates a concurrency-safe in-memory transaction store useful
// for unit tests. Balance mutation is delegated to the wallet directory.
func NewInMemory(wallets WalletDirectory) Store {
	return &inMemoryStore{byID: make(map[string]int), wallets: wallets}
}

func (s *inMemoryStore) Create(_ context.Context, tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[tx.ID]; exists {
		return errors.New("transaction exists")
	}
	s.byID[tx.ID] = len(s.transactions)
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *inMemoryStore) Settle(ctx context.Context, id string, debit decimal.Decimal) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	tx := s.transactions[idx]
	if tx.Status == StatusPaid {
		return Transaction{}, ErrAlreadySettled
	}

	if err := s.wallets.ApplyTransfer(ctx, tx.Sender, debit, tx.Receiver, tx.Amount); err != nil {
		return Transaction{}, err
	}

	tx.Status = StatusPaid
	s.transactions[idx] = tx
	return tx, nil
}

func (s *inMemoryStore) GetForOwner(ctx context.Context, ownerID, id string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	tx := s.transactions[idx]
	if !s.visibleTo(ctx, ownerID, tx) {
		return Transaction{}, ErrNotFound
	}
	return tx, nil
}

func (s *inMemoryStore) ListForOwner(ctx context.Context, ownerID string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Transaction
	for _, tx := range s.transactions {
		if s.visibleTo(ctx, ownerID, tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *inMemoryStore) ListForWallet(_ context.Context, walletName string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Transaction
	for _, tx := range s.transactions {
		if tx.Sender == walletName || tx.Receiver == walletName {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *inMemoryStore) ExistsForWallet(_ context.Context, walletName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.transactions {
		if tx.Sender == walletName || tx.Receiver == walletName {
			return true, nil
		}
	}
	return false, nil
}

func (s *inMemoryStore) DeleteForWallet(_ context.Context, walletName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.transactions[:0]
	for _, tx := range s.transactions {
		if tx.Sender != walletName && tx.Receiver != walletName {
			kept = append(kept, tx)
		}
	}
	s.transactions = kept
	s.byID = make(map[string]int, len(kept))
	for i, tx := range kept {
		s.byID[tx.ID] = i
	}
	return nil
}

func (s *inMemoryStore) visibleTo(ctx context.Context, ownerID string, tx Transaction) bool {
	if owner, err := s.wallets.OwnerOf(ctx, tx.Sender); err == nil && owner == ownerID {
		return true
	}
	if owner, err := s.wallets.OwnerOf(ctx, tx.Receiver); err == nil && owner == ownerID {
		return true
	}
	return false
}
