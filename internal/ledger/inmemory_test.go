package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeDirectory is a minimal wallet directory with the same atomic contract
// as the real wallet store.
type fakeDirectory struct {
	mu       sync.Mutex
	owners   map[string]string
	balances map[string]decimal.Decimal
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{owners: make(map[string]string), balances: make(map[string]decimal.Decimal)}
}

func (d *fakeDirectory) add(name, owner string, balance int64) {
	d.owners[name] = owner
	d.balances[name] = decimal.NewFromInt(balance)
}

func (d *fakeDirectory) OwnerOf(_ context.Context, name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	owner, ok := d.owners[name]
	if !ok {
		return "", errors.New("wallet not found")
	}
	return owner, nil
}

func (d *fakeDirectory) ApplyTransfer(_ context.Context, sender string, debit decimal.Decimal, receiver string, credit decimal.Decimal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.balances[sender].LessThan(debit) {
		return ErrInsufficientFunds
	}
	d.balances[sender] = d.balances[sender].Sub(debit)
	d.balances[receiver] = d.balances[receiver].Add(credit)
	return nil
}

func testTransaction(id, sender, receiver string, amount int64, ts time.Time) Transaction {
	return Transaction{
		ID: id, Sender: sender, Receiver: receiver,
		Amount: decimal.NewFromInt(amount), Commission: decimal.Zero,
		Status: StatusFailed, Timestamp: ts,
	}
}

func TestSettlePromotesToPaid(t *testing.T) {
	dir := newFakeDirectory()
	dir.add("WALLETA1", "user-1", 100)
	dir.add("WALLETB1", "user-2", 0)
	store := NewInMemory(dir)
	ctx := context.Background()

	tx := testTransaction("tx-1", "WALLETA1", "WALLETB1", 10, time.Now().UTC())
	if err := store.Create(ctx, tx); err != nil {
		t.Fatalf("create: %v", err)
	}

	settled, err := store.Settle(ctx, "tx-1", decimal.NewFromInt(11))
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.Status != StatusPaid {
		t.Fatalf("expected PAID, got %s", settled.Status)
	}
	if !dir.balances["WALLETA1"].Equal(decimal.NewFromInt(89)) {
		t.Fatalf("expected sender balance 89, got %s", dir.balances["WALLETA1"])
	}
	if !dir.balances["WALLETB1"].Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected receiver balance 10, got %s", dir.balances["WALLETB1"])
	}

	if _, err := store.Settle(ctx, "tx-1", decimal.NewFromInt(11)); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
}

func TestSettleInsufficientLeavesFailedRecord(t *testing.T) {
	dir := newFakeDirectory()
	dir.add("WALLETA1", "user-1", 5)
	dir.add("WALLETB1", "user-2", 0)
	store := NewInMemory(dir)
	ctx := context.Background()

	tx := testTransaction("tx-1", "WALLETA1", "WALLETB1", 10, time.Now().UTC())
	if err := store.Create(ctx, tx); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.Settle(ctx, "tx-1", decimal.NewFromInt(11)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// The provisional record survives as an audit trail, still FAILED.
	got, err := store.GetForOwner(ctx, "user-1", "tx-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("expected FAILED, got %s", got.Status)
	}
	if !dir.balances["WALLETA1"].Equal(decimal.NewFromInt(5)) {
		t.Fatalf("balances must not move on failed settlement, got %s", dir.balances["WALLETA1"])
	}
}

func TestVisibilityScoping(t *testing.T) {
	dir := newFakeDirectory()
	dir.add("WALLETA1", "user-1", 100)
	dir.add("WALLETB1", "user-2", 100)
	dir.add("WALLETC1", "user-3", 100)
	store := NewInMemory(dir)
	ctx := context.Background()

	base := time.Now().UTC()
	if err := store.Create(ctx, testTransaction("tx-1", "WALLETA1", "WALLETB1", 10, base)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, testTransaction("tx-2", "WALLETB1", "WALLETC1", 10, base.Add(time.Second))); err != nil {
		t.Fatalf("create: %v", err)
	}

	// user-2 touches both, user-1 only the first, user-3 only the second.
	txs, err := store.ListForOwner(ctx, "user-2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != "tx-1" || txs[1].ID != "tx-2" {
		t.Fatalf("unexpected list for user-2: %+v", txs)
	}

	if _, err := store.GetForOwner(ctx, "user-3", "tx-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for third party, got %v", err)
	}
	if _, err := store.GetForOwner(ctx, "user-1", "tx-1"); err != nil {
		t.Fatalf("expected visibility for sender owner, got %v", err)
	}
}

func TestDeleteForWallet(t *testing.T) {
	dir := newFakeDirectory()
	dir.add("WALLETA1", "user-1", 100)
	dir.add("WALLETB1", "user-2", 100)
	store := NewInMemory(dir)
	ctx := context.Background()

	if err := store.Create(ctx, testTransaction("tx-1", "WALLETA1", "WALLETB1", 10, time.Now().UTC())); err != nil {
		t.Fatalf("create: %v", err)
	}

	referenced, err := store.ExistsForWallet(ctx, "WALLETA1")
	if err != nil || !referenced {
		t.Fatalf("expected wallet referenced, got %v %v", referenced, err)
	}
	if err := store.DeleteForWallet(ctx, "WALLETA1"); err != nil {
		t.Fatalf("delete for wallet: %v", err)
	}
	referenced, err = store.ExistsForWallet(ctx, "WALLETA1")
	if err != nil || referenced {
		t.Fatalf("expected no references left, got %v %v", referenced, err)
	}
}
