package payments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pursehub/pursehub/internal/access"
	"github.com/pursehub/pursehub/internal/ledger"
	"github.com/pursehub/pursehub/internal/notification"
	"github.com/pursehub/pursehub/internal/wallet"
)

type testNotifier struct {
	mu   sync.Mutex
	last notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = msg
	return nil
}

func newTestEngine(t *testing.T) (*Service, *wallet.MemoryRepository, ledger.Store, *testNotifier) {
	t.Helper()
	repo := wallet.NewMemoryRepository()
	store := ledger.NewInMemory(repo)
	notifier := &testNotifier{}
	svc := NewService(repo, store, access.Policy{}, notifier)
	return svc, repo, store, notifier
}

func seedWallet(t *testing.T, repo *wallet.MemoryRepository, name, owner string, currency wallet.Currency, balance int64) {
	t.Helper()
	err := repo.Create(context.Background(), wallet.Wallet{
		Name:       name,
		Type:       wallet.CardVisa,
		Currency:   currency,
		Balance:    decimal.NewFromInt(balance),
		OwnerID:    owner,
		CreatedOn:  time.Now().UTC(),
		ModifiedOn: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed wallet %s: %v", name, err)
	}
}

func balanceOf(t *testing.T, repo *wallet.MemoryRepository, name string) decimal.Decimal {
	t.Helper()
	w, err := repo.GetByName(context.Background(), name)
	if err != nil {
		t.Fatalf("get wallet %s: %v", name, err)
	}
	return w.Balance
}

func TestTransferSameOwnerNoCommission(t *testing.T) {
	svc, repo, _, notifier := newTestEngine(t)
	ctx := context.Background()
	seedWallet(t, repo, "U1RUB1AA", "user-1", wallet.CurrencyRUB, 100)
	seedWallet(t, repo, "U1RUB2AA", "user-1", wallet.CurrencyRUB, 100)

	tx, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
		SenderName: "U1RUB1AA", ReceiverName: "U1RUB2AA", Amount: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if tx.Status != ledger.StatusPaid {
		t.Fatalf("expected PAID, got %s", tx.Status)
	}
	if !tx.Commission.IsZero() {
		t.Fatalf("expected zero commission for same owner, got %s", tx.Commission)
	}
	if got := balanceOf(t, repo, "U1RUB1AA"); !got.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected sender balance 90, got %s", got)
	}
	if got := balanceOf(t, repo, "U1RUB2AA"); !got.Equal(decimal.NewFromInt(110)) {
		t.Fatalf("expected receiver balance 110, got %s", got)
	}
	if notifier.last.Destination != "user-1" || notifier.last.Kind != notification.KindTransfer {
		t.Fatalf("unexpected notification: %+v", notifier.last)
	}
}

func TestTransferCrossOwnerCommission(t *testing.T) {
	svc, repo, _, _ := newTestEngine(t)
	ctx := context.Background()
	seedWallet(t, repo, "U1USD1AA", "user-1", wallet.CurrencyUSD, 90)
	seedWallet(t, repo, "U2USD1AA", "user-2", wallet.CurrencyUSD, 100)

	tx, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
		SenderName: "U1USD1AA", ReceiverName: "U2USD1AA", Amount: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if !tx.Commission.Equal(DefaultCommission) {
		t.Fatalf("expected commission rate %s, got %s", DefaultCommission, tx.Commission)
	}
	// Debit is 10 * 1.10 = 11; the fee leaves circulation.
	if got := balanceOf(t, repo, "U1USD1AA"); !got.Equal(decimal.NewFromInt(79)) {
		t.Fatalf("expected sender balance 79, got %s", got)
	}
	if got := balanceOf(t, repo, "U2USD1AA"); !got.Equal(decimal.NewFromInt(110)) {
		t.Fatalf("expected receiver balance 110, got %s", got)
	}
}

func TestTransferCurrencyMismatch(t *testing.T) {
	svc, repo, store, _ := newTestEngine(t)
	ctx := context.Background()
	seedWallet(t, repo, "U1RUB1AA", "user-1", wallet.CurrencyRUB, 100)
	seedWallet(t, repo, "U1USD1AA", "user-1", wallet.CurrencyUSD, 100)

	_, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
		SenderName: "U1RUB1AA", ReceiverName: "U1USD1AA", Amount: decimal.NewFromInt(10),
	})
	if !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	if got := balanceOf(t, repo, "U1RUB1AA"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balances must not move, got %s", got)
	}
	txs, err := store.ListForOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected no transaction records, got %d", len(txs))
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	svc, repo, _, _ := newTestEngine(t)
	ctx := context.Background()
	seedWallet(t, repo, "U1RUB1AA", "user-1", wallet.CurrencyRUB, 100)
	seedWallet(t, repo, "U1RUB2AA", "user-1", wallet.CurrencyRUB, 100)

	_, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
		SenderName: "U1RUB1AA", ReceiverName: "U1RUB2AA", Amount: decimal.NewFromInt(1000),
	})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := balanceOf(t, repo, "U1RUB1AA"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balances must not move, got %s", got)
	}
}

func TestTransferSufficiencyUsesDebit(t *testing.T) {
	svc, repo, _, _ := newTestEngine(t)
	ctx := context.Background()
	// 100 covers the amount but not amount plus commission: 100 * 1.10 = 110.
	seedWallet(t, repo, "U1USD1AA", "user-1", wallet.CurrencyUSD, 100)
	seedWallet(t, repo, "U2USD1AA", "user-2", wallet.CurrencyUSD, 0)

	_, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
		SenderName: "U1USD1AA", ReceiverName: "U2USD1AA", Amount: decimal.NewFromInt(100),
	})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestTransferSenderNotOwned(t *testing.T) {
	svc, repo, _, _ := newTestEngine(t)
	ctx := context.Background()
	seedWallet(t, repo, "U2RUB1AA", "user-2", wallet.CurrencyRUB, 100)
	seedWallet(t, repo, "U1RUB1AA", "user-1", wallet.CurrencyRUB, 100)

	_, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
		SenderName: "U2RUB1AA", ReceiverName: "U1RUB1AA", Amount: decimal.NewFromInt(10),
	})
	if !errors.Is(err, access.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if got := balanceOf(t, repo, "U2RUB1AA"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balances must not move, got %s", got)
	}
}

func TestTransferUnknownWallets(t *testing.T) {
	svc, repo, _, _ := newTestEngine(t)
	ctx := context.Background()
	seedWallet(t, repo, "U1RUB1AA", "user-1", wallet.CurrencyRUB, 100)

	_, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
		SenderName: "NOWALLET", ReceiverName: "U1RUB1AA", Amount: decimal.NewFromInt(10),
	})
	if !errors.Is(err, wallet.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown sender, got %v", err)
	}
	_, err = svc.CreateTransaction(ctx, "user-1", TransferInput{
		SenderName: "U1RUB1AA", ReceiverName: "NOWALLET", Amount: decimal.NewFromInt(10),
	})
	if !errors.Is(err, wallet.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown receiver, got %v", err)
	}
}

func TestTransferRejectsSelfAndNonPositive(t *testing.T) {
	svc, repo, _, _ := newTestEngine(t)
	ctx := context.Background()
	seedWallet(t, repo, "U1RUB1AA", "user-1", wallet.CurrencyRUB, 100)
	seedWallet(t, repo, "U1RUB2AA", "user-1", wallet.CurrencyRUB, 100)

	_, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
		SenderName: "U1RUB1AA", ReceiverName: "U1RUB1AA", Amount: decimal.NewFromInt(10),
	})
	if !errors.Is(err, ErrSameWallet) {
		t.Fatalf("expected ErrSameWallet, got %v", err)
	}

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
			SenderName: "U1RUB1AA", ReceiverName: "U1RUB2AA", Amount: amount,
		})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount for %s, got %v", amount, err)
		}
	}
}

func TestTransferVisibility(t *testing.T) {
	svc, repo, _, _ := newTestEngine(t)
	ctx := context.Background()
	seedWallet(t, repo, "U1RUB1AA", "user-1", wallet.CurrencyRUB, 100)
	seedWallet(t, repo, "U2RUB1AA", "user-2", wallet.CurrencyRUB, 100)
	seedWallet(t, repo, "U3RUB1AA", "user-3", wallet.CurrencyRUB, 100)

	tx, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
		SenderName: "U1RUB1AA", ReceiverName: "U2RUB1AA", Amount: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	// Both parties see the transaction; a third party cannot tell it from an
	// absent one.
	for _, principal := range []string{"user-1", "user-2"} {
		if _, err := svc.GetForOwner(ctx, principal, tx.ID); err != nil {
			t.Fatalf("expected %s to see transaction: %v", principal, err)
		}
	}
	if _, err := svc.GetForOwner(ctx, "user-3", tx.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for third party, got %v", err)
	}
}

func TestListForWalletScopedToOwner(t *testing.T) {
	svc, repo, _, _ := newTestEngine(t)
	ctx := context.Background()
	seedWallet(t, repo, "U1RUB1AA", "user-1", wallet.CurrencyRUB, 100)
	seedWallet(t, repo, "U2RUB1AA", "user-2", wallet.CurrencyRUB, 100)

	if _, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
		SenderName: "U1RUB1AA", ReceiverName: "U2RUB1AA", Amount: decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	// Foreign wallet names cannot be enumerated through this path.
	if _, err := svc.ListForWallet(ctx, "user-1", "U2RUB1AA"); !errors.Is(err, wallet.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign wallet, got %v", err)
	}

	first, err := svc.ListForWallet(ctx, "user-1", "U1RUB1AA")
	if err != nil {
		t.Fatalf("list for wallet: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(first))
	}

	// Reads do not mutate: the same call returns the same result.
	second, err := svc.ListForWallet(ctx, "user-1", "U1RUB1AA")
	if err != nil {
		t.Fatalf("list for wallet: %v", err)
	}
	if len(second) != 1 || second[0].ID != first[0].ID {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestConcurrentTransfersConserveFunds(t *testing.T) {
	svc, repo, _, _ := newTestEngine(t)
	ctx := context.Background()
	seedWallet(t, repo, "U1RUB1AA", "user-1", wallet.CurrencyRUB, 100)
	seedWallet(t, repo, "U1RUB2AA", "user-1", wallet.CurrencyRUB, 0)

	// Only 10 of the 20 attempts fit the balance; the rest must fail the
	// sufficiency check instead of driving the balance negative.
	const attempts = 20
	amount := decimal.NewFromInt(10)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateTransaction(ctx, "user-1", TransferInput{
				SenderName: "U1RUB1AA", ReceiverName: "U1RUB2AA", Amount: amount,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, failed int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ledger.ErrInsufficientFunds):
			failed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 10 || failed != 10 {
		t.Fatalf("expected 10 successes and 10 failures, got %d/%d", succeeded, failed)
	}

	sender := balanceOf(t, repo, "U1RUB1AA")
	receiver := balanceOf(t, repo, "U1RUB2AA")
	if !sender.Equal(decimal.Zero) {
		t.Fatalf("expected sender drained to 0, got %s", sender)
	}
	if !sender.Add(receiver).Equal(decimal.NewFromInt(100)) {
		t.Fatalf("funds not conserved: %s + %s", sender, receiver)
	}
}
