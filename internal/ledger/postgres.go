package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists transactions in PostgreSQL. Settlement locks both
// wallet rows so the sufficiency check and the debit form one atomic unit.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed transaction store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const txColumns = `id, sender, receiver, transfer_amount, commission, status, created_at`

// Create inserts a provisional FAILED transaction record in its own
// transaction so the record survives a failed settlement as an audit trail.
func (s *PostgresStore) Create(ctx context.Context, tx Transaction) error {
	_, err := s.db.Exec(ctx, `INSERT INTO transactions (id, sender, receiver, transfer_amount, commission, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tx.ID, tx.Sender, tx.Receiver, tx.Amount, tx.Commission, string(tx.Status), tx.Timestamp.UTC())
	return err
}

// Settle performs the atomic unit: lock the transaction row, lock both wallet
// rows in name order, re-verify sufficiency, mutate both balances and promote
// the status to PAID. Everything commits together or not at all.
func (s *PostgresStore) Settle(ctx context.Context, id string, debit decimal.Decimal) (Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer dbTx.Rollback(ctx) // nolint:errcheck

	row := dbTx.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, err
	}
	if tx.Status == StatusPaid {
		return Transaction{}, ErrAlreadySettled
	}

	// Deterministic lock order prevents deadlocks between opposing transfers.
	first, second := tx.Sender, tx.Receiver
	if second < first {
		first, second = second, first
	}

	balances := make(map[string]decimal.Decimal, 2)
	for _, name := range []string{first, second} {
		var balance decimal.Decimal
		if err := dbTx.QueryRow(ctx, `SELECT balance FROM wallets WHERE name = $1 FOR UPDATE`, name).Scan(&balance); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Transaction{}, fmt.Errorf("wallet %s not found", name)
			}
			return Transaction{}, err
		}
		balances[name] = balance
	}

	if balances[tx.Sender].LessThan(debit) {
		return Transaction{}, ErrInsufficientFunds
	}

	now := time.Now().UTC()
	if _, err := dbTx.Exec(ctx, `UPDATE wallets SET balance = balance - $1, modified_on = $2 WHERE name = $3`, debit, now, tx.Sender); err != nil {
		return Transaction{}, err
	}
	if _, err := dbTx.Exec(ctx, `UPDATE wallets SET balance = balance + $1, modified_on = $2 WHERE name = $3`, tx.Amount, now, tx.Receiver); err != nil {
		return Transaction{}, err
	}
	if _, err := dbTx.Exec(ctx, `UPDATE transactions SET status = $1 WHERE id = $2`, string(StatusPaid), id); err != nil {
		return Transaction{}, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return Transaction{}, err
	}

	tx.Status = StatusPaid
	return tx, nil
}

// GetForOwner fetches a transaction only if the owner holds one of the two wallets.
func (s *PostgresStore) GetForOwner(ctx context.Context, ownerID, id string) (Transaction, error) {
	row := s.db.QueryRow(ctx, `
        SELECT t.id, t.sender, t.receiver, t.transfer_amount, t.commission, t.status, t.created_at
        FROM transactions t
        JOIN wallets snd ON snd.name = t.sender
        JOIN wallets rcv ON rcv.name = t.receiver
        WHERE t.id = $1 AND (snd.owner_id = $2 OR rcv.owner_id = $2)`, id, ownerID)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	return tx, err
}

// ListForOwner returns transactions touching any of the owner's wallets.
func (s *PostgresStore) ListForOwner(ctx context.Context, ownerID string) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `
        SELECT t.id, t.sender, t.receiver, t.transfer_amount, t.commission, t.status, t.created_at
        FROM transactions t
        JOIN wallets snd ON snd.name = t.sender
        JOIN wallets rcv ON rcv.name = t.receiver
        WHERE snd.owner_id = $1 OR rcv.owner_id = $1
        ORDER BY t.created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListForWallet returns transactions where the wallet is sender or receiver.
func (s *PostgresStore) ListForWallet(ctx context.Context, walletName string) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `SELECT `+txColumns+` FROM transactions
        WHERE sender = $1 OR receiver = $1 ORDER BY created_at`, walletName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ExistsForWallet reports whether any transaction references the wallet.
func (s *PostgresStore) ExistsForWallet(ctx context.Context, walletName string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE sender = $1 OR receiver = $1)`, walletName).Scan(&exists)
	return exists, err
}

// DeleteForWallet removes all transactions referencing the wallet.
func (s *PostgresStore) DeleteForWallet(ctx context.Context, walletName string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM transactions WHERE sender = $1 OR receiver = $1`, walletName)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var (
		tx        Transaction
		status    string
		createdAt time.Time
	)
	if err := row.Scan(&tx.ID, &tx.Sender, &tx.Receiver, &tx.Amount, &tx.Commission, &status, &createdAt); err != nil {
		return Transaction{}, err
	}
	tx.Status = Status(status)
	tx.Timestamp = createdAt.UTC()
	return tx, nil
}

func collectTransactions(rows pgx.Rows) ([]Transaction, error) {
	var out []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
