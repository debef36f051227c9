package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists wallet records. Balance mutation is owned by the
// transfer path in the ledger store, which operates on the same rows.
type Repository interface {
	Create(ctx context.Context, wallet Wallet) error
	GetByName(ctx context.Context, name string) (Wallet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Wallet, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	Delete(ctx context.Context, name string) error
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const walletColumns = `name, card_type, currency, balance, owner_id, created_on, modified_on`

// Create inserts a wallet record. A unique violation on the name maps to ErrNameTaken.
func (r *PostgresRepository) Create(ctx context.Context, wallet Wallet) error {
	_, err := r.db.Exec(ctx, `INSERT INTO wallets (name, card_type, currency, balance, owner_id, created_on, modified_on)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		wallet.Name, string(wallet.Type), string(wallet.Currency), wallet.Balance,
		wallet.OwnerID, wallet.CreatedOn.UTC(), wallet.ModifiedOn.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrNameTaken
	}
	return err
}

// GetByName fetches a wallet by its unique name.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE name = $1`, name)
	w, err := scanWallet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, ErrNotFound
	}
	return w, err
}

// ListByOwner returns the owner's wallets ordered by creation time.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Wallet, error) {
	rows, err := r.db.Query(ctx, `SELECT `+walletColumns+` FROM wallets WHERE owner_id = $1 ORDER BY created_on`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// CountByOwner returns how many wallets the owner currently holds.
func (r *PostgresRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM wallets WHERE owner_id = $1`, ownerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes a wallet by name.
func (r *PostgresRepository) Delete(ctx context.Context, name string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM wallets WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (Wallet, error) {
	var (
		w         Wallet
		cardType  string
		currency  string
		balance   decimal.Decimal
		createdOn time.Time
		modified  time.Time
	)
	if err := row.Scan(&w.Name, &cardType, &currency, &balance, &w.OwnerID, &createdOn, &modified); err != nil {
		return Wallet{}, err
	}
	w.Type = CardType(cardType)
	w.Currency = Currency(currency)
	w.Balance = balance
	w.CreatedOn = createdOn.UTC()
	w.ModifiedOn = modified.UTC()
	return w, nil
}
