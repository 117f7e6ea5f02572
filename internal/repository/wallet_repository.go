package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhishekdk62/cineora-ledger/internal/model"
	"github.com/abhishekdk62/cineora-ledger/internal/service"
	"github.com/abhishekdk62/cineora-ledger/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const walletColumns = `id, account_id, account_kind, balance, currency, status, created_at, updated_at`

// WalletRepository provides data access for wallets using pgx.
//
// Balance mutations are single conditional UPDATE statements so that the
// non-negative invariant holds under concurrent access without any
// application-level locking.
type WalletRepository struct {
	pool PoolInterface
}

// NewWalletRepository creates a new WalletRepository with the given pool.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// NewWalletRepositoryWithPool creates a WalletRepository with a custom pool
// interface. This is primarily used for testing.
func NewWalletRepositoryWithPool(pool PoolInterface) *WalletRepository {
	return &WalletRepository{pool: pool}
}

func scanWallet(row pgx.Row) (*model.Wallet, error) {
	var w model.Wallet
	err := row.Scan(
		&w.ID,
		&w.AccountID,
		&w.AccountKind,
		&w.Balance,
		&w.Currency,
		&w.Status,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Insert creates a wallet with a zero balance.
// Returns service.ErrWalletExists if the (account_id, account_kind) pair
// already has a wallet.
func (r *WalletRepository) Insert(ctx context.Context, wallet *model.Wallet) (*model.Wallet, error) {
	query := `INSERT INTO wallets (id, account_id, account_kind, balance, currency, status)
		VALUES ($1, $2, $3, 0, $4, $5)
		RETURNING ` + walletColumns

	stored, err := scanWallet(r.pool.QueryRow(ctx, query,
		wallet.ID, wallet.AccountID, wallet.AccountKind, wallet.Currency, wallet.Status))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, service.ErrWalletExists
		}
		return nil, fmt.Errorf("insert wallet: %w", err)
	}
	return stored, nil
}

// Get retrieves the wallet for an account.
// Returns service.ErrWalletNotFound if no wallet exists.
func (r *WalletRepository) Get(ctx context.Context, accountID string, kind model.AccountKind) (*model.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE account_id = $1 AND account_kind = $2`

	wallet, err := scanWallet(r.pool.QueryRow(ctx, query, accountID, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet %s/%s: %w", accountID, kind, err)
	}
	return wallet, nil
}

// Credit atomically increases the balance and returns the updated snapshot.
// Runs against the given querier so the caller can pair it with a ledger
// insert in one transaction.
// Returns service.ErrWalletNotFound if no wallet exists.
func (r *WalletRepository) Credit(ctx context.Context, q database.TxQuerier, accountID string, kind model.AccountKind, amount int64) (*model.Wallet, error) {
	query := `UPDATE wallets
		SET balance = balance + $1, updated_at = now()
		WHERE account_id = $2 AND account_kind = $3
		RETURNING ` + walletColumns

	wallet, err := scanWallet(q.QueryRow(ctx, query, amount, accountID, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrWalletNotFound
		}
		return nil, fmt.Errorf("credit wallet %s/%s: %w", accountID, kind, err)
	}
	return wallet, nil
}

// Debit atomically decreases the balance, guarded by balance >= amount in the
// same statement. Zero rows affected means either the wallet is missing or
// the balance is short; the follow-up read only classifies the error, the
// guard itself never relies on it.
// Returns service.ErrWalletNotFound or service.ErrInsufficientBalance.
func (r *WalletRepository) Debit(ctx context.Context, q database.TxQuerier, accountID string, kind model.AccountKind, amount int64) (*model.Wallet, error) {
	query := `UPDATE wallets
		SET balance = balance - $1, updated_at = now()
		WHERE account_id = $2 AND account_kind = $3 AND balance >= $1
		RETURNING ` + walletColumns

	wallet, err := scanWallet(q.QueryRow(ctx, query, amount, accountID, kind))
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("debit wallet %s/%s: %w", accountID, kind, err)
	}

	if _, getErr := r.Get(ctx, accountID, kind); getErr != nil {
		return nil, getErr
	}
	return nil, service.ErrInsufficientBalance
}

// SetStatus updates the wallet status (freeze/unfreeze).
// Returns service.ErrWalletNotFound if no wallet exists.
func (r *WalletRepository) SetStatus(ctx context.Context, accountID string, kind model.AccountKind, status model.WalletStatus) (*model.Wallet, error) {
	query := `UPDATE wallets
		SET status = $1, updated_at = now()
		WHERE account_id = $2 AND account_kind = $3
		RETURNING ` + walletColumns

	wallet, err := scanWallet(r.pool.QueryRow(ctx, query, status, accountID, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrWalletNotFound
		}
		return nil, fmt.Errorf("set wallet status %s/%s: %w", accountID, kind, err)
	}
	return wallet, nil
}
