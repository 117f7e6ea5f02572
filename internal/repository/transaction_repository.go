package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhishekdk62/cineora-ledger/internal/model"
	"github.com/abhishekdk62/cineora-ledger/internal/service"
	"github.com/abhishekdk62/cineora-ledger/pkg/database"
)

const transactionColumns = `transaction_id, account_id, account_kind, wallet_id, direction, amount,
	category, description, status, reference_id, movie_id, theater_id, created_at, updated_at`

// TransactionRepository provides data access for the append-only ledger.
type TransactionRepository struct {
	pool PoolInterface
}

// NewTransactionRepository creates a new TransactionRepository with the given pool.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// NewTransactionRepositoryWithPool creates a TransactionRepository with a
// custom pool interface. This is primarily used for testing.
func NewTransactionRepositoryWithPool(pool PoolInterface) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func scanTransaction(row pgx.Row) (*model.WalletTransaction, error) {
	var t model.WalletTransaction
	err := row.Scan(
		&t.TransactionID,
		&t.AccountID,
		&t.AccountKind,
		&t.WalletID,
		&t.Direction,
		&t.Amount,
		&t.Category,
		&t.Description,
		&t.Status,
		&t.ReferenceID,
		&t.MovieID,
		&t.TheaterID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Insert appends a ledger entry against the pool.
func (r *TransactionRepository) Insert(ctx context.Context, entry *model.WalletTransaction) (*model.WalletTransaction, error) {
	return r.InsertTx(ctx, r.pool, entry)
}

// InsertTx appends a ledger entry against the given querier, so balance
// mutations and their ledger entries can share one transaction.
func (r *TransactionRepository) InsertTx(ctx context.Context, q database.TxQuerier, entry *model.WalletTransaction) (*model.WalletTransaction, error) {
	query := `INSERT INTO wallet_transactions
		(transaction_id, account_id, account_kind, wallet_id, direction, amount,
		 category, description, status, reference_id, movie_id, theater_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + transactionColumns

	stored, err := scanTransaction(q.QueryRow(ctx, query,
		entry.TransactionID, entry.AccountID, entry.AccountKind, entry.WalletID,
		entry.Direction, entry.Amount, entry.Category, entry.Description,
		entry.Status, entry.ReferenceID, entry.MovieID, entry.TheaterID))
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return stored, nil
}

// ListByAccount returns a page of entries for an account, newest first,
// together with the total count for pagination.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]model.WalletTransaction, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM wallet_transactions WHERE account_id = $1`, accountID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions for %s: %w", accountID, err)
	}

	query := `SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions for %s: %w", accountID, err)
	}
	defer rows.Close()

	items := []model.WalletTransaction{}
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		items = append(items, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return items, total, nil
}

// FindMostRecent returns the latest entry for an account.
// Returns service.ErrTransactionNotFound when the account has no entries.
func (r *TransactionRepository) FindMostRecent(ctx context.Context, accountID string) (*model.WalletTransaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT 1`

	entry, err := scanTransaction(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find most recent transaction for %s: %w", accountID, err)
	}
	return entry, nil
}

// UpdateStatus sets the settlement status of an entry. Setting the status it
// already has is a no-op, so the operation is idempotent.
// Returns service.ErrTransactionNotFound if the entry does not exist.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, transactionID string, status model.TransactionStatus) (*model.WalletTransaction, error) {
	query := `UPDATE wallet_transactions
		SET status = $1, updated_at = now()
		WHERE transaction_id = $2
		RETURNING ` + transactionColumns

	entry, err := scanTransaction(r.pool.QueryRow(ctx, query, status, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("update transaction status %s: %w", transactionID, err)
	}
	return entry, nil
}
