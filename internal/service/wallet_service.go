package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhishekdk62/cineora-ledger/internal/model"
	"github.com/abhishekdk62/cineora-ledger/pkg/database"
)

// WalletRepositoryInterface defines the interface for wallet data access.
type WalletRepositoryInterface interface {
	Insert(ctx context.Context, wallet *model.Wallet) (*model.Wallet, error)
	Get(ctx context.Context, accountID string, kind model.AccountKind) (*model.Wallet, error)
	Credit(ctx context.Context, q database.TxQuerier, accountID string, kind model.AccountKind, amount int64) (*model.Wallet, error)
	Debit(ctx context.Context, q database.TxQuerier, accountID string, kind model.AccountKind, amount int64) (*model.Wallet, error)
	SetStatus(ctx context.Context, accountID string, kind model.AccountKind, status model.WalletStatus) (*model.Wallet, error)
}

// TransactionRepositoryInterface defines the interface for ledger data access.
type TransactionRepositoryInterface interface {
	Insert(ctx context.Context, entry *model.WalletTransaction) (*model.WalletTransaction, error)
	InsertTx(ctx context.Context, q database.TxQuerier, entry *model.WalletTransaction) (*model.WalletTransaction, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]model.WalletTransaction, int, error)
	FindMostRecent(ctx context.Context, accountID string) (*model.WalletTransaction, error)
	UpdateStatus(ctx context.Context, transactionID string, status model.TransactionStatus) (*model.WalletTransaction, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WalletService owns balance mutation rules for accounts. Every credit and
// debit writes its ledger entry in the same database transaction as the
// balance change, so the two can never diverge.
type WalletService struct {
	pool     TxBeginner
	wallets  WalletRepositoryInterface
	ledger   TransactionRepositoryInterface
	currency string
}

// NewWalletService creates a new WalletService with the given pool and repositories.
func NewWalletService(pool *pgxpool.Pool, wallets WalletRepositoryInterface, ledger TransactionRepositoryInterface, currency string) *WalletService {
	return &WalletService{pool: pool, wallets: wallets, ledger: ledger, currency: currency}
}

// NewWalletServiceWithTxBeginner creates a WalletService with a custom
// TxBeginner. Primarily used for testing.
func NewWalletServiceWithTxBeginner(pool TxBeginner, wallets WalletRepositoryInterface, ledger TransactionRepositoryInterface, currency string) *WalletService {
	return &WalletService{pool: pool, wallets: wallets, ledger: ledger, currency: currency}
}

// Create creates a zero-balance active wallet for the account.
// Returns ErrWalletExists if the account already has one.
func (s *WalletService) Create(ctx context.Context, accountID string, kind model.AccountKind) (*model.Wallet, error) {
	if accountID == "" || !kind.Valid() {
		return nil, ErrInvalidRequest
	}

	wallet := &model.Wallet{
		ID:          uuid.New(),
		AccountID:   accountID,
		AccountKind: kind,
		Currency:    s.currency,
		Status:      model.WalletStatusActive,
	}
	return s.wallets.Insert(ctx, wallet)
}

// GetBalance returns the wallet snapshot for an account.
// Returns ErrWalletNotFound if the account has no wallet.
func (s *WalletService) GetBalance(ctx context.Context, accountID string, kind model.AccountKind) (*model.Wallet, error) {
	return s.wallets.Get(ctx, accountID, kind)
}

// MutationOptions carries optional ledger metadata for a balance change.
type MutationOptions struct {
	Category    model.Category
	Description string
	ReferenceID string
	MovieID     string
	TheaterID   string
}

// Credit increases the balance and appends the matching ledger entry in one
// database transaction.
// Returns ErrInvalidAmount for non-positive amounts, ErrWalletNotFound when
// the account has no wallet.
func (s *WalletService) Credit(ctx context.Context, accountID string, kind model.AccountKind, amount int64, opts MutationOptions) (*model.Wallet, *model.WalletTransaction, error) {
	return s.mutate(ctx, accountID, kind, amount, model.DirectionCredit, opts)
}

// Debit decreases the balance with an atomic non-negative guard and appends
// the matching ledger entry in one database transaction.
// Returns ErrInvalidAmount, ErrWalletNotFound or ErrInsufficientBalance.
func (s *WalletService) Debit(ctx context.Context, accountID string, kind model.AccountKind, amount int64, opts MutationOptions) (*model.Wallet, *model.WalletTransaction, error) {
	return s.mutate(ctx, accountID, kind, amount, model.DirectionDebit, opts)
}

func (s *WalletService) mutate(ctx context.Context, accountID string, kind model.AccountKind, amount int64, direction model.Direction, opts MutationOptions) (*model.Wallet, *model.WalletTransaction, error) {
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if accountID == "" || !kind.Valid() {
		return nil, nil, ErrInvalidRequest
	}
	category := opts.Category
	if category == "" {
		if direction == model.DirectionCredit {
			category = model.CategoryTopup
		} else {
			category = model.CategoryWithdrawal
		}
	}
	if !category.Valid() {
		return nil, nil, ErrInvalidRequest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	var wallet *model.Wallet
	if direction == model.DirectionCredit {
		wallet, err = s.wallets.Credit(ctx, tx, accountID, kind, amount)
	} else {
		wallet, err = s.wallets.Debit(ctx, tx, accountID, kind, amount)
	}
	if err != nil {
		return nil, nil, err
	}

	entry, err := s.ledger.InsertTx(ctx, tx, &model.WalletTransaction{
		TransactionID: model.NewTransactionID(time.Now()),
		AccountID:     accountID,
		AccountKind:   kind,
		WalletID:      wallet.ID,
		Direction:     direction,
		Amount:        amount,
		Category:      category,
		Description:   opts.Description,
		Status:        model.TransactionStatusCompleted,
		ReferenceID:   opts.ReferenceID,
		MovieID:       opts.MovieID,
		TheaterID:     opts.TheaterID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("record ledger entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit tx: %w", err)
	}
	return wallet, entry, nil
}

// Freeze marks the wallet frozen. The status is advisory: balances stay
// intact and the account keeps its history.
// Returns ErrWalletNotFound if the account has no wallet.
func (s *WalletService) Freeze(ctx context.Context, accountID string, kind model.AccountKind) (*model.Wallet, error) {
	return s.wallets.SetStatus(ctx, accountID, kind, model.WalletStatusFrozen)
}

// Unfreeze returns the wallet to active status.
// Returns ErrWalletNotFound if the account has no wallet.
func (s *WalletService) Unfreeze(ctx context.Context, accountID string, kind model.AccountKind) (*model.Wallet, error) {
	return s.wallets.SetStatus(ctx, accountID, kind, model.WalletStatusActive)
}

// Refund computes the refund for a cancelled booking and credits it back in
// one step: pure calculation first, then the usual credit-plus-ledger
// transaction with category refund.
func (s *WalletService) Refund(ctx context.Context, accountID string, kind model.AccountKind, originalAmount int64, refundPercentage int, referenceID string) (*model.RefundResponse, error) {
	breakdown, err := CalculateRefund(originalAmount, refundPercentage)
	if err != nil {
		return nil, err
	}

	resp := &model.RefundResponse{
		RefundAmount:     breakdown.RefundAmount,
		CancellationFee:  breakdown.CancellationFee,
		RefundPercentage: breakdown.RefundPercentage,
	}
	if breakdown.RefundAmount == 0 {
		// Fully forfeited tier: nothing to credit, nothing to record.
		wallet, err := s.wallets.Get(ctx, accountID, kind)
		if err != nil {
			return nil, err
		}
		resp.Wallet = wallet
		return resp, nil
	}

	desc := fmt.Sprintf("Refund %d%% of %d", breakdown.RefundPercentage, originalAmount)
	wallet, _, err := s.Credit(ctx, accountID, kind, breakdown.RefundAmount, MutationOptions{
		Category:    model.CategoryRefund,
		Description: desc,
		ReferenceID: referenceID,
	})
	if err != nil {
		return nil, err
	}
	resp.Wallet = wallet
	return resp, nil
}
