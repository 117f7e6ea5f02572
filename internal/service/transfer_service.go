package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/abhishekdk62/cineora-ledger/internal/model"
)

// TransferService moves funds between two accounts. The debit, the credit and
// both ledger entries run in one database transaction, so a failure anywhere
// rolls the whole operation back; there is no window in which money has left
// one wallet without reaching the other.
type TransferService struct {
	pool    TxBeginner
	wallets WalletRepositoryInterface
	ledger  TransactionRepositoryInterface
}

// NewTransferService creates a new TransferService.
func NewTransferService(pool *pgxpool.Pool, wallets WalletRepositoryInterface, ledger TransactionRepositoryInterface) *TransferService {
	return &TransferService{pool: pool, wallets: wallets, ledger: ledger}
}

// NewTransferServiceWithTxBeginner creates a TransferService with a custom
// TxBeginner. Primarily used for testing.
func NewTransferServiceWithTxBeginner(pool TxBeginner, wallets WalletRepositoryInterface, ledger TransactionRepositoryInterface) *TransferService {
	return &TransferService{pool: pool, wallets: wallets, ledger: ledger}
}

// TransferInput identifies one side of a transfer.
type TransferInput struct {
	AccountID   string
	AccountKind model.AccountKind
}

// Transfer debits from and credits to as a single atomic operation.
// Returns ErrInvalidAmount, ErrWalletNotFound (either side) or
// ErrInsufficientBalance. Both sides get a ledger entry sharing one
// reference id so reports can pair them.
func (s *TransferService) Transfer(ctx context.Context, from, to TransferInput, amount int64, description, referenceID string) (*model.TransferResponse, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if from.AccountID == "" || to.AccountID == "" || !from.AccountKind.Valid() || !to.AccountKind.Valid() {
		return nil, ErrInvalidRequest
	}
	if from.AccountID == to.AccountID && from.AccountKind == to.AccountKind {
		return nil, fmt.Errorf("%w: cannot transfer to the same wallet", ErrInvalidRequest)
	}
	if description == "" {
		description = fmt.Sprintf("Transfer to %s", to.AccountID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	fromWallet, err := s.wallets.Debit(ctx, tx, from.AccountID, from.AccountKind, amount)
	if err != nil {
		return nil, err
	}

	toWallet, err := s.wallets.Credit(ctx, tx, to.AccountID, to.AccountKind, amount)
	if err != nil {
		// Nothing to compensate: the enclosing transaction rolls the debit back.
		return nil, err
	}

	now := time.Now()
	_, err = s.ledger.InsertTx(ctx, tx, &model.WalletTransaction{
		TransactionID: model.NewTransactionID(now),
		AccountID:     from.AccountID,
		AccountKind:   from.AccountKind,
		WalletID:      fromWallet.ID,
		Direction:     model.DirectionDebit,
		Amount:        amount,
		Category:      model.CategoryWithdrawal,
		Description:   description,
		Status:        model.TransactionStatusCompleted,
		ReferenceID:   referenceID,
	})
	if err != nil {
		return nil, fmt.Errorf("record debit entry: %w", err)
	}

	_, err = s.ledger.InsertTx(ctx, tx, &model.WalletTransaction{
		TransactionID: model.NewTransactionID(now),
		AccountID:     to.AccountID,
		AccountKind:   to.AccountKind,
		WalletID:      toWallet.ID,
		Direction:     model.DirectionCredit,
		Amount:        amount,
		Category:      model.CategoryRevenue,
		Description:   description,
		Status:        model.TransactionStatusCompleted,
		ReferenceID:   referenceID,
	})
	if err != nil {
		return nil, fmt.Errorf("record credit entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		// The commit failed, so neither balance changed. This still needs
		// loud logging: the caller saw a transfer attempt that went nowhere.
		log.Error().
			Err(err).
			Str("from_account", from.AccountID).
			Str("to_account", to.AccountID).
			Int64("amount", amount).
			Msg("transfer commit failed, transaction rolled back")
		return nil, fmt.Errorf("commit transfer: %w", err)
	}

	return &model.TransferResponse{
		Amount:          amount,
		FromAccountID:   from.AccountID,
		FromAccountKind: from.AccountKind,
		ToAccountID:     to.AccountID,
		ToAccountKind:   to.AccountKind,
	}, nil
}
