package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhishekdk62/cineora-ledger/internal/model"
)

const (
	minPageSize = 1
	maxPageSize = 100
)

// TransactionService is the append-only recorder for money movement. It does
// not touch wallet balances; the wallet service pairs the two when it mutates
// a balance, and external collaborators (settlement, revenue reporting) call
// Record directly.
type TransactionService struct {
	repo TransactionRepositoryInterface
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(repo TransactionRepositoryInterface) *TransactionService {
	return &TransactionService{repo: repo}
}

// Record validates and appends a ledger entry. Status defaults to completed
// and the transaction id is generated here; two identical calls produce two
// rows (there is no idempotency key).
func (s *TransactionService) Record(ctx context.Context, req *model.RecordTransactionRequest) (*model.WalletTransaction, error) {
	if req == nil || req.Amount == nil {
		return nil, ErrInvalidRequest
	}
	if *req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	kind, err := model.ParseAccountKind(req.AccountKind)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	direction := model.Direction(req.Direction)
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidRequest, req.Direction)
	}
	category := model.Category(req.Category)
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidRequest, req.Category)
	}
	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed wallet id", ErrInvalidRequest)
	}
	status := model.TransactionStatusCompleted
	if req.Status != "" {
		status = model.TransactionStatus(req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, req.Status)
		}
	}

	entry := &model.WalletTransaction{
		TransactionID: model.NewTransactionID(time.Now()),
		AccountID:     req.AccountID,
		AccountKind:   kind,
		WalletID:      walletID,
		Direction:     direction,
		Amount:        *req.Amount,
		Category:      category,
		Description:   req.Description,
		Status:        status,
		ReferenceID:   req.ReferenceID,
		MovieID:       req.MovieID,
		TheaterID:     req.TheaterID,
	}
	return s.repo.Insert(ctx, entry)
}

// ValidatePage normalizes and checks pagination input shared by the list
// endpoints: page must be >= 1, pageSize within [1,100].
func ValidatePage(page, pageSize int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be >= 1", ErrInvalidRequest)
	}
	if pageSize < minPageSize || pageSize > maxPageSize {
		return fmt.Errorf("%w: page_size must be between %d and %d", ErrInvalidRequest, minPageSize, maxPageSize)
	}
	return nil
}

// TotalPages computes the page count for a total and page size.
func TotalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// List returns a page of entries for an account, newest first.
func (s *TransactionService) List(ctx context.Context, accountID string, page, pageSize int) (*model.TransactionListResponse, error) {
	if accountID == "" {
		return nil, ErrInvalidRequest
	}
	if err := ValidatePage(page, pageSize); err != nil {
		return nil, err
	}

	items, total, err := s.repo.ListByAccount(ctx, accountID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return &model.TransactionListResponse{
		Items:      items,
		Total:      total,
		TotalPages: TotalPages(total, pageSize),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// FindMostRecent returns the latest entry for an account.
// Returns ErrTransactionNotFound when the account has none.
func (s *TransactionService) FindMostRecent(ctx context.Context, accountID string) (*model.WalletTransaction, error) {
	if accountID == "" {
		return nil, ErrInvalidRequest
	}
	return s.repo.FindMostRecent(ctx, accountID)
}

// UpdateStatus sets the settlement status of an entry; repeating the same
// status is a no-op.
func (s *TransactionService) UpdateStatus(ctx context.Context, transactionID string, status model.TransactionStatus) (*model.WalletTransaction, error) {
	if transactionID == "" {
		return nil, ErrInvalidRequest
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, status)
	}
	return s.repo.UpdateStatus(ctx, transactionID, status)
}
