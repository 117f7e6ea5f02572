package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction says which way money moved relative to the wallet.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// Category classifies why money moved.
type Category string

const (
	CategoryBooking    Category = "booking"
	CategoryRefund     Category = "refund"
	CategoryTopup      Category = "topup"
	CategoryWithdrawal Category = "withdrawal"
	CategoryRevenue    Category = "revenue"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryBooking, CategoryRefund, CategoryTopup, CategoryWithdrawal, CategoryRevenue:
		return true
	}
	return false
}

// TransactionStatus is the settlement state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	}
	return false
}

// WalletTransaction is one immutable ledger entry. Apart from Status (used by
// asynchronous settlement flows) the record never changes after creation.
type WalletTransaction struct {
	TransactionID string            `json:"transaction_id"`
	AccountID     string            `json:"account_id"`
	AccountKind   AccountKind       `json:"account_kind"`
	WalletID      uuid.UUID         `json:"wallet_id"`
	Direction     Direction         `json:"direction"`
	Amount        int64             `json:"amount"`
	Category      Category          `json:"category"`
	Description   string            `json:"description"`
	Status        TransactionStatus `json:"status"`
	ReferenceID   string            `json:"reference_id,omitempty"`
	MovieID       string            `json:"movie_id,omitempty"`
	TheaterID     string            `json:"theater_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewTransactionID builds a human-traceable transaction id:
// TXN-<UTC timestamp>-<random suffix>, e.g. TXN-20260901143025-7F3A9C.
func NewTransactionID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "TXN-" + now.UTC().Format("20060102150405") + "-" + suffix
}

// RecordTransactionRequest is the DTO for appending a ledger entry.
type RecordTransactionRequest struct {
	AccountID   string `json:"account_id" validate:"required,notblank,max=255"`
	AccountKind string `json:"account_kind" validate:"required,oneof=customer owner admin"`
	WalletID    string `json:"wallet_id" validate:"required,uuid4"`
	Direction   string `json:"direction" validate:"required,oneof=credit debit"`
	Amount      *int64 `json:"amount" validate:"required,gt=0"`
	Category    string `json:"category" validate:"required,oneof=booking refund topup withdrawal revenue"`
	Description string `json:"description" validate:"max=500"`
	Status      string `json:"status" validate:"omitempty,oneof=pending completed failed"`
	ReferenceID string `json:"reference_id" validate:"max=255"`
	MovieID     string `json:"movie_id" validate:"max=255"`
	TheaterID   string `json:"theater_id" validate:"max=255"`
}

// UpdateTransactionStatusRequest is the DTO for settlement status corrections.
type UpdateTransactionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed failed"`
}

// TransactionListResponse is a page of ledger entries, newest first.
type TransactionListResponse struct {
	Items      []WalletTransaction `json:"items"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"total_pages"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}
