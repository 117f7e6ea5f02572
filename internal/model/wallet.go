package model

import (
	"time"

	"github.com/google/uuid"
)

// WalletStatus is the lifecycle state of a wallet.
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "active"
	WalletStatusFrozen WalletStatus = "frozen"
	WalletStatusClosed WalletStatus = "closed"
)

// Wallet holds the balance for one (account id, account kind) pair.
// Balance is stored in minor units (paise for INR) and never goes negative;
// the repository enforces that with a conditional decrement.
type Wallet struct {
	ID          uuid.UUID    `json:"id"`
	AccountID   string       `json:"account_id"`
	AccountKind AccountKind  `json:"account_kind"`
	Balance     int64        `json:"balance"`
	Currency    string       `json:"currency"`
	Status      WalletStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreateWalletRequest is the DTO for creating a wallet.
type CreateWalletRequest struct {
	AccountID   string `json:"account_id" validate:"required,notblank,max=255"`
	AccountKind string `json:"account_kind" validate:"required,oneof=customer owner admin"`
}

// BalanceMutationRequest is the DTO for credit and debit operations.
type BalanceMutationRequest struct {
	AccountID   string `json:"account_id" validate:"required,notblank,max=255"`
	AccountKind string `json:"account_kind" validate:"required,oneof=customer owner admin"`
	Amount      *int64 `json:"amount" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=500"`
	ReferenceID string `json:"reference_id" validate:"max=255"`
}

// WalletStatusRequest is the DTO for freeze and unfreeze operations.
type WalletStatusRequest struct {
	AccountID   string `json:"account_id" validate:"required,notblank,max=255"`
	AccountKind string `json:"account_kind" validate:"required,oneof=customer owner admin"`
}

// BalanceResponse is the API response DTO for GET balance.
type BalanceResponse struct {
	AccountID   string       `json:"account_id"`
	AccountKind AccountKind  `json:"account_kind"`
	Balance     int64        `json:"balance"`
	Currency    string       `json:"currency"`
	Status      WalletStatus `json:"status"`
}

// RefundRequest is the DTO for the cancellation refund flow. The caller
// (booking workflow) supplies the policy percentage for the cancellation tier.
type RefundRequest struct {
	AccountID        string `json:"account_id" validate:"required,notblank,max=255"`
	AccountKind      string `json:"account_kind" validate:"required,oneof=customer owner admin"`
	OriginalAmount   *int64 `json:"original_amount" validate:"required,gt=0"`
	RefundPercentage *int   `json:"refund_percentage" validate:"required,gte=0,lte=100"`
	ReferenceID      string `json:"reference_id" validate:"max=255"`
}

// RefundResponse reports what was credited back and what was withheld.
type RefundResponse struct {
	RefundAmount     int64   `json:"refund_amount"`
	CancellationFee  int64   `json:"cancellation_fee"`
	RefundPercentage int     `json:"refund_percentage"`
	Wallet           *Wallet `json:"wallet"`
}

// TransferRequest is the DTO for moving funds between two accounts.
type TransferRequest struct {
	FromAccountID   string `json:"from_account_id" validate:"required,notblank,max=255"`
	FromAccountKind string `json:"from_account_kind" validate:"required,oneof=customer owner admin"`
	ToAccountID     string `json:"to_account_id" validate:"required,notblank,max=255"`
	ToAccountKind   string `json:"to_account_kind" validate:"required,oneof=customer owner admin"`
	Amount          *int64 `json:"amount" validate:"required,gt=0"`
	Description     string `json:"description" validate:"max=500"`
	ReferenceID     string `json:"reference_id" validate:"max=255"`
}

// TransferResponse confirms a completed transfer.
type TransferResponse struct {
	Amount          int64       `json:"amount"`
	FromAccountID   string      `json:"from_account_id"`
	FromAccountKind AccountKind `json:"from_account_kind"`
	ToAccountID     string      `json:"to_account_id"`
	ToAccountKind   AccountKind `json:"to_account_kind"`
}
