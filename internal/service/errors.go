package service

import "errors"

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidAmount is returned when a monetary amount is zero or negative
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrWalletExists is returned when a wallet already exists for the (account id, account kind) pair
	ErrWalletExists = errors.New("wallet already exists")

	// ErrWalletNotFound is returned when no wallet exists for the account
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientBalance is returned when a debit exceeds the wallet balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrTransactionNotFound is returned when a ledger entry cannot be found
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateCode is returned when creating or renaming a coupon to a code that already exists
	ErrDuplicateCode = errors.New("coupon code already exists")

	// ErrCouponNotFound is returned when a coupon cannot be found
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponInactive is returned when redeeming a coupon that has been deactivated
	ErrCouponInactive = errors.New("coupon is inactive")

	// ErrCouponExpired is returned when redeeming a coupon past its expiry
	ErrCouponExpired = errors.New("coupon has expired")

	// ErrUsageExhausted is returned when a coupon has reached its usage limit
	ErrUsageExhausted = errors.New("coupon usage limit reached")

	// ErrTheaterNotEligible is returned when the target theater is outside the coupon's scope
	ErrTheaterNotEligible = errors.New("coupon not valid for this theater")

	// ErrBelowMinAmount is returned when the booking total is under the coupon's qualifying minimum
	ErrBelowMinAmount = errors.New("booking total below coupon minimum amount")

	// ErrForbidden is returned when an account attempts an operation it does not own
	ErrForbidden = errors.New("operation not permitted")
)
