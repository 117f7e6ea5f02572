package model

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is a percentage discount code scoped to one or more theaters, with
// a usage cap and an expiry. Codes are stored uppercased.
type Coupon struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	DiscountPercent   int       `json:"discount_percent"`
	MinAmount         int64     `json:"min_amount"`
	ExpiresAt         time.Time `json:"expires_at"`
	TheaterIDs        []string  `json:"theater_ids"`
	MaxUsageCount     int       `json:"max_usage_count"`
	CurrentUsageCount int       `json:"current_usage_count"`
	IsUsed            bool      `json:"is_used"`
	IsActive          bool      `json:"is_active"`
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AppliesToTheater reports whether theaterID is in the coupon's scope list.
func (c *Coupon) AppliesToTheater(theaterID string) bool {
	for _, id := range c.TheaterIDs {
		if id == theaterID {
			return true
		}
	}
	return false
}

// Usable reports whether the coupon can still be redeemed for the given
// theater at the given instant. The atomic redemption guard in the repository
// re-checks all of this inside a single UPDATE; this helper exists for
// read-only validation and error classification.
func (c *Coupon) Usable(theaterID string, now time.Time) bool {
	return c.IsActive &&
		now.Before(c.ExpiresAt) &&
		c.CurrentUsageCount < c.MaxUsageCount &&
		c.AppliesToTheater(theaterID)
}

// DiscountFor computes the discount in minor units for a booking total,
// rounding half up.
func (c *Coupon) DiscountFor(totalAmount int64) int64 {
	return (totalAmount*int64(c.DiscountPercent) + 50) / 100
}

// CreateCouponRequest is the DTO for creating a coupon.
type CreateCouponRequest struct {
	Code            string    `json:"code" validate:"required,notblank,max=50"`
	Name            string    `json:"name" validate:"required,notblank,max=255"`
	Description     string    `json:"description" validate:"max=500"`
	DiscountPercent *int      `json:"discount_percent" validate:"required,gte=1,lte=100"`
	MinAmount       int64     `json:"min_amount" validate:"gte=0"`
	ExpiresAt       time.Time `json:"expires_at" validate:"required"`
	TheaterIDs      []string  `json:"theater_ids" validate:"required,min=1,dive,required,notblank"`
	MaxUsageCount   *int      `json:"max_usage_count" validate:"required,gte=1"`
	CreatedBy       string    `json:"created_by" validate:"required,notblank,max=255"`
}

// UpdateCouponRequest is a patch; nil fields are left unchanged.
type UpdateCouponRequest struct {
	Code            *string    `json:"code" validate:"omitempty,notblank,max=50"`
	Name            *string    `json:"name" validate:"omitempty,notblank,max=255"`
	Description     *string    `json:"description" validate:"omitempty,max=500"`
	DiscountPercent *int       `json:"discount_percent" validate:"omitempty,gte=1,lte=100"`
	MinAmount       *int64     `json:"min_amount" validate:"omitempty,gte=0"`
	ExpiresAt       *time.Time `json:"expires_at"`
	TheaterIDs      []string   `json:"theater_ids" validate:"omitempty,min=1,dive,required,notblank"`
	MaxUsageCount   *int       `json:"max_usage_count" validate:"omitempty,gte=1"`
	IsActive        *bool      `json:"is_active"`
}

// ValidateCouponRequest is the DTO for the read-only validation check.
type ValidateCouponRequest struct {
	Code      string `json:"code" validate:"required,notblank,max=50"`
	TheaterID string `json:"theater_id" validate:"required,notblank,max=255"`
}

// ValidateCouponResponse deliberately carries no failure reason: callers see
// one generic message regardless of which condition failed.
type ValidateCouponResponse struct {
	Valid   bool    `json:"valid"`
	Coupon  *Coupon `json:"coupon,omitempty"`
	Message string  `json:"message,omitempty"`
}

// RedeemCouponRequest is the DTO for consuming one use of a coupon.
type RedeemCouponRequest struct {
	Code        string `json:"code" validate:"required,notblank,max=50"`
	TheaterID   string `json:"theater_id" validate:"required,notblank,max=255"`
	TotalAmount *int64 `json:"total_amount" validate:"required,gt=0"`
	AccountID   string `json:"account_id" validate:"required,notblank,max=255"`
}

// RedeemCouponResponse reports the redeemed coupon and the computed discount.
type RedeemCouponResponse struct {
	Coupon         *Coupon `json:"coupon"`
	DiscountAmount int64   `json:"discount_amount"`
}

// CouponListResponse is a page of coupons.
type CouponListResponse struct {
	Items      []Coupon `json:"items"`
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}
