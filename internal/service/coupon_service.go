package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/abhishekdk62/cineora-ledger/internal/model"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	GetByID(ctx context.Context, id string) (*model.Coupon, error)
	Redeem(ctx context.Context, code, theaterID string) (*model.Coupon, error)
	Update(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, ownerID, theaterID string, limit, offset int) ([]model.Coupon, int, error)
}

// CouponCacheInterface is the read cache in front of coupon validation.
// A nil implementation is allowed; the service treats every miss the same.
type CouponCacheInterface interface {
	Get(ctx context.Context, code string) (*model.Coupon, error)
	Set(ctx context.Context, coupon *model.Coupon) error
	Invalidate(ctx context.Context, code string) error
}

// CouponInvalidMessage is the single message shown for any failed coupon
// validation. The conditions (missing, inactive, expired, exhausted, out of
// scope) are deliberately not distinguished to callers.
const CouponInvalidMessage = "coupon doesn't exist or has expired"

// CouponService owns the coupon lifecycle: creation, updates, deletion and
// safe redemption with a usage cap.
type CouponService struct {
	repo  CouponRepositoryInterface
	cache CouponCacheInterface
}

// NewCouponService creates a new CouponService. cache may be nil.
func NewCouponService(repo CouponRepositoryInterface, cache CouponCacheInterface) *CouponService {
	return &CouponService{repo: repo, cache: cache}
}

// NormalizeCode uppercases and trims a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create creates a coupon from the request. The code is stored uppercased; a
// blank description gets a generated one.
// Returns ErrInvalidRequest for bad input and ErrDuplicateCode when the code
// is taken.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if req == nil || req.DiscountPercent == nil || req.MaxUsageCount == nil {
		return nil, ErrInvalidRequest
	}
	if *req.DiscountPercent < 1 || *req.DiscountPercent > 100 {
		return nil, fmt.Errorf("%w: discount percent must be within 1-100", ErrInvalidRequest)
	}
	if *req.MaxUsageCount < 1 {
		return nil, fmt.Errorf("%w: max usage count must be at least 1", ErrInvalidRequest)
	}
	if len(req.TheaterIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one theater is required", ErrInvalidRequest)
	}
	if !req.ExpiresAt.After(time.Now()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", ErrInvalidRequest)
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = fmt.Sprintf("Get %d%% off on your booking with %s", *req.DiscountPercent, req.Name)
	}

	coupon := &model.Coupon{
		ID:              uuid.New(),
		Code:            NormalizeCode(req.Code),
		Name:            req.Name,
		Description:     description,
		DiscountPercent: *req.DiscountPercent,
		MinAmount:       req.MinAmount,
		ExpiresAt:       req.ExpiresAt,
		TheaterIDs:      req.TheaterIDs,
		MaxUsageCount:   *req.MaxUsageCount,
		CreatedBy:       req.CreatedBy,
	}
	return s.repo.Insert(ctx, coupon)
}

// Validate is the read-only usability check for a coupon at a theater.
// Failures are flattened into one generic message; the real reason is logged
// at debug level only.
func (s *CouponService) Validate(ctx context.Context, code, theaterID string) (*model.ValidateCouponResponse, error) {
	code = NormalizeCode(code)

	coupon, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	invalid := &model.ValidateCouponResponse{Valid: false, Message: CouponInvalidMessage}
	if coupon == nil {
		log.Debug().Str("code", code).Msg("coupon validation failed: not found")
		return invalid, nil
	}
	if reason := classifyUnusable(coupon, theaterID, time.Now()); reason != nil {
		log.Debug().Str("code", code).Str("theater_id", theaterID).AnErr("reason", reason).
			Msg("coupon validation failed")
		return invalid, nil
	}

	return &model.ValidateCouponResponse{Valid: true, Coupon: coupon}, nil
}

// lookup reads through the cache when one is configured. Cache errors are
// logged and ignored: validation falls back to the database.
func (s *CouponService) lookup(ctx context.Context, code string) (*model.Coupon, error) {
	if s.cache != nil {
		if coupon, err := s.cache.Get(ctx, code); err == nil && coupon != nil {
			return coupon, nil
		} else if err != nil {
			log.Warn().Err(err).Str("code", code).Msg("coupon cache read failed")
		}
	}

	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon != nil && s.cache != nil {
		if err := s.cache.Set(ctx, coupon); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("coupon cache write failed")
		}
	}
	return coupon, nil
}

// classifyUnusable returns the sentinel describing why the coupon cannot be
// redeemed at the theater, or nil when it is usable. Order matches the
// validation chain: active, expiry, usage, scope.
func classifyUnusable(coupon *model.Coupon, theaterID string, now time.Time) error {
	switch {
	case !coupon.IsActive:
		return ErrCouponInactive
	case !now.Before(coupon.ExpiresAt):
		return ErrCouponExpired
	case coupon.CurrentUsageCount >= coupon.MaxUsageCount:
		return ErrUsageExhausted
	case !coupon.AppliesToTheater(theaterID):
		return ErrTheaterNotEligible
	}
	return nil
}

// Redeem consumes one use of a coupon for a booking. All usability
// conditions are re-checked atomically inside the repository's guarded
// increment; when the increment matches no row, the coupon is re-read purely
// to pick the right error for the caller.
// Returns ErrInvalidAmount, ErrBelowMinAmount, ErrCouponNotFound,
// ErrCouponInactive, ErrCouponExpired, ErrUsageExhausted or
// ErrTheaterNotEligible.
func (s *CouponService) Redeem(ctx context.Context, code, theaterID string, totalAmount int64, accountID string) (*model.RedeemCouponResponse, error) {
	if totalAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	code = NormalizeCode(code)

	// Min-amount check reads the coupon first; the usage guard itself stays
	// in the single UPDATE below.
	existing, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if existing == nil {
		return nil, ErrCouponNotFound
	}
	if totalAmount < existing.MinAmount {
		return nil, ErrBelowMinAmount
	}

	coupon, err := s.repo.Redeem(ctx, code, theaterID)
	if err != nil {
		return nil, fmt.Errorf("redeem coupon: %w", err)
	}
	if coupon == nil {
		// The guard rejected the row; classify against a fresh read.
		current, err := s.repo.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("get coupon: %w", err)
		}
		if current == nil {
			return nil, ErrCouponNotFound
		}
		if reason := classifyUnusable(current, theaterID, time.Now()); reason != nil {
			return nil, reason
		}
		// Guard and read disagree; a concurrent redeem won the race.
		return nil, ErrUsageExhausted
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, code); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("coupon cache invalidation failed")
		}
	}

	log.Info().
		Str("code", code).
		Str("theater_id", theaterID).
		Str("account_id", accountID).
		Int("usage", coupon.CurrentUsageCount).
		Int("max_usage", coupon.MaxUsageCount).
		Msg("coupon redeemed")

	return &model.RedeemCouponResponse{
		Coupon:         coupon,
		DiscountAmount: coupon.DiscountFor(totalAmount),
	}, nil
}

// Update applies a patch to a coupon. A code change is re-checked for
// uniqueness by the repository.
func (s *CouponService) Update(ctx context.Context, id string, req *model.UpdateCouponRequest) (*model.Coupon, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	coupon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldCode := coupon.Code

	if req.Code != nil {
		coupon.Code = NormalizeCode(*req.Code)
	}
	if req.Name != nil {
		coupon.Name = *req.Name
	}
	if req.Description != nil {
		coupon.Description = *req.Description
	}
	if req.DiscountPercent != nil {
		if *req.DiscountPercent < 1 || *req.DiscountPercent > 100 {
			return nil, fmt.Errorf("%w: discount percent must be within 1-100", ErrInvalidRequest)
		}
		coupon.DiscountPercent = *req.DiscountPercent
	}
	if req.MinAmount != nil {
		coupon.MinAmount = *req.MinAmount
	}
	if req.ExpiresAt != nil {
		coupon.ExpiresAt = *req.ExpiresAt
	}
	if len(req.TheaterIDs) > 0 {
		coupon.TheaterIDs = req.TheaterIDs
	}
	if req.MaxUsageCount != nil {
		if *req.MaxUsageCount < 1 {
			return nil, fmt.Errorf("%w: max usage count must be at least 1", ErrInvalidRequest)
		}
		coupon.MaxUsageCount = *req.MaxUsageCount
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	updated, err := s.repo.Update(ctx, coupon)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		for _, code := range []string{oldCode, updated.Code} {
			if err := s.cache.Invalidate(ctx, code); err != nil {
				log.Warn().Err(err).Str("code", code).Msg("coupon cache invalidation failed")
			}
		}
	}
	return updated, nil
}

// Delete removes a coupon. Only the creator may delete it.
// Returns ErrForbidden when requestingOwnerID is not the creator.
func (s *CouponService) Delete(ctx context.Context, id, requestingOwnerID string) error {
	coupon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if coupon.CreatedBy != requestingOwnerID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, coupon.Code); err != nil {
			log.Warn().Err(err).Str("code", coupon.Code).Msg("coupon cache invalidation failed")
		}
	}
	return nil
}

// ListAll returns a page of all coupons, newest first.
func (s *CouponService) ListAll(ctx context.Context, page, pageSize int) (*model.CouponListResponse, error) {
	return s.list(ctx, "", "", page, pageSize)
}

// ListByOwner returns a page of coupons created by one owner.
func (s *CouponService) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) (*model.CouponListResponse, error) {
	if ownerID == "" {
		return nil, ErrInvalidRequest
	}
	return s.list(ctx, ownerID, "", page, pageSize)
}

// ListByTheater returns a page of coupons scoped to one theater.
func (s *CouponService) ListByTheater(ctx context.Context, theaterID string, page, pageSize int) (*model.CouponListResponse, error) {
	if theaterID == "" {
		return nil, ErrInvalidRequest
	}
	return s.list(ctx, "", theaterID, page, pageSize)
}

func (s *CouponService) list(ctx context.Context, ownerID, theaterID string, page, pageSize int) (*model.CouponListResponse, error) {
	if err := ValidatePage(page, pageSize); err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, ownerID, theaterID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	return &model.CouponListResponse{
		Items:      items,
		Total:      total,
		TotalPages: TotalPages(total, pageSize),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}
