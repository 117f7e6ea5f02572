package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekdk62/cineora-ledger/internal/model"
)

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn    func(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error)
	getByCodeFn func(ctx context.Context, code string) (*model.Coupon, error)
	getByIDFn   func(ctx context.Context, id string) (*model.Coupon, error)
	redeemFn    func(ctx context.Context, code, theaterID string) (*model.Coupon, error)
	updateFn    func(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error)
	deleteFn    func(ctx context.Context, id string) error
	listFn      func(ctx context.Context, ownerID, theaterID string, limit, offset int) ([]model.Coupon, int, error)
}

func (m *mockCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, coupon)
	}
	return coupon, nil
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockCouponRepository) GetByID(ctx context.Context, id string) (*model.Coupon, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) Redeem(ctx context.Context, code, theaterID string) (*model.Coupon, error) {
	if m.redeemFn != nil {
		return m.redeemFn(ctx, code, theaterID)
	}
	return nil, nil
}

func (m *mockCouponRepository) Update(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, coupon)
	}
	return coupon, nil
}

func (m *mockCouponRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCouponRepository) List(ctx context.Context, ownerID, theaterID string, limit, offset int) ([]model.Coupon, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID, theaterID, limit, offset)
	}
	return []model.Coupon{}, 0, nil
}

// mockCouponCache is a mock implementation of CouponCacheInterface.
type mockCouponCache struct {
	getFn        func(ctx context.Context, code string) (*model.Coupon, error)
	setFn        func(ctx context.Context, coupon *model.Coupon) error
	invalidateFn func(ctx context.Context, code string) error
}

func (m *mockCouponCache) Get(ctx context.Context, code string) (*model.Coupon, error) {
	if m.getFn != nil {
		return m.getFn(ctx, code)
	}
	return nil, nil
}

func (m *mockCouponCache) Set(ctx context.Context, coupon *model.Coupon) error {
	if m.setFn != nil {
		return m.setFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponCache) Invalidate(ctx context.Context, code string) error {
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx, code)
	}
	return nil
}

func intPtr(i int) *int {
	return &i
}

func usableCoupon() *model.Coupon {
	return &model.Coupon{
		ID:              uuid.New(),
		Code:            "MOVIE20",
		Name:            "Movie Madness",
		DiscountPercent: 20,
		MinAmount:       500,
		ExpiresAt:       time.Now().Add(24 * time.Hour),
		TheaterIDs:      []string{"theater_001", "theater_002"},
		MaxUsageCount:   3,
		IsActive:        true,
		CreatedBy:       "owner_001",
	}
}

func validCreateRequest() *model.CreateCouponRequest {
	return &model.CreateCouponRequest{
		Code:            "movie20",
		Name:            "Movie Madness",
		DiscountPercent: intPtr(20),
		ExpiresAt:       time.Now().Add(24 * time.Hour),
		TheaterIDs:      []string{"theater_001"},
		MaxUsageCount:   intPtr(3),
		CreatedBy:       "owner_001",
	}
}

func TestCouponService_Create_NormalizesCodeAndGeneratesDescription(t *testing.T) {
	var captured *model.Coupon
	repo := &mockCouponRepository{
		insertFn: func(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error) {
			captured = coupon
			return coupon, nil
		},
	}

	svc := NewCouponService(repo, nil)
	req := validCreateRequest()
	req.Code = "  movie20 "

	_, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "MOVIE20", captured.Code, "code should be stored uppercased and trimmed")
	assert.Equal(t, "Get 20% off on your booking with Movie Madness", captured.Description)
}

func TestCouponService_Create_KeepsProvidedDescription(t *testing.T) {
	var captured *model.Coupon
	repo := &mockCouponRepository{
		insertFn: func(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error) {
			captured = coupon
			return coupon, nil
		},
	}

	svc := NewCouponService(repo, nil)
	req := validCreateRequest()
	req.Description = "Weekend special"

	_, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "Weekend special", captured.Description)
}

func TestCouponService_Create_InvalidInput(t *testing.T) {
	svc := NewCouponService(&mockCouponRepository{}, nil)

	tests := []struct {
		name   string
		mutate func(req *model.CreateCouponRequest)
	}{
		{"percent too high", func(req *model.CreateCouponRequest) { req.DiscountPercent = intPtr(101) }},
		{"percent zero", func(req *model.CreateCouponRequest) { req.DiscountPercent = intPtr(0) }},
		{"zero max usage", func(req *model.CreateCouponRequest) { req.MaxUsageCount = intPtr(0) }},
		{"no theaters", func(req *model.CreateCouponRequest) { req.TheaterIDs = nil }},
		{"past expiry", func(req *model.CreateCouponRequest) { req.ExpiresAt = time.Now().Add(-time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), req)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRequest), "should return ErrInvalidRequest")
		})
	}
}

func TestCouponService_Create_NilRequest(t *testing.T) {
	svc := NewCouponService(&mockCouponRepository{}, nil)

	_, err := svc.Create(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestCouponService_Create_DuplicateCode(t *testing.T) {
	repo := &mockCouponRepository{
		insertFn: func(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error) {
			return nil, ErrDuplicateCode
		},
	}

	svc := NewCouponService(repo, nil)
	_, err := svc.Create(context.Background(), validCreateRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateCode), "error should be ErrDuplicateCode")
}

func TestCouponService_Validate_Success(t *testing.T) {
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			assert.Equal(t, "MOVIE20", code, "lookup should use the normalized code")
			return usableCoupon(), nil
		},
	}

	svc := NewCouponService(repo, nil)
	resp, err := svc.Validate(context.Background(), "movie20", "theater_001")

	require.NoError(t, err)
	assert.True(t, resp.Valid)
	require.NotNil(t, resp.Coupon)
	assert.Equal(t, 20, resp.Coupon.DiscountPercent)
}

func TestCouponService_Validate_UniformFailureMessage(t *testing.T) {
	expired := usableCoupon()
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	inactive := usableCoupon()
	inactive.IsActive = false
	exhausted := usableCoupon()
	exhausted.CurrentUsageCount = exhausted.MaxUsageCount

	tests := []struct {
		name      string
		coupon    *model.Coupon
		theaterID string
	}{
		{"not found", nil, "theater_001"},
		{"expired", expired, "theater_001"},
		{"inactive", inactive, "theater_001"},
		{"usage exhausted", exhausted, "theater_001"},
		{"wrong theater", usableCoupon(), "theater_999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCouponRepository{
				getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
					return tt.coupon, nil
				},
			}

			svc := NewCouponService(repo, nil)
			resp, err := svc.Validate(context.Background(), "MOVIE20", tt.theaterID)

			require.NoError(t, err)
			assert.False(t, resp.Valid)
			assert.Equal(t, CouponInvalidMessage, resp.Message,
				"every failure must produce the same message")
			assert.Nil(t, resp.Coupon)
		})
	}
}

func TestCouponService_Validate_CacheHitSkipsRepo(t *testing.T) {
	cache := &mockCouponCache{
		getFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return usableCoupon(), nil
		},
	}
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			t.Fatal("repository should not be queried on a cache hit")
			return nil, nil
		},
	}

	svc := NewCouponService(repo, cache)
	resp, err := svc.Validate(context.Background(), "MOVIE20", "theater_001")

	require.NoError(t, err)
	assert.True(t, resp.Valid)
}

func TestCouponService_Validate_CacheErrorFallsBackToRepo(t *testing.T) {
	cache := &mockCouponCache{
		getFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return nil, errors.New("redis connection refused")
		},
	}
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return usableCoupon(), nil
		},
	}

	svc := NewCouponService(repo, cache)
	resp, err := svc.Validate(context.Background(), "MOVIE20", "theater_001")

	require.NoError(t, err)
	assert.True(t, resp.Valid, "cache failures must not break validation")
}

func TestCouponService_Redeem_Success(t *testing.T) {
	redeemed := usableCoupon()
	redeemed.CurrentUsageCount = 1
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return usableCoupon(), nil
		},
		redeemFn: func(ctx context.Context, code, theaterID string) (*model.Coupon, error) {
			return redeemed, nil
		},
	}

	svc := NewCouponService(repo, nil)
	resp, err := svc.Redeem(context.Background(), "movie20", "theater_001", 1000, "acc_001")

	require.NoError(t, err)
	assert.Equal(t, int64(200), resp.DiscountAmount, "20 percent of 1000 is 200")
	assert.Equal(t, 1, resp.Coupon.CurrentUsageCount)
}

func TestCouponService_Redeem_RoundsHalfUp(t *testing.T) {
	redeemed := usableCoupon()
	redeemed.DiscountPercent = 15
	stored := usableCoupon()
	stored.DiscountPercent = 15
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return stored, nil
		},
		redeemFn: func(ctx context.Context, code, theaterID string) (*model.Coupon, error) {
			return redeemed, nil
		},
	}

	svc := NewCouponService(repo, nil)
	resp, err := svc.Redeem(context.Background(), "MOVIE20", "theater_001", 999, "acc_001")

	require.NoError(t, err)
	// 999 * 15% = 149.85, rounded half up.
	assert.Equal(t, int64(150), resp.DiscountAmount)
}

func TestCouponService_Redeem_InvalidAmount(t *testing.T) {
	svc := NewCouponService(&mockCouponRepository{}, nil)

	_, err := svc.Redeem(context.Background(), "MOVIE20", "theater_001", 0, "acc_001")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestCouponService_Redeem_BelowMinAmount(t *testing.T) {
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return usableCoupon(), nil
		},
		redeemFn: func(ctx context.Context, code, theaterID string) (*model.Coupon, error) {
			t.Fatal("redeem should not be attempted below the minimum amount")
			return nil, nil
		},
	}

	svc := NewCouponService(repo, nil)
	_, err := svc.Redeem(context.Background(), "MOVIE20", "theater_001", 499, "acc_001")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBelowMinAmount))
}

func TestCouponService_Redeem_NotFound(t *testing.T) {
	svc := NewCouponService(&mockCouponRepository{}, nil)

	_, err := svc.Redeem(context.Background(), "NONEXISTENT", "theater_001", 1000, "acc_001")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCouponNotFound))
}

func TestCouponService_Redeem_GuardRejected_Classified(t *testing.T) {
	expired := usableCoupon()
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	exhausted := usableCoupon()
	exhausted.CurrentUsageCount = exhausted.MaxUsageCount
	inactive := usableCoupon()
	inactive.IsActive = false

	tests := []struct {
		name      string
		current   *model.Coupon
		theaterID string
		want      error
	}{
		{"expired", expired, "theater_001", ErrCouponExpired},
		{"usage exhausted", exhausted, "theater_001", ErrUsageExhausted},
		{"inactive", inactive, "theater_001", ErrCouponInactive},
		{"wrong theater", usableCoupon(), "theater_999", ErrTheaterNotEligible},
		// The re-read still looks usable: a concurrent redeem won between the
		// guard and the read.
		{"lost race", usableCoupon(), "theater_001", ErrUsageExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCouponRepository{
				getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
					return tt.current, nil
				},
				redeemFn: func(ctx context.Context, code, theaterID string) (*model.Coupon, error) {
					return nil, nil // guard matched no row
				},
			}

			svc := NewCouponService(repo, nil)
			_, err := svc.Redeem(context.Background(), "MOVIE20", tt.theaterID, 1000, "acc_001")

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
		})
	}
}

func TestCouponService_Redeem_InvalidatesCache(t *testing.T) {
	invalidated := ""
	cache := &mockCouponCache{
		invalidateFn: func(ctx context.Context, code string) error {
			invalidated = code
			return nil
		},
	}
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return usableCoupon(), nil
		},
		redeemFn: func(ctx context.Context, code, theaterID string) (*model.Coupon, error) {
			return usableCoupon(), nil
		},
	}

	svc := NewCouponService(repo, cache)
	_, err := svc.Redeem(context.Background(), "movie20", "theater_001", 1000, "acc_001")

	require.NoError(t, err)
	assert.Equal(t, "MOVIE20", invalidated)
}

func TestCouponService_Update_InvalidatesBothCodes(t *testing.T) {
	var invalidated []string
	cache := &mockCouponCache{
		invalidateFn: func(ctx context.Context, code string) error {
			invalidated = append(invalidated, code)
			return nil
		},
	}
	repo := &mockCouponRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Coupon, error) {
			return usableCoupon(), nil
		},
	}

	svc := NewCouponService(repo, cache)
	newCode := "movie25"
	_, err := svc.Update(context.Background(), uuid.NewString(), &model.UpdateCouponRequest{Code: &newCode})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"MOVIE20", "MOVIE25"}, invalidated,
		"both the old and new code must be invalidated")
}

func TestCouponService_Update_InvalidPercent(t *testing.T) {
	repo := &mockCouponRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Coupon, error) {
			return usableCoupon(), nil
		},
	}

	svc := NewCouponService(repo, nil)
	_, err := svc.Update(context.Background(), uuid.NewString(), &model.UpdateCouponRequest{
		DiscountPercent: intPtr(150),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestCouponService_Delete_OnlyCreatorMay(t *testing.T) {
	repo := &mockCouponRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Coupon, error) {
			return usableCoupon(), nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			t.Fatal("delete should not reach the repository for a non-creator")
			return nil
		},
	}

	svc := NewCouponService(repo, nil)
	err := svc.Delete(context.Background(), uuid.NewString(), "owner_999")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestCouponService_Delete_Success(t *testing.T) {
	deleted := false
	repo := &mockCouponRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Coupon, error) {
			return usableCoupon(), nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}

	svc := NewCouponService(repo, nil)
	err := svc.Delete(context.Background(), uuid.NewString(), "owner_001")

	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestCouponService_ListByOwner_RequiresOwner(t *testing.T) {
	svc := NewCouponService(&mockCouponRepository{}, nil)

	_, err := svc.ListByOwner(context.Background(), "", 1, 20)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestCouponService_ListByTheater_PassesFilter(t *testing.T) {
	var gotOwner, gotTheater string
	repo := &mockCouponRepository{
		listFn: func(ctx context.Context, ownerID, theaterID string, limit, offset int) ([]model.Coupon, int, error) {
			gotOwner, gotTheater = ownerID, theaterID
			return []model.Coupon{*usableCoupon()}, 1, nil
		},
	}

	svc := NewCouponService(repo, nil)
	resp, err := svc.ListByTheater(context.Background(), "theater_002", 1, 20)

	require.NoError(t, err)
	assert.Empty(t, gotOwner)
	assert.Equal(t, "theater_002", gotTheater)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 1, resp.TotalPages)
}
