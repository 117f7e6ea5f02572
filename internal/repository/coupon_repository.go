package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhishekdk62/cineora-ledger/internal/model"
	"github.com/abhishekdk62/cineora-ledger/internal/service"
)

const couponColumns = `id, code, name, description, discount_percent, min_amount, expires_at,
	theater_ids, max_usage_count, current_usage_count, is_used, is_active, created_by, created_at, updated_at`

// CouponRepository provides data access for coupons using pgx.
//
// Redemption is a single guarded UPDATE: the usage counter can never pass the
// cap no matter how many redemptions race, because the check and the
// increment are one statement.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a CouponRepository with a custom pool
// interface. This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&c.Description,
		&c.DiscountPercent,
		&c.MinAmount,
		&c.ExpiresAt,
		&c.TheaterIDs,
		&c.MaxUsageCount,
		&c.CurrentUsageCount,
		&c.IsUsed,
		&c.IsActive,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert creates a coupon with a zero usage count.
// Returns service.ErrDuplicateCode if the code is already taken.
func (r *CouponRepository) Insert(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error) {
	query := `INSERT INTO coupons
		(id, code, name, description, discount_percent, min_amount, expires_at,
		 theater_ids, max_usage_count, current_usage_count, is_used, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, false, true, $10)
		RETURNING ` + couponColumns

	stored, err := scanCoupon(r.pool.QueryRow(ctx, query,
		coupon.ID, coupon.Code, coupon.Name, coupon.Description, coupon.DiscountPercent,
		coupon.MinAmount, coupon.ExpiresAt, coupon.TheaterIDs, coupon.MaxUsageCount, coupon.CreatedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, service.ErrDuplicateCode
		}
		return nil, fmt.Errorf("insert coupon: %w", err)
	}
	return stored, nil
}

// GetByCode retrieves a coupon by its uppercased code.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon by code %s: %w", code, err)
	}
	return coupon, nil
}

// GetByID retrieves a coupon by id.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetByID(ctx context.Context, id string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon by id %s: %w", id, err)
	}
	return coupon, nil
}

// Redeem consumes one use of a coupon. Existence, activity, expiry, remaining
// usage and theater scope are all checked inside the UPDATE itself; is_used
// flips in the same statement once the new count reaches the cap.
// Returns nil, nil when no row matched — the service re-reads the coupon to
// classify which condition failed.
func (r *CouponRepository) Redeem(ctx context.Context, code, theaterID string) (*model.Coupon, error) {
	query := `UPDATE coupons
		SET current_usage_count = current_usage_count + 1,
		    is_used = current_usage_count + 1 >= max_usage_count,
		    updated_at = now()
		WHERE code = $1
		  AND is_active
		  AND expires_at > now()
		  AND current_usage_count < max_usage_count
		  AND $2 = ANY(theater_ids)
		RETURNING ` + couponColumns

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, code, theaterID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("redeem coupon %s: %w", code, err)
	}
	return coupon, nil
}

// Update persists field changes to a coupon.
// Returns service.ErrCouponNotFound if the coupon doesn't exist and
// service.ErrDuplicateCode if a code change collides with another coupon.
func (r *CouponRepository) Update(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error) {
	query := `UPDATE coupons
		SET code = $2, name = $3, description = $4, discount_percent = $5,
		    min_amount = $6, expires_at = $7, theater_ids = $8,
		    max_usage_count = $9, is_active = $10,
		    is_used = current_usage_count >= $9,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + couponColumns

	stored, err := scanCoupon(r.pool.QueryRow(ctx, query,
		coupon.ID, coupon.Code, coupon.Name, coupon.Description, coupon.DiscountPercent,
		coupon.MinAmount, coupon.ExpiresAt, coupon.TheaterIDs, coupon.MaxUsageCount, coupon.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, service.ErrDuplicateCode
		}
		return nil, fmt.Errorf("update coupon %s: %w", coupon.ID, err)
	}
	return stored, nil
}

// Delete removes a coupon by id.
// Returns service.ErrCouponNotFound if nothing was deleted.
func (r *CouponRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

// List returns a page of coupons, newest first. Either filter may be empty:
// ownerID restricts to a creator, theaterID to coupons scoped to a theater.
func (r *CouponRepository) List(ctx context.Context, ownerID, theaterID string, limit, offset int) ([]model.Coupon, int, error) {
	where := `WHERE ($1 = '' OR created_by = $1) AND ($2 = '' OR $2 = ANY(theater_ids))`

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupons `+where, ownerID, theaterID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count coupons: %w", err)
	}

	query := `SELECT ` + couponColumns + `
		FROM coupons ` + where + `
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, ownerID, theaterID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	items := []model.Coupon{}
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan coupon row: %w", err)
		}
		items = append(items, *coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate coupon rows: %w", err)
	}

	return items, total, nil
}
