package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/abhishekdk62/cineora-ledger/internal/model"
	"github.com/abhishekdk62/cineora-ledger/internal/service"
)

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	Validate(ctx context.Context, code, theaterID string) (*model.ValidateCouponResponse, error)
	Redeem(ctx context.Context, code, theaterID string, totalAmount int64, accountID string) (*model.RedeemCouponResponse, error)
	Update(ctx context.Context, id string, req *model.UpdateCouponRequest) (*model.Coupon, error)
	Delete(ctx context.Context, id, requestingOwnerID string) error
	ListAll(ctx context.Context, page, pageSize int) (*model.CouponListResponse, error)
	ListByOwner(ctx context.Context, ownerID string, page, pageSize int) (*model.CouponListResponse, error)
	ListByTheater(ctx context.Context, theaterID string, page, pageSize int) (*model.CouponListResponse, error)
}

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// CreateCoupon handles POST /api/coupons.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req model.CreateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	coupon, err := h.service.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateCode) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "coupon code already exists"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("code", req.Code).Msg("failed to create coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// ValidateCoupon handles POST /api/coupons/validate. Always 200: the outcome
// is in the body, and failed validations all carry the same message.
func (h *CouponHandler) ValidateCoupon(c *fiber.Ctx) error {
	var req model.ValidateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	resp, err := h.service.Validate(c.Context(), req.Code, req.TheaterID)
	if err != nil {
		log.Error().Err(err).Str("code", req.Code).Msg("failed to validate coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(resp)
}

// RedeemCoupon handles POST /api/coupons/redeem.
func (h *CouponHandler) RedeemCoupon(c *fiber.Ctx) error {
	var req model.RedeemCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	resp, err := h.service.Redeem(c.Context(), req.Code, req.TheaterID, *req.TotalAmount, req.AccountID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "total amount must be greater than zero"})
		case errors.Is(err, service.ErrBelowMinAmount):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "booking total below coupon minimum amount"})
		case errors.Is(err, service.ErrCouponNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "coupon not found"})
		case errors.Is(err, service.ErrCouponExpired):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "coupon has expired"})
		case errors.Is(err, service.ErrCouponInactive):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "coupon is inactive"})
		case errors.Is(err, service.ErrUsageExhausted):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "coupon usage limit reached"})
		case errors.Is(err, service.ErrTheaterNotEligible):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "coupon not valid for this theater"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("code", req.Code).
			Str("theater_id", req.TheaterID).
			Str("account_id", req.AccountID).
			Msg("failed to redeem coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(resp)
}

// UpdateCoupon handles PUT /api/coupons/:id.
func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	id := c.Params("id")

	var req model.UpdateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	coupon, err := h.service.Update(c.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "coupon not found"})
		case errors.Is(err, service.ErrDuplicateCode):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "coupon code already exists"})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("coupon_id", id).Msg("failed to update coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(coupon)
}

// DeleteCoupon handles DELETE /api/coupons/:id. The requesting owner comes
// from the pre-authenticated caller via the X-Owner-ID header.
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id := c.Params("id")
	ownerID := c.Get("X-Owner-ID")
	if ownerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: X-Owner-ID header is required"})
	}

	if err := h.service.Delete(c.Context(), id, ownerID); err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "coupon not found"})
		case errors.Is(err, service.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the coupon creator can delete it"})
		}
		log.Error().Err(err).Str("coupon_id", id).Str("owner_id", ownerID).Msg("failed to delete coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListCoupons handles GET /api/coupons.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	return h.list(c, func(ctx context.Context, page, pageSize int) (*model.CouponListResponse, error) {
		return h.service.ListAll(ctx, page, pageSize)
	})
}

// ListCouponsByOwner handles GET /api/coupons/owner/:ownerId.
func (h *CouponHandler) ListCouponsByOwner(c *fiber.Ctx) error {
	ownerID := c.Params("ownerId")
	return h.list(c, func(ctx context.Context, page, pageSize int) (*model.CouponListResponse, error) {
		return h.service.ListByOwner(ctx, ownerID, page, pageSize)
	})
}

// ListCouponsByTheater handles GET /api/coupons/theater/:theaterId.
func (h *CouponHandler) ListCouponsByTheater(c *fiber.Ctx) error {
	theaterID := c.Params("theaterId")
	return h.list(c, func(ctx context.Context, page, pageSize int) (*model.CouponListResponse, error) {
		return h.service.ListByTheater(ctx, theaterID, page, pageSize)
	})
}

func (h *CouponHandler) list(c *fiber.Ctx, fn func(ctx context.Context, page, pageSize int) (*model.CouponListResponse, error)) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 20)

	resp, err := fn(c.Context(), page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Msg("failed to list coupons")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(resp)
}
