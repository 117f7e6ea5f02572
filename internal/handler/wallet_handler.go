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

// WalletServiceInterface defines the interface for wallet business logic.
type WalletServiceInterface interface {
	Create(ctx context.Context, accountID string, kind model.AccountKind) (*model.Wallet, error)
	GetBalance(ctx context.Context, accountID string, kind model.AccountKind) (*model.Wallet, error)
	Credit(ctx context.Context, accountID string, kind model.AccountKind, amount int64, opts service.MutationOptions) (*model.Wallet, *model.WalletTransaction, error)
	Debit(ctx context.Context, accountID string, kind model.AccountKind, amount int64, opts service.MutationOptions) (*model.Wallet, *model.WalletTransaction, error)
	Freeze(ctx context.Context, accountID string, kind model.AccountKind) (*model.Wallet, error)
	Unfreeze(ctx context.Context, accountID string, kind model.AccountKind) (*model.Wallet, error)
	Refund(ctx context.Context, accountID string, kind model.AccountKind, originalAmount int64, refundPercentage int, referenceID string) (*model.RefundResponse, error)
}

// WalletHandler handles HTTP requests for wallet operations.
type WalletHandler struct {
	service   WalletServiceInterface
	validator *validator.Validate
}

// NewWalletHandler creates a new WalletHandler with the given service and validator.
func NewWalletHandler(svc WalletServiceInterface, v *validator.Validate) *WalletHandler {
	return &WalletHandler{service: svc, validator: v}
}

// CreateWallet handles POST /api/wallets.
func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	var req model.CreateWalletRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	kind, err := model.ParseAccountKind(req.AccountKind)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown account kind"})
	}

	wallet, err := h.service.Create(c.Context(), req.AccountID, kind)
	if err != nil {
		if errors.Is(err, service.ErrWalletExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "wallet already exists"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Str("account_id", req.AccountID).Msg("failed to create wallet")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(wallet)
}

// GetBalance handles GET /api/wallets/:kind/:accountId/balance.
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	kind, err := model.ParseAccountKind(c.Params("kind"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown account kind"})
	}
	accountID := c.Params("accountId")
	if accountID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: account id is required"})
	}

	wallet, err := h.service.GetBalance(c.Context(), accountID, kind)
	if err != nil {
		if errors.Is(err, service.ErrWalletNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "wallet not found"})
		}
		log.Error().Err(err).Str("account_id", accountID).Msg("failed to get balance")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(model.BalanceResponse{
		AccountID:   wallet.AccountID,
		AccountKind: wallet.AccountKind,
		Balance:     wallet.Balance,
		Currency:    wallet.Currency,
		Status:      wallet.Status,
	})
}

// Credit handles POST /api/wallets/credit.
func (h *WalletHandler) Credit(c *fiber.Ctx) error {
	return h.mutate(c, model.DirectionCredit)
}

// Debit handles POST /api/wallets/debit.
func (h *WalletHandler) Debit(c *fiber.Ctx) error {
	return h.mutate(c, model.DirectionDebit)
}

func (h *WalletHandler) mutate(c *fiber.Ctx, direction model.Direction) error {
	var req model.BalanceMutationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	kind, err := model.ParseAccountKind(req.AccountKind)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown account kind"})
	}

	opts := service.MutationOptions{Description: req.Description, ReferenceID: req.ReferenceID}
	var wallet *model.Wallet
	var entry *model.WalletTransaction
	if direction == model.DirectionCredit {
		wallet, entry, err = h.service.Credit(c.Context(), req.AccountID, kind, *req.Amount, opts)
	} else {
		wallet, entry, err = h.service.Debit(c.Context(), req.AccountID, kind, *req.Amount, opts)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be greater than zero"})
		case errors.Is(err, service.ErrWalletNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "wallet not found"})
		case errors.Is(err, service.ErrInsufficientBalance):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "insufficient balance"})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().
			Err(err).
			Str("account_id", req.AccountID).
			Str("direction", string(direction)).
			Int64("amount", *req.Amount).
			Msg("balance mutation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("account_id", req.AccountID).
		Str("direction", string(direction)).
		Int64("amount", *req.Amount).
		Int64("balance", wallet.Balance).
		Str("transaction_id", entry.TransactionID).
		Msg("balance updated")

	return c.JSON(fiber.Map{"wallet": wallet, "transaction": entry})
}

// Freeze handles POST /api/wallets/freeze.
func (h *WalletHandler) Freeze(c *fiber.Ctx) error {
	return h.setStatus(c, true)
}

// Unfreeze handles POST /api/wallets/unfreeze.
func (h *WalletHandler) Unfreeze(c *fiber.Ctx) error {
	return h.setStatus(c, false)
}

func (h *WalletHandler) setStatus(c *fiber.Ctx, freeze bool) error {
	var req model.WalletStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	kind, err := model.ParseAccountKind(req.AccountKind)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown account kind"})
	}

	var wallet *model.Wallet
	if freeze {
		wallet, err = h.service.Freeze(c.Context(), req.AccountID, kind)
	} else {
		wallet, err = h.service.Unfreeze(c.Context(), req.AccountID, kind)
	}
	if err != nil {
		if errors.Is(err, service.ErrWalletNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "wallet not found"})
		}
		log.Error().Err(err).Str("account_id", req.AccountID).Bool("freeze", freeze).Msg("failed to update wallet status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(wallet)
}

// Refund handles POST /api/wallets/refund.
func (h *WalletHandler) Refund(c *fiber.Ctx) error {
	var req model.RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	kind, err := model.ParseAccountKind(req.AccountKind)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown account kind"})
	}

	resp, err := h.service.Refund(c.Context(), req.AccountID, kind, *req.OriginalAmount, *req.RefundPercentage, req.ReferenceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be greater than zero"})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		case errors.Is(err, service.ErrWalletNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "wallet not found"})
		}
		log.Error().Err(err).Str("account_id", req.AccountID).Msg("refund failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("account_id", req.AccountID).
		Int64("refund_amount", resp.RefundAmount).
		Int64("cancellation_fee", resp.CancellationFee).
		Msg("refund processed")

	return c.JSON(resp)
}
