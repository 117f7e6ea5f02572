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

// TransferServiceInterface defines the interface for transfer business logic.
type TransferServiceInterface interface {
	Transfer(ctx context.Context, from, to service.TransferInput, amount int64, description, referenceID string) (*model.TransferResponse, error)
}

// TransferHandler handles HTTP requests for fund transfers.
type TransferHandler struct {
	service   TransferServiceInterface
	validator *validator.Validate
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(svc TransferServiceInterface, v *validator.Validate) *TransferHandler {
	return &TransferHandler{service: svc, validator: v}
}

// Transfer handles POST /api/transfers.
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	var req model.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	fromKind, err := model.ParseAccountKind(req.FromAccountKind)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown account kind"})
	}
	toKind, err := model.ParseAccountKind(req.ToAccountKind)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown account kind"})
	}

	resp, err := h.service.Transfer(c.Context(),
		service.TransferInput{AccountID: req.FromAccountID, AccountKind: fromKind},
		service.TransferInput{AccountID: req.ToAccountID, AccountKind: toKind},
		*req.Amount, req.Description, req.ReferenceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be greater than zero"})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrWalletNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "wallet not found"})
		case errors.Is(err, service.ErrInsufficientBalance):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "insufficient balance"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("from_account", req.FromAccountID).
			Str("to_account", req.ToAccountID).
			Int64("amount", *req.Amount).
			Msg("transfer failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("from_account", resp.FromAccountID).
		Str("to_account", resp.ToAccountID).
		Int64("amount", resp.Amount).
		Msg("transfer completed")

	return c.JSON(resp)
}
