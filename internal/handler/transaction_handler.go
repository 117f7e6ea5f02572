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

// TransactionServiceInterface defines the interface for ledger business logic.
type TransactionServiceInterface interface {
	Record(ctx context.Context, req *model.RecordTransactionRequest) (*model.WalletTransaction, error)
	List(ctx context.Context, accountID string, page, pageSize int) (*model.TransactionListResponse, error)
	FindMostRecent(ctx context.Context, accountID string) (*model.WalletTransaction, error)
	UpdateStatus(ctx context.Context, transactionID string, status model.TransactionStatus) (*model.WalletTransaction, error)
}

// TransactionHandler handles HTTP requests for the ledger.
type TransactionHandler struct {
	service   TransactionServiceInterface
	validator *validator.Validate
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc TransactionServiceInterface, v *validator.Validate) *TransactionHandler {
	return &TransactionHandler{service: svc, validator: v}
}

// Record handles POST /api/transactions.
func (h *TransactionHandler) Record(c *fiber.Ctx) error {
	var req model.RecordTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	entry, err := h.service.Record(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) || errors.Is(err, service.ErrInvalidAmount) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("account_id", req.AccountID).Msg("failed to record transaction")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// List handles GET /api/transactions/:accountId?page=&pageSize=.
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 20)

	resp, err := h.service.List(c.Context(), accountID, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("account_id", accountID).Msg("failed to list transactions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(resp)
}

// FindMostRecent handles GET /api/transactions/:accountId/latest.
func (h *TransactionHandler) FindMostRecent(c *fiber.Ctx) error {
	accountID := c.Params("accountId")

	entry, err := h.service.FindMostRecent(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no transactions found"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: account id is required"})
		}
		log.Error().Err(err).Str("account_id", accountID).Msg("failed to find most recent transaction")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(entry)
}

// UpdateStatus handles PATCH /api/transactions/:transactionId/status.
func (h *TransactionHandler) UpdateStatus(c *fiber.Ctx) error {
	transactionID := c.Params("transactionId")

	var req model.UpdateTransactionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	entry, err := h.service.UpdateStatus(c.Context(), transactionID, model.TransactionStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "transaction not found"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("transaction_id", transactionID).Msg("failed to update transaction status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(entry)
}
