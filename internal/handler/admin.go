package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/reactioncam/rcam-go/internal/middleware"
	"github.com/reactioncam/rcam-go/internal/service"
)

// AdminHandler exposes operator-only maintenance endpoints.
type AdminHandler struct {
	ledger    *service.LedgerService
	reconcile *service.ReconcileService
}

func NewAdminHandler(ledger *service.LedgerService, reconcile *service.ReconcileService) *AdminHandler {
	return &AdminHandler{ledger: ledger, reconcile: reconcile}
}

// Reconcile runs one view-reconciliation sweep immediately, bypassing the
// staleness gate. Returns how many contents were refreshed; 0 when no
// YouTube API key is configured.
func (h *AdminHandler) Reconcile(c fiber.Ctx) error {
	processed := h.reconcile.Force(c.Context())
	return c.JSON(fiber.Map{"processed": processed})
}

type creditRequest struct {
	ReceiptID string `json:"receipt_id"`
	Amount    int64  `json:"amount"`
	Comment   string `json:"comment"`
}

// Credit applies a validated purchase to an account's wallet. The store layer
// validating the receipt calls this; replaying a receipt id is a conflict.
func (h *AdminHandler) Credit(c fiber.Ctx) error {
	accountID, err := strconv.ParseInt(c.Params("accountId"), 10, 64)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest,
			"INVALID_ARGUMENT", "accountId must be numeric")
	}

	var req creditRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest,
			"INVALID_ARGUMENT", "Invalid request body")
	}

	wallet, err := h.ledger.Credit(c.Context(), accountID, req.ReceiptID, req.Amount, req.Comment)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(fiber.Map{"wallet": wallet})
}
