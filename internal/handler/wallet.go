package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/reactioncam/rcam-go/internal/middleware"
	"github.com/reactioncam/rcam-go/internal/service"
)

type WalletHandler struct {
	ledger *service.LedgerService
}

func NewWalletHandler(ledger *service.LedgerService) *WalletHandler {
	return &WalletHandler{ledger: ledger}
}

// Get handles GET /api/wallet — the caller's regular wallet, provisioned on
// first touch.
func (h *WalletHandler) Get(c fiber.Ctx) error {
	wallet, err := h.ledger.EnsureWallets(c.Context(), middleware.ActorID(c))
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(wallet)
}

// History handles GET /api/wallet/transactions
func (h *WalletHandler) History(c fiber.Ctx) error {
	limit := fiber.Query(c, "limit", 25)
	txs, err := h.ledger.History(c.Context(), middleware.ActorID(c), limit)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txs})
}

// GetTransaction handles GET /api/wallet/transactions/:txId — the dedupe
// probe for clients recovering from an unknown transfer outcome.
func (h *WalletHandler) GetTransaction(c fiber.Ctx) error {
	tx, err := h.ledger.Transaction(c.Context(), middleware.ActorID(c), c.Params("txId"))
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(tx)
}

type paymentRequest struct {
	RecipientID int64  `json:"recipient_id"`
	Amount      int64  `json:"amount"`
	Comment     string `json:"comment"`
}

// Pay handles POST /api/payments
func (h *WalletHandler) Pay(c fiber.Ctx) error {
	var req paymentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if req.RecipientID <= 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "recipient_id is required")
	}
	if req.Amount <= 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "amount must be a positive integer")
	}
	if req.Comment == "" {
		req.Comment = "Payment"
	}

	result, err := h.ledger.Pay(c.Context(), middleware.ActorID(c), req.RecipientID, req.Amount, req.Comment)
	if err != nil {
		return middleware.FromError(c, err)
	}
	Metrics.PaymentsTotal.Inc()
	return c.JSON(fiber.Map{
		"wallet":      result.Src,
		"transaction": result.Debit,
	})
}
