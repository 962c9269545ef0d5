package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/reactioncam/rcam-go/internal/middleware"
	"github.com/reactioncam/rcam-go/internal/repository"
)

// AccountHandler serves the engine's read-only account surface: public
// profiles and the caller's own event stream. Accounts themselves are managed
// by the identity layer.
type AccountHandler struct {
	accounts *repository.AccountRepo
}

func NewAccountHandler(accounts *repository.AccountRepo) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Get handles GET /api/accounts/:username
func (h *AccountHandler) Get(c fiber.Ctx) error {
	account, err := h.accounts.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(account)
}

// Notifications handles GET /api/notifications — the caller's event stream,
// newest first. Engine notifications land here as account events.
func (h *AccountHandler) Notifications(c fiber.Ctx) error {
	limit := fiber.Query(c, "limit", 25)
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	events, err := h.accounts.ListEvents(c.Context(), middleware.ActorID(c), limit)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(fiber.Map{"events": events})
}
