package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/reactioncam/rcam-go/internal/model"
	"github.com/reactioncam/rcam-go/internal/repository"
)

// Identity is owned by the upstream gateway, which authenticates the caller
// and forwards the account id in X-Account-ID. This middleware resolves it to
// an account and stashes it in the request locals; anonymous requests pass
// through with no actor.

const (
	actorKey      = "actor"
	headerAccount = "X-Account-ID"
	headerAdmin   = "X-Admin-Token"
)

// NewActorLoader resolves the forwarded account id on every request.
func NewActorLoader(accounts *repository.AccountRepo) fiber.Handler {
	return func(c fiber.Ctx) error {
		raw := c.Get(headerAccount)
		if raw == "" {
			return c.Next()
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ACCOUNT", "X-Account-ID must be a positive integer")
		}
		account, err := accounts.Get(c.Context(), id)
		if err != nil {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNKNOWN_ACCOUNT", "Account not found")
		}
		c.Locals(actorKey, account)
		return c.Next()
	}
}

// Actor returns the authenticated account, or nil for anonymous requests.
func Actor(c fiber.Ctx) *model.Account {
	if a, ok := c.Locals(actorKey).(*model.Account); ok {
		return a
	}
	return nil
}

// ActorID returns the authenticated account id, or 0 for anonymous requests.
func ActorID(c fiber.Ctx) int64 {
	if a := Actor(c); a != nil {
		return a.ID
	}
	return 0
}

// RequireActor rejects anonymous requests.
func RequireActor(c fiber.Ctx) error {
	if Actor(c) == nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "X-Account-ID header is required")
	}
	return c.Next()
}

// NewAdminGate rejects requests without the shared admin token. An empty
// configured token disables every admin route.
func NewAdminGate(token string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if token == "" || c.Get(headerAdmin) != token {
			return ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "Admin token required")
		}
		return c.Next()
	}
}
