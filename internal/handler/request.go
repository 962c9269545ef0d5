package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/reactioncam/rcam-go/internal/middleware"
	"github.com/reactioncam/rcam-go/internal/model"
	"github.com/reactioncam/rcam-go/internal/service"
)

type RequestHandler struct {
	requests *service.RequestService
}

func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

func requestResponse(pr *model.PublicRequest) fiber.Map {
	return fiber.Map{
		"id":           pr.ID,
		"content_id":   pr.ContentID,
		"requested_by": pr.RequestedBy,
		"state":        pr.State(),
		"closed":       pr.Closed,
		"properties":   pr.Properties,
		"requested":    pr.Requested,
	}
}

// Create handles POST /api/requests
func (h *RequestHandler) Create(c fiber.Ctx) error {
	var req struct {
		ContentID int64  `json:"content_id"`
		Tags      string `json:"tags"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if req.ContentID <= 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "content_id is required")
	}
	tags, errMsg := middleware.ValidateTags(req.Tags)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	pr, err := h.requests.Create(c.Context(), middleware.Actor(c), req.ContentID, tags)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(requestResponse(pr))
}

// List handles GET /api/requests
func (h *RequestHandler) List(c fiber.Ctx) error {
	limit := fiber.Query(c, "limit", 20)
	requests, err := h.requests.List(c.Context(), limit)
	if err != nil {
		return middleware.FromError(c, err)
	}
	items := make([]fiber.Map, 0, len(requests))
	for i := range requests {
		items = append(items, requestResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"requests": items})
}

// ListMine handles GET /api/requests/mine — the caller's own requests in any
// state.
func (h *RequestHandler) ListMine(c fiber.Ctx) error {
	limit := fiber.Query(c, "limit", 20)
	requests, err := h.requests.ListMine(c.Context(), middleware.ActorID(c), limit)
	if err != nil {
		return middleware.FromError(c, err)
	}
	items := make([]fiber.Map, 0, len(requests))
	for i := range requests {
		items = append(items, requestResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"requests": items})
}

// Get handles GET /api/requests/:requestId
func (h *RequestHandler) Get(c fiber.Ctx) error {
	id, err := parseID(c.Params("requestId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "requestId must be an integer")
	}
	pr, err := h.requests.Get(c.Context(), id)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(requestResponse(pr))
}

// Fund handles POST /api/requests/:requestId/fund
func (h *RequestHandler) Fund(c fiber.Ctx) error {
	id, err := parseID(c.Params("requestId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "requestId must be an integer")
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if req.Amount <= 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "amount must be a positive integer")
	}
	pool, err := h.requests.Fund(c.Context(), middleware.Actor(c), id, req.Amount)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(fiber.Map{"reward_pool": pool})
}

// Enter handles POST /api/requests/:requestId/entries
func (h *RequestHandler) Enter(c fiber.Ctx) error {
	id, err := parseID(c.Params("requestId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "requestId must be an integer")
	}
	entry, err := h.requests.Enter(c.Context(), middleware.Actor(c), id)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetEntry handles GET /api/requests/:requestId/entry — the caller's own entry.
func (h *RequestHandler) GetEntry(c fiber.Ctx) error {
	id, err := parseID(c.Params("requestId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "requestId must be an integer")
	}
	entry, err := h.requests.GetEntry(c.Context(), id, middleware.ActorID(c))
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(entry)
}

// SetEntryContent handles PUT /api/requests/:requestId/entry
func (h *RequestHandler) SetEntryContent(c fiber.Ctx) error {
	id, err := parseID(c.Params("requestId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "requestId must be an integer")
	}
	var req struct {
		ContentID *int64 `json:"content_id"`
		Reset     bool   `json:"reset"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	entry, err := h.requests.SetEntryContent(c.Context(), middleware.Actor(c), id, req.ContentID, req.Reset)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(entry)
}

// Admin routes.

// Approve handles POST /admin/requests/:requestId/approve
func (h *RequestHandler) Approve(c fiber.Ctx) error {
	id, err := parseID(c.Params("requestId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "requestId must be an integer")
	}
	pr, err := h.requests.Approve(c.Context(), id)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(requestResponse(pr))
}

// SetState handles PUT /admin/requests/:requestId/state
func (h *RequestHandler) SetState(c fiber.Ctx) error {
	id, err := parseID(c.Params("requestId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "requestId must be an integer")
	}
	var req struct {
		State  string `json:"state"`
		Closed *bool  `json:"closed"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	var pr *model.PublicRequest
	if req.State != "" {
		pr, err = h.requests.SetState(c.Context(), id, req.State)
		if err != nil {
			return middleware.FromError(c, err)
		}
	}
	if req.Closed != nil {
		pr, err = h.requests.Close(c.Context(), id, *req.Closed)
		if err != nil {
			return middleware.FromError(c, err)
		}
	}
	if pr == nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FIELDS", "state or closed is required")
	}
	return c.JSON(requestResponse(pr))
}

// ListEntries handles GET /admin/requests/:requestId/entries
func (h *RequestHandler) ListEntries(c fiber.Ctx) error {
	id, err := parseID(c.Params("requestId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "requestId must be an integer")
	}
	status := c.Query("status")
	limit := fiber.Query(c, "limit", 50)
	entries, err := h.requests.ListEntries(c.Context(), id, status, limit)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// ReviewEntry handles POST /admin/requests/:requestId/entries/:accountId/review
func (h *RequestHandler) ReviewEntry(c fiber.Ctx) error {
	requestID, err := parseID(c.Params("requestId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "requestId must be an integer")
	}
	accountID, err := parseID(c.Params("accountId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "accountId must be an integer")
	}
	var req struct {
		Approved bool    `json:"approved"`
		Reason   *string `json:"reason"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	entry, err := h.requests.ReviewEntry(c.Context(), requestID, accountID, req.Approved, req.Reason)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(entry)
}

// RestoreEntry handles POST /admin/requests/:requestId/entries/:accountId/restore
func (h *RequestHandler) RestoreEntry(c fiber.Ctx) error {
	requestID, err := parseID(c.Params("requestId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "requestId must be an integer")
	}
	accountID, err := parseID(c.Params("accountId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "accountId must be an integer")
	}
	entry, err := h.requests.RestoreEntry(c.Context(), requestID, accountID)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(entry)
}
