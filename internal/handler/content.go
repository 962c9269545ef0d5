package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/reactioncam/rcam-go/internal/middleware"
	"github.com/reactioncam/rcam-go/internal/model"
	"github.com/reactioncam/rcam-go/internal/repository"
	"github.com/reactioncam/rcam-go/internal/service"
)

type ContentHandler struct {
	contents *service.ContentService
	feeds    *service.FeedService
}

func NewContentHandler(contents *service.ContentService, feeds *service.FeedService) *ContentHandler {
	return &ContentHandler{contents: contents, feeds: feeds}
}

// contentResponse renders a content for API consumers.
func contentResponse(c *model.Content) fiber.Map {
	resp := fiber.Map{
		"id":            c.ID,
		"creator_id":    c.CreatorID,
		"tags":          c.VisibleTags(),
		"title":         c.Title,
		"video_url":     c.VideoURL,
		"thumb_url":     c.ThumbURL,
		"original_url":  c.OriginalURL,
		"duration":      c.Duration,
		"views":         c.Views,
		"votes":         c.Votes,
		"comment_count": c.CommentCount,
		"related_count": c.RelatedCount,
		"created":       c.Created,
	}
	if c.RelatedTo != nil {
		resp["related_to"] = *c.RelatedTo
	}
	if c.RequestID != nil {
		resp["request_id"] = *c.RequestID
	}
	if c.Slug != nil {
		resp["slug"] = *c.Slug
	}
	if id := c.YouTubeID(); id != "" {
		resp["youtube_id"] = id
	}
	return resp
}

type createContentRequest struct {
	Tags        string `json:"tags"`
	Title       string `json:"title"`
	VideoURL    string `json:"video_url"`
	ThumbURL    string `json:"thumb_url"`
	OriginalURL string `json:"original_url"`
	Duration    int    `json:"duration"`
	RelatedTo   *int64 `json:"related_to"`
	RequestID   *int64 `json:"request_id"`
	YouTubeID   string `json:"youtube_id"`
	Publish     bool   `json:"publish"`
}

// Create handles POST /api/content
func (h *ContentHandler) Create(c fiber.Ctx) error {
	actor := middleware.Actor(c)

	var req createContentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	tags, errMsg := middleware.ValidateTags(req.Tags)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	title, errMsg := middleware.ValidateTitle(req.Title)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	youtubeID, errMsg := middleware.ValidateYouTubeID(req.YouTubeID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	for _, raw := range []string{req.VideoURL, req.ThumbURL, req.OriginalURL} {
		if _, errMsg := middleware.ValidateURL(raw); errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
		}
	}

	in := service.CreateInput{
		Tags:      tags,
		Duration:  req.Duration,
		RelatedTo: req.RelatedTo,
		RequestID: req.RequestID,
		YouTubeID: youtubeID,
		Publish:   req.Publish,
	}
	if title != "" {
		in.Title = &title
	}
	if req.VideoURL != "" {
		in.VideoURL = &req.VideoURL
	}
	if req.ThumbURL != "" {
		in.ThumbURL = &req.ThumbURL
	}
	if req.OriginalURL != "" {
		in.OriginalURL = &req.OriginalURL
	}

	content, err := h.contents.Create(c.Context(), actor, in)
	if err != nil {
		return middleware.FromError(c, err)
	}
	if req.Publish {
		h.invalidateFeeds(c)
	}
	return c.Status(fiber.StatusCreated).JSON(contentResponse(content))
}

// Get handles GET /api/content/:contentId
func (h *ContentHandler) Get(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		// Not a numeric id; try as a slug.
		content, serr := h.contents.GetBySlug(c.Context(), middleware.ActorID(c), c.Params("contentId"))
		if serr != nil {
			return middleware.FromError(c, serr)
		}
		return c.JSON(contentResponse(content))
	}
	content, err := h.contents.Get(c.Context(), middleware.ActorID(c), id)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(contentResponse(content))
}

// Feed handles GET /api/content
func (h *ContentHandler) Feed(c fiber.Ctx) error {
	tags := model.ParseTags(c.Query("tags"), false)
	sort := c.Query("sort")
	limit := fiber.Query(c, "limit", 10)
	cursor := fiber.Query[int64](c, "cursor", 0)

	page, err := h.feeds.Feed(c.Context(), middleware.ActorID(c), tags, sort, limit, cursor)
	if err != nil {
		return middleware.FromError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(page)
}

// Related handles GET /api/content/:contentId/related
func (h *ContentHandler) Related(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "contentId must be an integer")
	}
	original, err := h.contents.Get(c.Context(), middleware.ActorID(c), id)
	if err != nil {
		return middleware.FromError(c, err)
	}
	limit := fiber.Query(c, "limit", 10)
	cursor := fiber.Query[int64](c, "cursor", 0)

	page, err := h.feeds.Related(c.Context(), middleware.ActorID(c), original, limit, cursor)
	if err != nil {
		return middleware.FromError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(page)
}

// Publish handles POST /api/content/:contentId/publish
func (h *ContentHandler) Publish(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "contentId must be an integer")
	}
	content, err := h.contents.Publish(c.Context(), middleware.Actor(c), id)
	if err != nil {
		return middleware.FromError(c, err)
	}
	h.invalidateFeeds(c)
	return c.JSON(contentResponse(content))
}

// invalidateFeeds drops the default first pages so freshly published (or
// removed) content shows up without waiting out the TTL. Best-effort.
func (h *ContentHandler) invalidateFeeds(c fiber.Ctx) {
	for _, sort := range []string{repository.SortHot, repository.SortRecent} {
		_ = h.feeds.Invalidate(c.Context(), []string{model.TagPublished}, sort, 10)
	}
}

// Delete handles DELETE /api/content/:contentId
func (h *ContentHandler) Delete(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "contentId must be an integer")
	}
	if err := h.contents.Delete(c.Context(), middleware.Actor(c), id); err != nil {
		return middleware.FromError(c, err)
	}
	h.invalidateFeeds(c)
	return c.JSON(fiber.Map{"success": true})
}

// SetTags handles PUT /api/content/:contentId/tags
func (h *ContentHandler) SetTags(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "contentId must be an integer")
	}
	var req struct {
		Tags string `json:"tags"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	tags, errMsg := middleware.ValidateTags(req.Tags)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	content, err := h.contents.SetTags(c.Context(), middleware.Actor(c), id, tags)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(contentResponse(content))
}

// SetYouTubeID handles PUT /api/content/:contentId/youtube
func (h *ContentHandler) SetYouTubeID(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "contentId must be an integer")
	}
	var req struct {
		YouTubeID string `json:"youtube_id"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	videoID, errMsg := middleware.ValidateYouTubeID(req.YouTubeID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	content, err := h.contents.SetYouTubeID(c.Context(), middleware.Actor(c), id, videoID, false)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(contentResponse(content))
}

// ByCreator handles GET /api/accounts/:username/content
func (h *ContentHandler) ByCreator(c fiber.Ctx) error {
	limit := fiber.Query(c, "limit", 10)
	contents, err := h.contents.ListByCreator(c.Context(), middleware.ActorID(c), c.Params("username"), limit)
	if err != nil {
		return middleware.FromError(c, err)
	}
	items := make([]fiber.Map, 0, len(contents))
	for i := range contents {
		items = append(items, contentResponse(&contents[i]))
	}
	return c.JSON(fiber.Map{"content": items})
}

// Voted handles GET /api/content/:contentId/votes
func (h *ContentHandler) Voted(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "contentId must be an integer")
	}
	voted, err := h.contents.Voted(c.Context(), middleware.ActorID(c), id)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(fiber.Map{"voted": voted})
}

// Vote handles POST /api/content/:contentId/votes
func (h *ContentHandler) Vote(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "contentId must be an integer")
	}
	content, err := h.contents.Vote(c.Context(), middleware.Actor(c), id)
	if err != nil {
		return middleware.FromError(c, err)
	}
	Metrics.VotesTotal.Inc()
	return c.JSON(contentResponse(content))
}

// Unvote handles DELETE /api/content/:contentId/votes
func (h *ContentHandler) Unvote(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "contentId must be an integer")
	}
	content, err := h.contents.Unvote(c.Context(), middleware.Actor(c), id)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(contentResponse(content))
}

// View handles POST /api/content/:contentId/views
func (h *ContentHandler) View(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "contentId must be an integer")
	}
	if err := h.contents.View(c.Context(), middleware.Actor(c), id); err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ListComments handles GET /api/content/:contentId/comments
func (h *ContentHandler) ListComments(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "contentId must be an integer")
	}
	limit := fiber.Query(c, "limit", 25)
	comments, err := h.contents.ListComments(c.Context(), id, limit)
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// Comment handles POST /api/content/:contentId/comments
func (h *ContentHandler) Comment(c fiber.Ctx) error {
	id, err := parseID(c.Params("contentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "contentId must be an integer")
	}
	var req struct {
		Text    string `json:"text"`
		Offset  *int   `json:"offset"`
		ReplyTo *int64 `json:"reply_to"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	text, errMsg := middleware.ValidateComment(req.Text)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	comment, err := h.contents.Comment(c.Context(), middleware.Actor(c), &model.ContentComment{
		ContentID: id,
		Body:      text,
		OffsetMs:  req.Offset,
		ReplyTo:   req.ReplyTo,
	})
	if err != nil {
		return middleware.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:commentId
func (h *ContentHandler) DeleteComment(c fiber.Ctx) error {
	id, err := parseID(c.Params("commentId"))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "commentId must be an integer")
	}
	if err := h.contents.DeleteComment(c.Context(), middleware.Actor(c), id); err != nil {
		return middleware.FromError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
