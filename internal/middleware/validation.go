package middleware

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/reactioncam/rcam-go/internal/errs"
)

// Field length limits matching database and client constraints.
const (
	MaxYouTubeIDLen = 16
	MaxTitleLen     = 200
	MaxTagsLen      = 500
	MaxCommentLen   = 2000
	MaxURLLen       = 2000
)

// youtubeIDRe matches YouTube video IDs: alphanumeric, dash, underscore.
var youtubeIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// FromError maps a service error to the standard API error response.
func FromError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, errs.ErrAlreadyExists):
		return ErrorResponse(c, fiber.StatusConflict, "ALREADY_EXISTS", err.Error())
	case errors.Is(err, errs.ErrInvalidArgument):
		return ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, errs.ErrInsufficientFunds):
		return ErrorResponse(c, fiber.StatusBadRequest, "INSUFFICIENT_FUNDS", "Not enough funds")
	case errors.Is(err, errs.ErrWalletChanged):
		return ErrorResponse(c, fiber.StatusConflict, "WALLET_CHANGED", "Wallet changed, retry the transfer")
	case errors.Is(err, errs.ErrExternal):
		return ErrorResponse(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "Upstream service failed")
	default:
		return ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
	}
}

// ValidateYouTubeID checks that a video ID is well-formed. Empty is allowed
// (it clears the id); the second return value is an error message.
func ValidateYouTubeID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ""
	}
	if len(id) > MaxYouTubeIDLen {
		return "", "youtubeId must be at most 16 characters"
	}
	if !youtubeIDRe.MatchString(id) {
		return "", "youtubeId contains invalid characters"
	}
	return id, ""
}

// ValidateTitle trims and bounds a content title.
func ValidateTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if len(title) > MaxTitleLen {
		return "", "title must be at most 200 characters"
	}
	return title, ""
}

// ValidateTags bounds the raw tag string; tag-level parsing happens in the
// model layer.
func ValidateTags(tags string) (string, string) {
	tags = strings.TrimSpace(tags)
	if len(tags) > MaxTagsLen {
		return "", "tags must be at most 500 characters"
	}
	return tags, ""
}

// ValidateComment trims and bounds comment text.
func ValidateComment(text string) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "text is required"
	}
	if len(text) > MaxCommentLen {
		return "", "text must be at most 2000 characters"
	}
	return text, ""
}

// ValidateURL bounds an optional URL field.
func ValidateURL(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if len(raw) > MaxURLLen {
		return "", "url must be at most 2000 characters"
	}
	if raw != "" && !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "", "url must be http or https"
	}
	return raw, ""
}
