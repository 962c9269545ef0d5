package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/reactioncam/rcam-go/internal/errs"
)

// Request states, encoded as tags. Exactly one is present at any time; the
// closed flag is orthogonal and blocks new entries and entry transitions.
const (
	RequestStatePending  = "pending"
	RequestStateApproved = "approved"
	RequestStateDenied   = "denied"
	RequestStateArchived = "archived"
)

var requestStates = map[string]bool{
	RequestStatePending:  true,
	RequestStateApproved: true,
	RequestStateDenied:   true,
	RequestStateArchived: true,
}

// PublicRequest is a bounty: "I will pay up to the reward pool balance to
// reactions to this original, proportional to YouTube views accrued."
type PublicRequest struct {
	ID          int64           `json:"id"`
	ContentID   int64           `json:"content_id"`
	RequestedBy int64           `json:"requested_by"`
	Tags        []string        `json:"tags"`
	Closed      bool            `json:"closed"`
	WalletID    *string         `json:"-"`
	SortIndex   int64           `json:"-"`
	Properties  map[string]any  `json:"properties,omitempty"`
	Requested   time.Time       `json:"requested"`
}

// State returns the current lifecycle state tag.
func (r *PublicRequest) State() string {
	for _, t := range r.Tags {
		if requestStates[t] {
			return t
		}
	}
	return RequestStatePending
}

// SetState replaces the lifecycle state tag, keeping all other tags.
func (r *PublicRequest) SetState(state string) error {
	if !requestStates[state] {
		return errs.InvalidArgumentf("%q is not a valid request state", state)
	}
	kept := r.Tags[:0]
	for _, t := range r.Tags {
		if !requestStates[t] {
			kept = append(kept, t)
		}
	}
	r.Tags = append(kept, state)
	return nil
}

// WalletOwner is the account that owns the reward pool.
func (r *PublicRequest) WalletOwner() int64 {
	return r.RequestedBy
}

// Entry statuses.
const (
	EntryStatusOpen           = "open"
	EntryStatusPendingUpload  = "pending-upload"
	EntryStatusPendingYouTube = "pending-youtube"
	EntryStatusPendingReview  = "pending-review"
	EntryStatusActive         = "active"
	EntryStatusDenied         = "denied"
	EntryStatusInactive       = "inactive"
)

var entryStatuses = map[string]bool{
	EntryStatusOpen:           true,
	EntryStatusPendingUpload:  true,
	EntryStatusPendingYouTube: true,
	EntryStatusPendingReview:  true,
	EntryStatusActive:         true,
	EntryStatusDenied:         true,
	EntryStatusInactive:       true,
}

// RequestEntry tracks one account's participation in a public request.
//
// Invariants: RewardEarned is non-decreasing; YouTubeViews (the paid-view
// watermark) is non-decreasing and advances only by actually-paid views.
type RequestEntry struct {
	ID           string    `json:"-"`
	RequestID    int64     `json:"request_id"`
	AccountID    int64     `json:"account_id"`
	ContentID    *int64    `json:"content_id,omitempty"`
	Status       string    `json:"status"`
	StatusReason *string   `json:"status_reason,omitempty"`
	RewardEarned int64     `json:"reward_earned"`
	YouTubeID    *string   `json:"-"`
	YouTubeViews *int64    `json:"youtube_views,omitempty"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"-"`
}

// EntryID builds the composite "<request-id>.<account-id>" key.
func EntryID(requestID, accountID int64) string {
	return fmt.Sprintf("%d.%d", requestID, accountID)
}

// SplitEntryID recovers the request and account ids from a composite key.
func SplitEntryID(id string) (requestID, accountID int64, err error) {
	parts := strings.SplitN(id, ".", 2)
	if len(parts) != 2 {
		return 0, 0, errs.InvalidArgumentf("malformed entry id %q", id)
	}
	requestID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, errs.InvalidArgumentf("malformed entry id %q", id)
	}
	accountID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, errs.InvalidArgumentf("malformed entry id %q", id)
	}
	return requestID, accountID, nil
}

// ValidEntryStatus reports whether s names a known entry status.
func ValidEntryStatus(s string) bool {
	return entryStatuses[s]
}

// SetContent advances the entry's state machine with a (possibly nil)
// reaction content, or resets it to open. The content must be the entrant's
// own reaction to the request's original. Once set, the content cannot be
// swapped; only a reset clears it. Returns whether the entry changed.
func (e *RequestEntry) SetContent(pr *PublicRequest, content *Content, reset bool) (bool, error) {
	if content != nil && reset {
		return false, errs.InvalidArgumentf("cannot both specify content and reset at the same time")
	}
	if reset {
		switch e.Status {
		case EntryStatusActive, EntryStatusDenied, EntryStatusInactive,
			EntryStatusPendingReview, EntryStatusPendingUpload, EntryStatusPendingYouTube:
		default:
			return false, errs.Forbiddenf("cannot reset entry in status %q", e.Status)
		}
		e.ContentID = nil
		e.Status = EntryStatusOpen
		e.StatusReason = nil
		e.YouTubeID = nil
		e.YouTubeViews = nil
		return true, nil
	}
	if content == nil {
		if e.Status == EntryStatusOpen {
			e.Status = EntryStatusPendingUpload
			return true, nil
		}
		return false, nil
	}
	if content.CreatorID != e.AccountID {
		return false, errs.Forbiddenf("that content was created by another account")
	}
	if content.RelatedTo == nil || *content.RelatedTo != pr.ContentID {
		return false, errs.Forbiddenf("that content is not a reaction to the requested original")
	}
	if e.ContentID != nil && *e.ContentID != content.ID {
		return false, errs.Forbiddenf("cannot change content on entry")
	}
	changed := false
	if e.Status == EntryStatusOpen || e.Status == EntryStatusPendingUpload {
		id := content.ID
		e.ContentID = &id
		// Status may advance again below once a video id is known.
		e.Status = EntryStatusPendingYouTube
		changed = true
	}
	if e.Status == EntryStatusPendingYouTube && e.YouTubeID == nil {
		if vid := content.YouTubeID(); vid != "" {
			e.YouTubeID = &vid
			e.YouTubeViews = content.YouTubeViews
			e.Status = EntryStatusPendingReview
			changed = true
		}
	}
	return changed, nil
}

// Deactivate takes the entry out of rotation with a reason. Unlike Review
// and Restore it applies from any status; a broken video must stop payouts
// no matter where the entry sits.
func (e *RequestEntry) Deactivate(reason string) {
	e.Status = EntryStatusInactive
	e.StatusReason = &reason
}

// Review resolves a pending-review entry to active or denied.
func (e *RequestEntry) Review(approved bool, reason *string) error {
	if e.Status != EntryStatusPendingReview {
		return errs.Forbiddenf("the entry cannot be reviewed in its current state")
	}
	if approved {
		e.Status = EntryStatusActive
	} else {
		e.Status = EntryStatusDenied
	}
	e.StatusReason = reason
	return nil
}

// Restore sends an active, denied or inactive entry back to review.
func (e *RequestEntry) Restore() error {
	switch e.Status {
	case EntryStatusActive, EntryStatusDenied, EntryStatusInactive:
	default:
		return errs.Forbiddenf("the entry cannot be restored in its current state")
	}
	e.Status = EntryStatusPendingReview
	e.StatusReason = nil
	return nil
}
