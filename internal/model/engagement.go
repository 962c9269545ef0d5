package model

import "time"

// ContentVote is the per-(account, content) singleton proving the account has
// voted. Its presence is the source of truth; Content.Votes is a cache.
type ContentVote struct {
	AccountID int64     `json:"account_id"`
	ContentID int64     `json:"content_id"`
	Created   time.Time `json:"created"`
}

// ContentComment is a comment on a content, optionally anchored to a playback
// offset or replying to another comment.
type ContentComment struct {
	ID        int64     `json:"id"`
	ContentID int64     `json:"content_id"`
	CreatorID int64     `json:"creator_id"`
	Body      string    `json:"text"`
	OffsetMs  *int      `json:"offset,omitempty"`
	ReplyTo   *int64    `json:"reply_to,omitempty"`
	Created   time.Time `json:"created"`
}
