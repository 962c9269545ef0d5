package service

import (
	"github.com/rs/zerolog"
)

// Analytics emits versioned engine events as structured log lines for the
// downstream pipeline. Field names are part of the event contract; bump the
// version suffix instead of changing them.
type Analytics struct {
	log zerolog.Logger
}

func NewAnalytics(log zerolog.Logger) *Analytics {
	return &Analytics{log: log.With().Str("stream", "analytics").Logger()}
}

// ContentV2 reports a content creation or visibility change.
type ContentV2 struct {
	ContentID int64   `json:"content_id"`
	CreatorID int64   `json:"creator_id"`
	RelatedTo *int64  `json:"related_to,omitempty"`
	RequestID *int64  `json:"request_id,omitempty"`
	Tags      []string `json:"tags"`
	Duration  int     `json:"duration"`
}

func (a *Analytics) Content(e ContentV2) {
	a.log.Info().
		Str("event", "content_v2").
		Int64("content_id", e.ContentID).
		Int64("creator_id", e.CreatorID).
		Interface("related_to", e.RelatedTo).
		Interface("request_id", e.RequestID).
		Strs("tags", e.Tags).
		Int("duration", e.Duration).
		Msg("event")
}

// ContentVoteV1 reports a vote being added or removed.
type ContentVoteV1 struct {
	ContentID int64 `json:"content_id"`
	VoterID   int64 `json:"voter_id"`
	Added     bool  `json:"added"`
	Votes     int64 `json:"votes"`
}

func (a *Analytics) ContentVote(e ContentVoteV1) {
	a.log.Info().
		Str("event", "content_vote_v1").
		Int64("content_id", e.ContentID).
		Int64("voter_id", e.VoterID).
		Bool("added", e.Added).
		Int64("votes", e.Votes).
		Msg("event")
}

// ContentFirstV1 reports an account becoming the first reactor to an original.
type ContentFirstV1 struct {
	OriginalID int64 `json:"original_id"`
	CreatorID  int64 `json:"creator_id"`
	ReactorID  int64 `json:"reactor_id"`
}

func (a *Analytics) ContentFirst(e ContentFirstV1) {
	a.log.Info().
		Str("event", "content_first_v1").
		Int64("original_id", e.OriginalID).
		Int64("creator_id", e.CreatorID).
		Int64("reactor_id", e.ReactorID).
		Msg("event")
}

// WalletPaymentV1 reports a committed transfer.
type WalletPaymentV1 struct {
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Amount     int64  `json:"amount"`
	Comment    string `json:"comment"`
}

func (a *Analytics) WalletPayment(e WalletPaymentV1) {
	a.log.Info().
		Str("event", "wallet_payment_v1").
		Int64("sender_id", e.SenderID).
		Int64("receiver_id", e.ReceiverID).
		Int64("amount", e.Amount).
		Str("comment", e.Comment).
		Msg("event")
}
