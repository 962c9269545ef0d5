package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/reactioncam/rcam-go/internal/repository"
)

// Notification kinds delivered to account event streams.
const (
	NotifContentVote             = "content_vote"
	NotifContentComment          = "content_comment"
	NotifContentReferenced       = "content_referenced"
	NotifContentRequest          = "content_request"
	NotifContentRequestFulfilled = "content_request_fulfilled"
	NotifPublicRequestUpdate     = "public_request_update"
)

// NotifService fans engine events out to account event streams. Delivery is
// best-effort: a failed notification is logged and dropped, never propagated
// back into the operation that triggered it.
type NotifService struct {
	accounts *repository.AccountRepo
	log      zerolog.Logger
}

func NewNotifService(accounts *repository.AccountRepo, log zerolog.Logger) *NotifService {
	return &NotifService{accounts: accounts, log: log}
}

// Notify appends an event to the account's stream.
func (s *NotifService) Notify(ctx context.Context, accountID int64, kind string, props map[string]string) {
	if accountID == 0 {
		return
	}
	if err := s.accounts.AddEvent(ctx, accountID, kind, "info", props); err != nil {
		s.log.Warn().Err(err).
			Int64("account_id", accountID).
			Str("kind", kind).
			Msg("notification delivery failed")
	}
}
