package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/reactioncam/rcam-go/internal/errs"
	"github.com/reactioncam/rcam-go/internal/model"
	"github.com/reactioncam/rcam-go/internal/repository"
)

// RequestService orchestrates the public request (bounty) lifecycle and its
// entries.
type RequestService struct {
	requests *repository.RequestRepo
	entries  *repository.EntryRepo
	contents *repository.ContentRepo
	wallets  *repository.WalletRepo
	ledger   *LedgerService
	notifs   *NotifService
	log      zerolog.Logger
}

func NewRequestService(requests *repository.RequestRepo, entries *repository.EntryRepo,
	contents *repository.ContentRepo, wallets *repository.WalletRepo,
	ledger *LedgerService, notifs *NotifService, log zerolog.Logger) *RequestService {
	return &RequestService{
		requests: requests,
		entries:  entries,
		contents: contents,
		wallets:  wallets,
		ledger:   ledger,
		notifs:   notifs,
		log:      log,
	}
}

// Create opens a new pending request against an existing original. The
// original's creator hears about it.
func (s *RequestService) Create(ctx context.Context, actor *model.Account, contentID int64, tagsString string) (*model.PublicRequest, error) {
	content, err := s.contents.Get(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if !content.VisibleBy(actor.ID) {
		return nil, errs.Forbiddenf("that content cannot be requested")
	}
	pr := &model.PublicRequest{
		ContentID:   content.ID,
		RequestedBy: actor.ID,
		Tags:        model.ParseTags(tagsString, false),
		SortIndex:   model.BaseSortIndex(content.Created),
	}
	pr, err = s.requests.Create(ctx, pr)
	if err != nil {
		return nil, err
	}
	if content.CreatorID != actor.ID {
		s.notifs.Notify(ctx, content.CreatorID, NotifContentRequest, map[string]string{
			"request_id": strconv.FormatInt(pr.ID, 10),
			"content_id": strconv.FormatInt(content.ID, 10),
		})
	}
	return pr, nil
}

// Get returns a request by id.
func (s *RequestService) Get(ctx context.Context, requestID int64) (*model.PublicRequest, error) {
	return s.requests.Get(ctx, requestID)
}

// List returns open approved requests.
func (s *RequestService) List(ctx context.Context, limit int) ([]model.PublicRequest, error) {
	return s.requests.List(ctx, limit)
}

// ListMine returns the account's own requests, whatever their state.
func (s *RequestService) ListMine(ctx context.Context, accountID int64, limit int) ([]model.PublicRequest, error) {
	return s.requests.ListByAccount(ctx, accountID, limit)
}

// Approve moves the request to approved and provisions its reward pool
// wallet. Safe to repeat; an existing pool is left alone.
func (s *RequestService) Approve(ctx context.Context, requestID int64) (*model.PublicRequest, error) {
	pr, err := s.requests.SetState(ctx, requestID, model.RequestStateApproved)
	if err != nil {
		return nil, err
	}
	walletID := model.RewardWalletID(pr.ID)
	_, err = s.wallets.CreateInternal(ctx, pr.WalletOwner(), walletID, 0, "Reward pool")
	if err != nil && !errors.Is(err, errs.ErrAlreadyExists) {
		return nil, err
	}
	pr, err = s.requests.AttachWallet(ctx, requestID, walletID)
	if err != nil {
		return nil, err
	}
	s.notifs.Notify(ctx, pr.RequestedBy, NotifPublicRequestUpdate, map[string]string{
		"request_id": strconv.FormatInt(pr.ID, 10),
		"state":      model.RequestStateApproved,
	})
	return pr, nil
}

// SetState moves the request lifecycle tag (deny, archive, back to pending).
func (s *RequestService) SetState(ctx context.Context, requestID int64, state string) (*model.PublicRequest, error) {
	pr, err := s.requests.SetState(ctx, requestID, state)
	if err != nil {
		return nil, err
	}
	s.notifs.Notify(ctx, pr.RequestedBy, NotifPublicRequestUpdate, map[string]string{
		"request_id": strconv.FormatInt(pr.ID, 10),
		"state":      state,
	})
	return pr, nil
}

// Close stops the request taking new entries or entry transitions.
func (s *RequestService) Close(ctx context.Context, requestID int64, closed bool) (*model.PublicRequest, error) {
	return s.requests.SetClosed(ctx, requestID, closed)
}

// Fund moves amount from the requester's wallet into the reward pool.
func (s *RequestService) Fund(ctx context.Context, actor *model.Account, requestID, amount int64) (*model.Wallet, error) {
	pr, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pr.RequestedBy != actor.ID {
		return nil, errs.Forbiddenf("only the requester may fund the reward pool")
	}
	if pr.WalletID == nil {
		return nil, errs.InvalidArgumentf("request has no reward pool yet")
	}
	result, err := s.ledger.FundRequest(ctx, actor.ID, requestID, amount)
	if err != nil {
		return nil, err
	}
	return result.Dst, nil
}

// Enter opens the actor's entry in an approved, open request.
func (s *RequestService) Enter(ctx context.Context, actor *model.Account, requestID int64) (*model.RequestEntry, error) {
	pr, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pr.Closed {
		return nil, errs.Forbiddenf("the request is closed")
	}
	if pr.State() != model.RequestStateApproved {
		return nil, errs.Forbiddenf("the request is not open for entries")
	}
	// Rewards land in the entrant's regular wallet, which may not exist yet
	// if they have never touched the wallet endpoints. Provision it now so
	// the payout step never fails on a missing wallet.
	if _, err := s.ledger.EnsureWallets(ctx, actor.ID); err != nil {
		return nil, err
	}
	entry, err := s.entries.Create(ctx, requestID, actor.ID)
	if errors.Is(err, errs.ErrAlreadyExists) {
		return s.entries.Get(ctx, requestID, actor.ID)
	}
	return entry, err
}

// GetEntry returns the actor's entry.
func (s *RequestService) GetEntry(ctx context.Context, requestID, accountID int64) (*model.RequestEntry, error) {
	return s.entries.Get(ctx, requestID, accountID)
}

// ListEntries returns a request's entries, optionally filtered by status.
func (s *RequestService) ListEntries(ctx context.Context, requestID int64, status string, limit int) ([]model.RequestEntry, error) {
	return s.entries.ListForRequest(ctx, requestID, status, limit)
}

// SetEntryContent attaches the actor's reaction to their entry (or resets the
// entry). The requester hears when the entry reaches review.
func (s *RequestService) SetEntryContent(ctx context.Context, actor *model.Account, requestID int64, contentID *int64, reset bool) (*model.RequestEntry, error) {
	pr, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pr.Closed {
		return nil, errs.Forbiddenf("the request is closed")
	}
	var content *model.Content
	if contentID != nil {
		content, err = s.contents.Get(ctx, *contentID)
		if err != nil {
			return nil, err
		}
	}
	entry, err := s.entries.SetContent(ctx, pr, actor.ID, content, reset)
	if err != nil {
		return nil, err
	}
	if entry.Status == model.EntryStatusPendingReview {
		s.notifs.Notify(ctx, pr.RequestedBy, NotifContentRequestFulfilled, map[string]string{
			"request_id": strconv.FormatInt(requestID, 10),
			"account_id": strconv.FormatInt(actor.ID, 10),
		})
	}
	return entry, nil
}

// ReviewEntry resolves a pending-review entry and tells the entrant.
func (s *RequestService) ReviewEntry(ctx context.Context, requestID, accountID int64, approved bool, reason *string) (*model.RequestEntry, error) {
	pr, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pr.Closed {
		return nil, errs.Forbiddenf("the request is closed")
	}
	entry, err := s.entries.Review(ctx, requestID, accountID, approved, reason)
	if err != nil {
		return nil, err
	}
	s.notifs.Notify(ctx, accountID, NotifPublicRequestUpdate, map[string]string{
		"request_id": strconv.FormatInt(requestID, 10),
		"status":     entry.Status,
	})
	return entry, nil
}

// RestoreEntry sends a resolved entry back to review.
func (s *RequestService) RestoreEntry(ctx context.Context, requestID, accountID int64) (*model.RequestEntry, error) {
	pr, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pr.Closed {
		return nil, errs.Forbiddenf("the request is closed")
	}
	return s.entries.Restore(ctx, requestID, accountID)
}
