package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/reactioncam/rcam-go/internal/model"
	"github.com/reactioncam/rcam-go/internal/repository"
)

// reconcileBatch bounds how many contents one sweep refreshes, keeping each
// tick well inside the schedule interval and the API quota.
const reconcileBatch = 50

// ReconcileService keeps externally published reactions in sync with their
// YouTube view counts and pays entry rewards for the growth.
type ReconcileService struct {
	contents  *repository.ContentRepo
	entries   *repository.EntryRepo
	youtube   *YouTubeService
	notifs    *NotifService
	analytics *Analytics
	staleness time.Duration
	rewardCap int64
	log       zerolog.Logger
}

func NewReconcileService(contents *repository.ContentRepo, entries *repository.EntryRepo,
	youtube *YouTubeService, notifs *NotifService, analytics *Analytics,
	staleness time.Duration, rewardCap int64, log zerolog.Logger) *ReconcileService {
	return &ReconcileService{
		contents:  contents,
		entries:   entries,
		youtube:   youtube,
		notifs:    notifs,
		analytics: analytics,
		staleness: staleness,
		rewardCap: rewardCap,
		log:       log,
	}
}

// Tick runs one reconciliation sweep: every active-entry reaction whose view
// count has gone stale gets refreshed, scored and rewarded. Returns how many
// contents were processed.
func (s *ReconcileService) Tick(ctx context.Context) int {
	return s.sweep(ctx, s.staleness)
}

// Force sweeps without the staleness gate, refreshing every active-entry
// reaction regardless of when it was last checked.
func (s *ReconcileService) Force(ctx context.Context) int {
	return s.sweep(ctx, 0)
}

func (s *ReconcileService) sweep(ctx context.Context, staleness time.Duration) int {
	if !s.youtube.Enabled() {
		return 0
	}
	cutoff := time.Now().UTC().Add(-staleness)
	ids, err := s.contents.StaleYouTubeCandidates(ctx, cutoff, reconcileBatch)
	if err != nil {
		s.log.Error().Err(err).Msg("reconcile candidate query failed")
		return 0
	}
	processed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if err := s.reconcileContent(ctx, id); err != nil {
			s.log.Error().Err(err).Int64("content_id", id).Msg("reconcile failed")
			continue
		}
		processed++
	}
	return processed
}

func (s *ReconcileService) reconcileContent(ctx context.Context, contentID int64) error {
	c, err := s.contents.Get(ctx, contentID)
	if err != nil {
		return err
	}
	videoID := c.YouTubeID()
	if videoID == "" || c.YouTubeBroken {
		return nil
	}

	stats, err := s.youtube.VideoStats(ctx, videoID)
	if err != nil {
		// Transient API failure; the next sweep retries.
		return err
	}
	if stats == nil {
		return s.markBroken(ctx, c)
	}

	c, delta, err := s.contents.RecordYouTubeViews(ctx, c.ID, stats.ViewCount)
	if err != nil {
		return err
	}
	if delta > 0 {
		s.log.Info().
			Int64("content_id", c.ID).
			Int64("new_views", delta).
			Msg("external views recorded")
	}
	return s.payEntries(ctx, c)
}

// markBroken flags the content and takes its active entries out of rotation.
func (s *ReconcileService) markBroken(ctx context.Context, c *model.Content) error {
	c, err := s.contents.MarkYouTubeBroken(ctx, c.ID)
	if err != nil {
		return err
	}
	s.log.Warn().
		Int64("content_id", c.ID).
		Str("youtube_id", c.YouTubeID()).
		Msg("video no longer available")

	entries, err := s.entries.ListByContent(ctx, c.ID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		_, err := s.entries.Deactivate(ctx, e.RequestID, e.AccountID, "The YouTube video could not be loaded")
		if err != nil {
			s.log.Error().Err(err).Str("entry_id", e.ID).Msg("entry deactivation failed")
			continue
		}
		s.notifs.Notify(ctx, e.AccountID, NotifPublicRequestUpdate, map[string]string{
			"entry_id": e.ID,
			"status":   model.EntryStatusInactive,
		})
	}
	return nil
}

// payEntries runs one capped reward step for every active entry attached to
// the content.
func (s *ReconcileService) payEntries(ctx context.Context, c *model.Content) error {
	entries, err := s.entries.ListByContent(ctx, c.ID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		paid, err := s.entries.RewardStep(ctx, e.RequestID, e.AccountID, s.rewardCap)
		if err != nil {
			s.log.Error().Err(err).Str("entry_id", e.ID).Msg("reward step failed")
			continue
		}
		if paid > 0 {
			s.analytics.WalletPayment(WalletPaymentV1{
				ReceiverID: e.AccountID,
				Amount:     paid,
				Comment:    fmt.Sprintf("Reward for request %d", e.RequestID),
			})
			s.notifs.Notify(ctx, e.AccountID, NotifPublicRequestUpdate, map[string]string{
				"entry_id":      e.ID,
				"reward_earned": strconv.FormatInt(paid, 10),
			})
			s.log.Info().
				Str("entry_id", e.ID).
				Int64("paid", paid).
				Msg("entry reward paid")
		}
	}
	return nil
}
