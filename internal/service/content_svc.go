package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/reactioncam/rcam-go/internal/errs"
	"github.com/reactioncam/rcam-go/internal/model"
	"github.com/reactioncam/rcam-go/internal/repository"
	"github.com/reactioncam/rcam-go/pkg/hash"
)

// ContentService orchestrates the content lifecycle: creation, publishing,
// engagement and the propagation of reaction events onto originals.
type ContentService struct {
	contents  *repository.ContentRepo
	accounts  *repository.AccountRepo
	notifs    *NotifService
	analytics *Analytics
	cache     *CacheService
	log       zerolog.Logger
}

func NewContentService(contents *repository.ContentRepo, accounts *repository.AccountRepo,
	notifs *NotifService, analytics *Analytics, cache *CacheService, log zerolog.Logger) *ContentService {
	return &ContentService{
		contents:  contents,
		accounts:  accounts,
		notifs:    notifs,
		analytics: analytics,
		cache:     cache,
		log:       log,
	}
}

// CreateInput carries the caller-supplied fields of a new content.
type CreateInput struct {
	Tags        string
	Title       *string
	VideoURL    *string
	ThumbURL    *string
	OriginalURL *string
	Duration    int
	RelatedTo   *int64
	RequestID   *int64
	YouTubeID   string
	Publish     bool
}

// Create builds and stores a new content for the actor. Publishing (the
// "published" tag) requires publish permission; published content immediately
// earns its creation bonus and, for reactions, feeds back into the original.
func (s *ContentService) Create(ctx context.Context, actor *model.Account, in CreateInput) (*model.Content, error) {
	now := time.Now().UTC()
	tags := model.ParseTags(in.Tags, false)
	c, err := model.NewContent(actor.ID, tags, false, now)
	if err != nil {
		return nil, err
	}
	c.Title = in.Title
	c.VideoURL = in.VideoURL
	c.ThumbURL = in.ThumbURL
	c.OriginalURL = in.OriginalURL
	c.Duration = in.Duration
	c.RequestID = in.RequestID
	if in.Title != nil {
		if slug := model.MakeSlug(*in.Title); slug != "" {
			c.Slug = &slug
		}
	}
	if in.YouTubeID != "" {
		c.SetYouTubeID(in.YouTubeID)
	}

	var original *model.Content
	if in.RelatedTo != nil {
		original, err = s.contents.Get(ctx, *in.RelatedTo)
		if err != nil {
			return nil, err
		}
		c.RelatedTo = &original.ID
		c.AddTag(model.TagReaction, true)
		// Reactions inherit the original's transferable tags so they land in
		// the same feeds.
		for _, t := range original.Tags {
			if model.IsTagTransferable(t) {
				c.AddTag(t, true)
			}
		}
	}

	publish := in.Publish
	if publish && !actor.CanPublish {
		return nil, errs.Forbiddenf("account may not publish content")
	}
	if publish {
		c.AddTag(model.TagPublished, true)
		c.ApplySortBonus(model.CreationBonus(actor.Quality), now)
	} else {
		// Unpublished uploads stay off public listings until Publish.
		c.AddTag(model.TagDraft, true)
	}

	c, err = s.contents.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	if publish && original != nil {
		s.propagateReaction(ctx, actor, original.ID, c)
	}

	s.analytics.Content(ContentV2{
		ContentID: c.ID,
		CreatorID: c.CreatorID,
		RelatedTo: c.RelatedTo,
		RequestID: c.RequestID,
		Tags:      c.VisibleTags(),
		Duration:  c.Duration,
	})
	return c, nil
}

// Publish makes an existing unlisted content public, applying the creation
// bonus and reaction propagation exactly once.
func (s *ContentService) Publish(ctx context.Context, actor *model.Account, contentID int64) (*model.Content, error) {
	if !actor.CanPublish {
		return nil, errs.Forbiddenf("account may not publish content")
	}
	now := time.Now().UTC()
	var wasPublic bool
	c, err := s.contents.Update(ctx, contentID, func(c *model.Content) error {
		if c.CreatorID != actor.ID {
			return errs.Forbiddenf("only the creator may publish content")
		}
		if c.HasTag(model.TagDeleted) {
			return fmt.Errorf("content: %w", errs.ErrNotFound)
		}
		wasPublic = c.IsPublic()
		c.AddTag(model.TagPublished, true)
		c.RemoveTag(model.TagDraft, true)
		if !wasPublic {
			c.ApplySortBonus(model.CreationBonus(actor.Quality), now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !wasPublic && c.RelatedTo != nil {
		s.propagateReaction(ctx, actor, *c.RelatedTo, c)
	}
	return c, nil
}

// propagateReaction rolls a freshly public reaction up into its original:
// counters, score, first-reactor bookkeeping and the creator notification.
func (s *ContentService) propagateReaction(ctx context.Context, actor *model.Account, originalID int64, reaction *model.Content) {
	original, first, err := s.contents.ApplyRelated(ctx, actor, originalID, 1)
	if err != nil {
		s.log.Error().Err(err).
			Int64("original_id", originalID).
			Int64("reaction_id", reaction.ID).
			Msg("reaction propagation failed")
		return
	}
	if original.CreatorID != actor.ID {
		s.notifs.Notify(ctx, original.CreatorID, NotifContentReferenced, map[string]string{
			"content_id":  strconv.FormatInt(original.ID, 10),
			"reaction_id": strconv.FormatInt(reaction.ID, 10),
			"reactor_id":  strconv.FormatInt(actor.ID, 10),
		})
	}
	if first {
		s.analytics.ContentFirst(ContentFirstV1{
			OriginalID: original.ID,
			CreatorID:  original.CreatorID,
			ReactorID:  actor.ID,
		})
	}
}

// Get returns a content visible to the viewer, by id.
func (s *ContentService) Get(ctx context.Context, viewerID, contentID int64) (*model.Content, error) {
	c, err := s.contents.Get(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if !c.VisibleBy(viewerID) {
		return nil, fmt.Errorf("content: %w", errs.ErrNotFound)
	}
	return c, nil
}

// GetBySlug returns a content visible to the viewer, by slug.
func (s *ContentService) GetBySlug(ctx context.Context, viewerID int64, slug string) (*model.Content, error) {
	c, err := s.contents.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !c.VisibleBy(viewerID) {
		return nil, fmt.Errorf("content: %w", errs.ErrNotFound)
	}
	return c, nil
}

// ListByCreator returns an account's content by username, newest first.
// Unlisted items (drafts, recordings) are included only for the creator.
func (s *ContentService) ListByCreator(ctx context.Context, viewerID int64, username string, limit int) ([]model.Content, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.contents.ListByCreator(ctx, account.ID, viewerID == account.ID, limit)
}

// Voted reports whether the viewer has voted on the content.
func (s *ContentService) Voted(ctx context.Context, viewerID, contentID int64) (bool, error) {
	if _, err := s.Get(ctx, viewerID, contentID); err != nil {
		return false, err
	}
	return s.contents.HasVoted(ctx, viewerID, contentID)
}

// SetTags replaces the caller-settable tags on the actor's content.
func (s *ContentService) SetTags(ctx context.Context, actor *model.Account, contentID int64, tagsString string) (*model.Content, error) {
	tags := model.ParseTags(tagsString, false)
	return s.contents.Update(ctx, contentID, func(c *model.Content) error {
		if c.CreatorID != actor.ID {
			return errs.Forbiddenf("only the creator may edit content")
		}
		return c.SetTags(tags, false, true)
	})
}

// Delete soft-deletes the actor's content and backs its reaction contribution
// out of the original.
func (s *ContentService) Delete(ctx context.Context, actor *model.Account, contentID int64) error {
	var wasPublic bool
	c, err := s.contents.Update(ctx, contentID, func(c *model.Content) error {
		if c.CreatorID != actor.ID {
			return errs.Forbiddenf("only the creator may delete content")
		}
		wasPublic = c.IsPublic()
		c.AddTag(model.TagDeleted, true)
		c.RemoveTag(model.TagPublished, true)
		return nil
	})
	if err != nil {
		return err
	}
	if wasPublic && c.RelatedTo != nil {
		if _, _, err := s.contents.ApplyRelated(ctx, actor, *c.RelatedTo, -1); err != nil {
			s.log.Error().Err(err).
				Int64("original_id", *c.RelatedTo).
				Int64("reaction_id", c.ID).
				Msg("reaction removal propagation failed")
		}
	}
	return nil
}

// Vote records the actor's vote and notifies the creator. Voting twice is a
// no-op success for the caller.
func (s *ContentService) Vote(ctx context.Context, actor *model.Account, contentID int64) (*model.Content, error) {
	c, err := s.contents.AddVote(ctx, actor, contentID)
	if errors.Is(err, errs.ErrAlreadyExists) {
		return s.contents.Get(ctx, contentID)
	}
	if err != nil {
		return nil, err
	}
	if c.CreatorID != actor.ID {
		s.notifs.Notify(ctx, c.CreatorID, NotifContentVote, map[string]string{
			"content_id": strconv.FormatInt(c.ID, 10),
			"voter_id":   strconv.FormatInt(actor.ID, 10),
		})
	}
	s.analytics.ContentVote(ContentVoteV1{ContentID: c.ID, VoterID: actor.ID, Added: true, Votes: c.Votes})
	return c, nil
}

// Unvote removes the actor's vote.
func (s *ContentService) Unvote(ctx context.Context, actor *model.Account, contentID int64) (*model.Content, error) {
	c, err := s.contents.RemoveVote(ctx, actor, contentID)
	if errors.Is(err, errs.ErrNotFound) {
		return s.contents.Get(ctx, contentID)
	}
	if err != nil {
		return nil, err
	}
	s.analytics.ContentVote(ContentVoteV1{ContentID: c.ID, VoterID: actor.ID, Added: false, Votes: c.Votes})
	return c, nil
}

// View counts a view by the actor. Repeat views within the fingerprint window
// are absorbed without touching the database.
func (s *ContentService) View(ctx context.Context, actor *model.Account, contentID int64) error {
	fp := hash.Fingerprint(fmt.Sprintf("%d/%d", actor.ID, contentID))
	fresh, err := s.cache.MarkViewed(ctx, fp)
	if err != nil {
		s.log.Warn().Err(err).Msg("view fingerprint check failed")
		fresh = true
	}
	if !fresh {
		return nil
	}
	_, err = s.contents.AddView(ctx, actor, contentID)
	return err
}

// Comment adds a comment and notifies the creator.
func (s *ContentService) Comment(ctx context.Context, actor *model.Account, comment *model.ContentComment) (*model.ContentComment, error) {
	if comment.Body == "" {
		return nil, errs.InvalidArgumentf("comment text must be provided")
	}
	stored, err := s.contents.AddComment(ctx, actor, comment)
	if err != nil {
		return nil, err
	}
	c, err := s.contents.Get(ctx, comment.ContentID)
	if err == nil && c.CreatorID != actor.ID {
		s.notifs.Notify(ctx, c.CreatorID, NotifContentComment, map[string]string{
			"content_id": strconv.FormatInt(c.ID, 10),
			"comment_id": strconv.FormatInt(stored.ID, 10),
			"author_id":  strconv.FormatInt(actor.ID, 10),
		})
	}
	return stored, nil
}

// DeleteComment removes a comment (author or content creator only).
func (s *ContentService) DeleteComment(ctx context.Context, actor *model.Account, commentID int64) error {
	return s.contents.DeleteComment(ctx, actor, commentID)
}

// ListComments returns the newest comments on a content.
func (s *ContentService) ListComments(ctx context.Context, contentID int64, limit int) ([]model.ContentComment, error) {
	return s.contents.ListComments(ctx, contentID, limit)
}

// SetYouTubeID attaches a published video id to the content. Admin overrides
// on someone else's content leave an audit event on the creator's account.
func (s *ContentService) SetYouTubeID(ctx context.Context, actor *model.Account, contentID int64, videoID string, admin bool) (*model.Content, error) {
	c, err := s.contents.Update(ctx, contentID, func(c *model.Content) error {
		if c.CreatorID != actor.ID && !admin {
			return errs.Forbiddenf("only the creator may set the video id")
		}
		c.SetYouTubeID(videoID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if admin && c.CreatorID != actor.ID {
		if err := s.accounts.AddEvent(ctx, c.CreatorID, "youtube_id_override", "warning", map[string]string{
			"content_id": strconv.FormatInt(c.ID, 10),
			"youtube_id": videoID,
			"actor_id":   strconv.FormatInt(actor.ID, 10),
		}); err != nil {
			s.log.Warn().Err(err).Int64("content_id", c.ID).Msg("override audit event failed")
		}
	}
	return c, nil
}
