package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reactioncam/rcam-go/internal/errs"
	"github.com/reactioncam/rcam-go/internal/model"
)

// ContentRepo stores content and its engagement records. Every score-touching
// write locks the content row, replays the change through the model layer and
// writes the full row back, so the counters and sort index can never drift
// apart within one event.
type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

const contentColumns = `
	id, creator_id, related_to, request_id, first_related_creator,
	tags, tags_history, title, slug, video_url, thumb_url, original_url, duration,
	sort_index, sort_bonus, sort_bonus_penalty,
	views, views_real, votes, votes_real, comment_count, related_count,
	youtube_id_history, youtube_views, youtube_views_updated, youtube_broken,
	youtube_reaction_views, youtube_reaction_views_updated, created`

func scanContent(row pgx.Row) (*model.Content, error) {
	var c model.Content
	err := row.Scan(
		&c.ID, &c.CreatorID, &c.RelatedTo, &c.RequestID, &c.FirstRelatedCreator,
		&c.Tags, &c.TagsHistory, &c.Title, &c.Slug, &c.VideoURL, &c.ThumbURL, &c.OriginalURL, &c.Duration,
		&c.SortIndex, &c.SortBonus, &c.SortBonusPenalty,
		&c.Views, &c.ViewsReal, &c.Votes, &c.VotesReal, &c.CommentCount, &c.RelatedCount,
		&c.YouTubeIDHistory, &c.YouTubeViews, &c.YouTubeViewsUpdated, &c.YouTubeBroken,
		&c.YouTubeReactionViews, &c.YouTubeReactionViewsUpdated, &c.Created,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("content: %w", errs.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

// Get returns a content by id.
func (r *ContentRepo) Get(ctx context.Context, id int64) (*model.Content, error) {
	return scanContent(r.pool.QueryRow(ctx, `SELECT `+contentColumns+` FROM contents WHERE id = $1`, id))
}

// GetBySlug returns the newest content carrying the slug.
func (r *ContentRepo) GetBySlug(ctx context.Context, slug string) (*model.Content, error) {
	return scanContent(r.pool.QueryRow(ctx, `
		SELECT `+contentColumns+`
		FROM contents
		WHERE slug = $1
		ORDER BY created DESC
		LIMIT 1`, slug))
}

// Create inserts a new content row and returns it with its assigned id.
func (r *ContentRepo) Create(ctx context.Context, c *model.Content) (*model.Content, error) {
	return scanContent(r.pool.QueryRow(ctx, `
		INSERT INTO contents
			(creator_id, related_to, request_id, first_related_creator,
			 tags, tags_history, title, slug, video_url, thumb_url, original_url, duration,
			 sort_index, sort_bonus, sort_bonus_penalty,
			 views, views_real, votes, votes_real, comment_count, related_count,
			 youtube_id_history, youtube_views, youtube_views_updated, youtube_broken,
			 youtube_reaction_views, youtube_reaction_views_updated, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		RETURNING `+contentColumns,
		c.CreatorID, c.RelatedTo, c.RequestID, c.FirstRelatedCreator,
		c.Tags, c.TagsHistory, c.Title, c.Slug, c.VideoURL, c.ThumbURL, c.OriginalURL, c.Duration,
		c.SortIndex, c.SortBonus, c.SortBonusPenalty,
		c.Views, c.ViewsReal, c.Votes, c.VotesReal, c.CommentCount, c.RelatedCount,
		c.YouTubeIDHistory, c.YouTubeViews, c.YouTubeViewsUpdated, c.YouTubeBroken,
		c.YouTubeReactionViews, c.YouTubeReactionViewsUpdated, c.Created))
}

// mutate locks the content row, applies fn to the in-memory model and writes
// every mutable column back. Must run inside tx.
func mutateContent(ctx context.Context, tx pgx.Tx, id int64, fn func(c *model.Content) error) (*model.Content, error) {
	c, err := scanContent(tx.QueryRow(ctx, `SELECT `+contentColumns+` FROM contents WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE contents SET
			first_related_creator = $1, tags = $2, tags_history = $3,
			title = $4, slug = $5, video_url = $6, thumb_url = $7, original_url = $8, duration = $9,
			sort_index = $10, sort_bonus = $11, sort_bonus_penalty = $12,
			views = $13, views_real = $14, votes = $15, votes_real = $16,
			comment_count = $17, related_count = $18,
			youtube_id_history = $19, youtube_views = $20, youtube_views_updated = $21,
			youtube_broken = $22,
			youtube_reaction_views = $23, youtube_reaction_views_updated = $24
		WHERE id = $25`,
		c.FirstRelatedCreator, c.Tags, c.TagsHistory,
		c.Title, c.Slug, c.VideoURL, c.ThumbURL, c.OriginalURL, c.Duration,
		c.SortIndex, c.SortBonus, c.SortBonusPenalty,
		c.Views, c.ViewsReal, c.Votes, c.VotesReal,
		c.CommentCount, c.RelatedCount,
		c.YouTubeIDHistory, c.YouTubeViews, c.YouTubeViewsUpdated,
		c.YouTubeBroken,
		c.YouTubeReactionViews, c.YouTubeReactionViewsUpdated,
		c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies fn to the content under a row lock in its own transaction.
func (r *ContentRepo) Update(ctx context.Context, id int64, fn func(c *model.Content) error) (*model.Content, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := mutateContent(ctx, tx, id, fn)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// AddVote records actor's vote on the content. The vote row insert and the
// counter/score update commit together; a second vote by the same account is
// ErrAlreadyExists with nothing changed.
func (r *ContentRepo) AddVote(ctx context.Context, actor *model.Account, contentID int64) (*model.Content, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		INSERT INTO content_votes (account_id, content_id) VALUES ($1, $2)
		ON CONFLICT (account_id, content_id) DO NOTHING`,
		actor.ID, contentID)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, fmt.Errorf("vote: %w", errs.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	c, err := mutateContent(ctx, tx, contentID, func(c *model.Content) error {
		var bonus int64
		if c.CreatorID != actor.ID {
			bonus = model.VoteBonus(actor.Quality, actor.FollowerCount, actor.IsBot)
		}
		c.AddVoteCount(bonus, actor.IsBot, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveVote deletes actor's vote and backs its score contribution out.
func (r *ContentRepo) RemoveVote(ctx context.Context, actor *model.Account, contentID int64) (*model.Content, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `DELETE FROM content_votes WHERE account_id = $1 AND content_id = $2`,
		actor.ID, contentID)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, fmt.Errorf("vote: %w", errs.ErrNotFound)
	}

	now := time.Now().UTC()
	c, err := mutateContent(ctx, tx, contentID, func(c *model.Content) error {
		var bonus int64
		if c.CreatorID != actor.ID {
			bonus = model.VoteBonus(actor.Quality, actor.FollowerCount, actor.IsBot)
		}
		c.RemoveVoteCount(bonus, actor.IsBot, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// HasVoted reports whether the account has a vote on the content.
func (r *ContentRepo) HasVoted(ctx context.Context, accountID, contentID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM content_votes WHERE account_id = $1 AND content_id = $2)`,
		accountID, contentID).Scan(&exists)
	return exists, err
}

// VotedSet returns which of the given contents the account has voted on, in
// one round trip. Used when personalizing a cached feed page.
func (r *ContentRepo) VotedSet(ctx context.Context, accountID int64, contentIDs []int64) (map[int64]bool, error) {
	voted := make(map[int64]bool, len(contentIDs))
	if len(contentIDs) == 0 {
		return voted, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT content_id FROM content_votes
		WHERE account_id = $1 AND content_id = ANY($2)`,
		accountID, contentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		voted[id] = true
	}
	return voted, rows.Err()
}

// AddView bumps the view counters. Deduplication of repeat views happens in
// the service layer; by the time this runs the view counts.
func (r *ContentRepo) AddView(ctx context.Context, actor *model.Account, contentID int64) (*model.Content, error) {
	now := time.Now().UTC()
	return r.Update(ctx, contentID, func(c *model.Content) error {
		var bonus int64
		if c.CreatorID != actor.ID {
			bonus = model.ViewBonus(actor.IsBot)
		}
		c.AddViewCount(bonus, actor.IsBot, now)
		return nil
	})
}

// AddComment inserts the comment and bumps the content's comment counter and
// score in one transaction. Returns the stored comment.
func (r *ContentRepo) AddComment(ctx context.Context, actor *model.Account, comment *model.ContentComment) (*model.ContentComment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO content_comments (content_id, creator_id, body, offset_ms, reply_to)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created`,
		comment.ContentID, actor.ID, comment.Body, comment.OffsetMs, comment.ReplyTo).
		Scan(&comment.ID, &comment.Created)
	if err != nil {
		return nil, err
	}
	comment.CreatorID = actor.ID

	now := time.Now().UTC()
	_, err = mutateContent(ctx, tx, comment.ContentID, func(c *model.Content) error {
		var bonus int64
		if c.CreatorID != actor.ID {
			bonus = model.CommentBonus(actor.Quality, actor.FollowerCount)
		}
		c.AddCommentCount(bonus, 1, now)
		// Hashtags in the comment body accrue to the content's tag set.
		for _, t := range model.ParseHashtags(comment.Body) {
			c.AddTag(t, false)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. Only the comment author or the content
// creator may delete it. The counter decrements and the comment's score
// contribution is backed out.
func (r *ContentRepo) DeleteComment(ctx context.Context, actor *model.Account, commentID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var contentID, authorID int64
	err = tx.QueryRow(ctx, `SELECT content_id, creator_id FROM content_comments WHERE id = $1`, commentID).
		Scan(&contentID, &authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("comment: %w", errs.ErrNotFound)
	}
	if err != nil {
		return err
	}

	// The backed-out bonus must mirror what the comment added, so it is
	// computed from the author's stats, not the deleting actor's.
	var authorQuality, authorFollowers int
	err = tx.QueryRow(ctx, `SELECT quality, follower_count FROM accounts WHERE id = $1`, authorID).
		Scan(&authorQuality, &authorFollowers)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = mutateContent(ctx, tx, contentID, func(c *model.Content) error {
		if actor.ID != authorID && actor.ID != c.CreatorID {
			return errs.Forbiddenf("only the comment author or content creator may delete it")
		}
		var bonus int64
		if c.CreatorID != authorID {
			bonus = model.CommentBonus(authorQuality, authorFollowers)
		}
		c.AddCommentCount(bonus, -1, now)
		return nil
	})
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM content_comments WHERE id = $1`, commentID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListComments returns the newest comments on a content.
func (r *ContentRepo) ListComments(ctx context.Context, contentID int64, limit int) ([]model.ContentComment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, content_id, creator_id, body, offset_ms, reply_to, created
		FROM content_comments
		WHERE content_id = $1
		ORDER BY created DESC
		LIMIT $2`, contentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.ContentComment
	for rows.Next() {
		var c model.ContentComment
		err := rows.Scan(&c.ID, &c.ContentID, &c.CreatorID, &c.Body, &c.OffsetMs, &c.ReplyTo, &c.Created)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ApplyRelated propagates a reaction going public (count=1) or being deleted
// (count=-1) to the original's counters and score. Returns the updated
// original and whether this actor became its first related creator.
func (r *ContentRepo) ApplyRelated(ctx context.Context, actor *model.Account, originalID int64, count int64) (*model.Content, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	// More than one public reaction by this actor means the one driving this
	// call is a repeat.
	var priorReactions int64
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM contents
		WHERE related_to = $1 AND creator_id = $2 AND NOT (tags @> ARRAY['deleted'])`,
		originalID, actor.ID).Scan(&priorReactions)
	if err != nil {
		return nil, false, err
	}
	reactedAlready := priorReactions > 1

	now := time.Now().UTC()
	first := false
	c, err := mutateContent(ctx, tx, originalID, func(c *model.Content) error {
		var bonus int64
		if c.CreatorID != actor.ID {
			bonus = model.RelatedBonus(actor.Quality, actor.FollowerCount, reactedAlready)
		}
		first = c.AddRelatedCount(actor.ID, bonus, count, now)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return c, first, nil
}

// RecordYouTubeViews stores an observed external view count for a reaction and
// rolls the positive delta up into the creator's and the original's lifetime
// aggregates, all in one transaction. Returns the paid-out delta (0 when the
// observation did not increase the count).
func (r *ContentRepo) RecordYouTubeViews(ctx context.Context, contentID, observed int64) (*model.Content, int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	var delta int64
	c, err := mutateContent(ctx, tx, contentID, func(c *model.Content) error {
		delta = c.SetYouTubeViews(observed, now)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if delta > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE accounts
			SET youtube_reaction_views = youtube_reaction_views + $1,
			    youtube_reaction_views_updated = NOW()
			WHERE id = $2`, delta, c.CreatorID)
		if err != nil {
			return nil, 0, err
		}
		if c.RelatedTo != nil {
			_, err = tx.Exec(ctx, `
				UPDATE contents
				SET youtube_reaction_views = youtube_reaction_views + $1,
				    youtube_reaction_views_updated = NOW()
				WHERE id = $2`, delta, *c.RelatedTo)
			if err != nil {
				return nil, 0, err
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return c, delta, nil
}

// MarkYouTubeBroken flags the content's video as unavailable and writes a
// warning event on the creator's account in the same transaction.
func (r *ContentRepo) MarkYouTubeBroken(ctx context.Context, contentID int64) (*model.Content, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := mutateContent(ctx, tx, contentID, func(c *model.Content) error {
		c.YouTubeBroken = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO account_events (account_id, name, class, properties)
		VALUES ($1, 'youtube_video_broken', 'warning', jsonb_build_object('content_id', $2::bigint, 'youtube_id', $3::text))`,
		c.CreatorID, c.ID, c.YouTubeID())
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Feed sort orders.
const (
	SortHot    = "hot"    // sort_index desc (the ranking engine's output)
	SortRecent = "recent" // created desc
	SortTop    = "top"    // votes desc
)

// ListParams selects a feed page. Tags is an AND filter over current tags.
// Cursor is an exclusive upper bound on the active sort column (sort_index
// for hot, epoch seconds for recent, votes for top); 0 means from the top.
type ListParams struct {
	Tags   []string
	Sort   string
	Limit  int
	Cursor int64
}

// List returns public content matching all tags in the requested order.
func (r *ContentRepo) List(ctx context.Context, p ListParams) ([]model.Content, error) {
	if p.Limit <= 0 {
		p.Limit = 10
	}
	cursor := p.Cursor
	if cursor == 0 {
		cursor = 1<<63 - 1
	}
	var order, bound string
	switch p.Sort {
	case SortRecent:
		order, bound = "created DESC", "EXTRACT(EPOCH FROM created) < $2"
	case SortTop:
		order, bound = "votes DESC, sort_index DESC", "votes < $2"
	case SortHot, "":
		order, bound = "sort_index DESC", "sort_index < $2"
	default:
		return nil, errs.InvalidArgumentf("%q is not a valid feed sort", p.Sort)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+contentColumns+`
		FROM contents
		WHERE tags @> $1 AND NOT (tags @> ARRAY['deleted']) AND `+bound+`
		ORDER BY `+order+`
		LIMIT $3`, p.Tags, cursor, p.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContents(rows)
}

// ListRelated returns the public reactions to a content, hottest first.
func (r *ContentRepo) ListRelated(ctx context.Context, originalID int64, tags []string, limit int, cursor int64) ([]model.Content, error) {
	if limit <= 0 {
		limit = 10
	}
	if cursor == 0 {
		cursor = 1<<63 - 1
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+contentColumns+`
		FROM contents
		WHERE related_to = $1 AND tags @> $2 AND NOT (tags @> ARRAY['deleted']) AND sort_index < $3
		ORDER BY sort_index DESC
		LIMIT $4`, originalID, tags, cursor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContents(rows)
}

// ListByCreator returns an account's content, newest first, including
// unlisted content when includeUnlisted is set (for the creator's own view).
func (r *ContentRepo) ListByCreator(ctx context.Context, creatorID int64, includeUnlisted bool, limit int) ([]model.Content, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE creator_id = $1 AND NOT (tags @> ARRAY['deleted'])
		ORDER BY created DESC
		LIMIT $2`
	if !includeUnlisted {
		query = `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE creator_id = $1 AND tags @> ARRAY['published']
		ORDER BY created DESC
		LIMIT $2`
	}
	rows, err := r.pool.Query(ctx, query, creatorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContents(rows)
}

// StaleYouTubeCandidates returns ids of active-entry reactions whose external
// view counts have not been observed since the staleness cutoff.
func (r *ContentRepo) StaleYouTubeCandidates(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id
		FROM contents c
		JOIN request_entries e ON e.content_id = c.id AND e.status = 'active'
		WHERE NOT c.youtube_broken
		  AND array_length(c.youtube_id_history, 1) > 0
		  AND c.youtube_id_history[array_upper(c.youtube_id_history, 1)] <> ''
		  AND (c.youtube_views_updated IS NULL OR c.youtube_views_updated < $1)
		ORDER BY c.youtube_views_updated ASC NULLS FIRST
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecentlyEngagedIDs returns ids of contents that received votes or comments
// since the cutoff, for counter repair.
func (r *ContentRepo) RecentlyEngagedIDs(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT content_id FROM (
			SELECT content_id FROM content_votes WHERE created > $1
			UNION ALL
			SELECT content_id FROM content_comments WHERE created > $1
		) engaged
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecountEngagement recomputes the denormalized vote and comment counters from
// the engagement tables. The sort index is left alone; only counter drift is
// repaired.
func (r *ContentRepo) RecountEngagement(ctx context.Context, contentID int64) (*model.Content, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var votes, votesReal, comments int64
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE NOT a.is_bot)
		FROM content_votes v
		JOIN accounts a ON a.id = v.account_id
		WHERE v.content_id = $1`, contentID).Scan(&votes, &votesReal)
	if err != nil {
		return nil, err
	}
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM content_comments WHERE content_id = $1`, contentID).
		Scan(&comments)
	if err != nil {
		return nil, err
	}

	c, err := mutateContent(ctx, tx, contentID, func(c *model.Content) error {
		c.Votes = votes
		c.VotesReal = votesReal
		c.CommentCount = comments
		if c.Views < c.Votes {
			c.Views = c.Votes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func collectContents(rows pgx.Rows) ([]model.Content, error) {
	var contents []model.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, *c)
	}
	return contents, rows.Err()
}
