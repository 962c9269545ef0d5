package model

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/reactioncam/rcam-go/internal/errs"
)

// sortEpoch anchors the time-based component of the sort index. Content is
// born with sort_index = seconds since this instant, so one second of age and
// one point of applied bonus are the same currency.
var sortEpoch = time.Date(2017, time.May, 1, 0, 0, 0, 0, time.UTC)

const (
	// hotBonusThreshold is the raw cumulative bonus above which content is
	// tagged "is hot". Sticky once crossed.
	hotBonusThreshold = 50_000

	// bonusDecayDivisor shapes the quadratic decay of applied bonuses in the
	// combined age+bonus dimension.
	bonusDecayDivisor = 186_624_000_000

	// bonusDecayFloor is the minimum fraction of a raw bonus that is applied
	// no matter how old or hot the content already is.
	bonusDecayFloor = 0.1
)

// Content is a piece of video content: an original (RelatedTo == nil,
// typically referencing a third-party video) or a reaction to another Content.
type Content struct {
	ID                  int64   `json:"id"`
	CreatorID           int64   `json:"creator_id"`
	RelatedTo           *int64  `json:"related_to,omitempty"`
	RequestID           *int64  `json:"request_id,omitempty"`
	FirstRelatedCreator *int64  `json:"-"`
	Tags                []string `json:"-"`
	TagsHistory         []string `json:"-"`
	Title               *string `json:"title,omitempty"`
	Slug                *string `json:"-"`
	VideoURL            *string `json:"video_url,omitempty"`
	ThumbURL            *string `json:"thumb_url,omitempty"`
	OriginalURL         *string `json:"original_url,omitempty"`
	Duration            int     `json:"duration"`

	SortIndex        int64 `json:"-"`
	SortBonus        int64 `json:"-"`
	SortBonusPenalty int64 `json:"-"`

	Views        int64 `json:"views"`
	ViewsReal    int64 `json:"-"`
	Votes        int64 `json:"votes"`
	VotesReal    int64 `json:"-"`
	CommentCount int64 `json:"comment_count"`
	RelatedCount int64 `json:"related_count"`

	// YouTubeIDHistory holds every video id this content has been published
	// under, most recent last. An empty-string entry records an explicit
	// unset.
	YouTubeIDHistory    []string   `json:"-"`
	YouTubeViews        *int64     `json:"-"`
	YouTubeViewsUpdated *time.Time `json:"-"`
	YouTubeBroken       bool       `json:"-"`

	YouTubeReactionViews        int64      `json:"-"`
	YouTubeReactionViewsUpdated *time.Time `json:"-"`

	Created time.Time `json:"created"`
}

// BaseSortIndex is the time-based sort index a content created at the given
// instant starts from.
func BaseSortIndex(now time.Time) int64 {
	return int64(now.Sub(sortEpoch).Seconds())
}

// NewContent builds a content entity with its initial sort index and tag set.
// Restricted tags in the input are dropped unless allowRestricted is set.
func NewContent(creatorID int64, tags []string, allowRestricted bool, now time.Time) (*Content, error) {
	c := &Content{
		CreatorID: creatorID,
		SortIndex: BaseSortIndex(now),
		Created:   now,
	}
	if err := c.SetTags(tags, allowRestricted, true); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplySortBonus applies a raw bonus to the ranking score. Negative bonuses
// clamp so the cumulative raw bonus never goes below zero. The applied amount
// decays quadratically in the combined age-plus-bonus dimension, floored at
// 10%; the withheld remainder accumulates in SortBonusPenalty. Returns the
// amount actually applied to SortIndex.
func (c *Content) ApplySortBonus(bonus int64, now time.Time) int64 {
	if bonus < 0 && -bonus > c.SortBonus {
		bonus = -c.SortBonus
	}
	age := now.Sub(c.Created).Seconds()
	val := (age + float64(c.SortBonus)) * (age + float64(c.SortBonus)) / bonusDecayDivisor
	factor := 1 - val
	if factor < bonusDecayFloor {
		factor = bonusDecayFloor
	} else if factor > 1 {
		factor = 1
	}
	applied := int64(float64(bonus) * factor)
	c.SortBonus += bonus
	c.SortBonusPenalty += bonus - applied
	c.SortIndex += applied
	if c.SortBonus > hotBonusThreshold {
		c.AddTag(TagHot, true)
	}
	return applied
}

// SortBase is the time-derived component of the sort index with all applied
// bonuses backed out.
func (c *Content) SortBase() int64 {
	return c.SortIndex - c.SortBonus + c.SortBonusPenalty
}

// AddVoteCount increments the vote counters and applies the given ranking
// bonus (zero for self-votes). Views never trail votes.
func (c *Content) AddVoteCount(bonus int64, isBot bool, now time.Time) {
	if bonus != 0 {
		c.ApplySortBonus(bonus, now)
	}
	c.Votes++
	if c.Views < c.Votes {
		c.Views = c.Votes
	}
	if !isBot {
		c.VotesReal++
	}
}

// RemoveVoteCount reverses a vote: decrements counters (floored at zero) and
// backs the bonus out of the score.
func (c *Content) RemoveVoteCount(bonus int64, isBot bool, now time.Time) {
	if bonus != 0 {
		c.ApplySortBonus(-bonus, now)
	}
	if c.Votes > 0 {
		c.Votes--
	}
	if !isBot && c.VotesReal > 0 {
		c.VotesReal--
	}
}

// AddViewCount increments the view counters and applies the given bonus.
func (c *Content) AddViewCount(bonus int64, isBot bool, now time.Time) {
	if bonus != 0 {
		c.ApplySortBonus(bonus, now)
	}
	c.Views++
	if !isBot {
		c.ViewsReal++
	}
}

// AddCommentCount adjusts the comment counter by count (never below zero) and
// applies the given per-comment bonus.
func (c *Content) AddCommentCount(bonus int64, count int64, now time.Time) {
	if count < 0 && -count > c.CommentCount {
		count = -c.CommentCount
	}
	c.CommentCount += count
	if bonus != 0 && count != 0 {
		c.ApplySortBonus(bonus*count, now)
	}
}

// AddRelatedCount records that a reaction to this content became public (or
// was deleted, for negative counts). Returns true if this set
// FirstRelatedCreator for the first time. The bonus must already reflect the
// actor's quality and any repost penalty.
func (c *Content) AddRelatedCount(actorID int64, bonus int64, count int64, now time.Time) bool {
	first := false
	if count < 0 && -count > c.RelatedCount {
		count = -c.RelatedCount
	}
	c.RelatedCount += count
	if c.RelatedCount > 0 {
		c.AddTag(TagReacted, true)
	}
	if actorID == c.CreatorID {
		return false
	}
	if count > 0 && c.FirstRelatedCreator == nil {
		if c.RelatedCount < 3 {
			// Bump the content sort index as if it was just created.
			if i := BaseSortIndex(now) + c.SortBonus - c.SortBonusPenalty; i > c.SortIndex {
				c.SortIndex = i
			}
		}
		c.FirstRelatedCreator = &actorID
		first = true
	}
	c.ApplySortBonus(bonus*count, now)
	if c.HasTag(TagHot) {
		// Reactions can become originals in their own right with enough
		// reactions of their own.
		threshold := int64(3)
		if c.RelatedTo != nil {
			threshold = 6
		}
		if c.RelatedCount >= threshold {
			c.AddTag(TagOriginal, true)
		}
	}
	return first
}

// HasTag reports whether the tag is currently set.
func (c *Content) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag adds a single tag, keeping existing ones.
func (c *Content) AddTag(tag string, allowRestricted bool) {
	if c.HasTag(tag) {
		return
	}
	if !allowRestricted && IsTagRestricted(tag) {
		return
	}
	c.Tags = append(c.Tags, tag)
	c.recordTagHistory(tag)
}

// SetTags replaces the tag set. Restricted tags already on the content are
// kept unless keepRestricted is false. Content must keep at least one tag.
func (c *Content) SetTags(tags []string, allowRestricted, keepRestricted bool) error {
	next := make(map[string]bool)
	for _, t := range tags {
		if !allowRestricted && IsTagRestricted(t) {
			continue
		}
		next[t] = true
	}
	if keepRestricted {
		for _, t := range c.Tags {
			if IsTagRestricted(t) {
				next[t] = true
			}
		}
	}
	if len(next) == 0 {
		return errs.InvalidArgumentf("content must have at least one valid tag")
	}
	c.Tags = c.Tags[:0]
	for t := range next {
		c.Tags = append(c.Tags, t)
		c.recordTagHistory(t)
	}
	return nil
}

// RemoveTag removes a single tag; restricted tags only when allowed.
func (c *Content) RemoveTag(tag string, allowRestricted bool) {
	if !allowRestricted && IsTagRestricted(tag) {
		return
	}
	kept := c.Tags[:0]
	for _, t := range c.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	c.Tags = kept
}

func (c *Content) recordTagHistory(tag string) {
	for _, t := range c.TagsHistory {
		if t == tag {
			return
		}
	}
	c.TagsHistory = append(c.TagsHistory, tag)
}

// IsPublic reports whether any current tag makes the content listable.
func (c *Content) IsPublic() bool {
	for _, t := range c.Tags {
		if !IsTagUnlisted(t) {
			return true
		}
	}
	return false
}

// VisibleTags returns the tags exposed in API responses, sorted. Content that
// used to be featured carries a derived "exfeatured" tag.
func (c *Content) VisibleTags() []string {
	var tags []string
	for _, t := range c.Tags {
		if !internalTags[t] {
			tags = append(tags, t)
		}
	}
	wasFeatured := false
	for _, t := range c.TagsHistory {
		if t == TagFeatured {
			wasFeatured = true
		}
	}
	if wasFeatured && !c.HasTag(TagFeatured) {
		tags = append(tags, TagExFeatured)
	}
	sort.Strings(tags)
	return tags
}

// VisibleBy reports whether the given account (0 for anonymous) may see this
// content.
func (c *Content) VisibleBy(accountID int64) bool {
	if c.HasTag(TagDeleted) {
		return false
	}
	if c.IsPublic() {
		return true
	}
	return accountID != 0 && accountID == c.CreatorID
}

// YouTubeID returns the current video id, if any.
func (c *Content) YouTubeID() string {
	if len(c.YouTubeIDHistory) == 0 {
		return ""
	}
	return c.YouTubeIDHistory[len(c.YouTubeIDHistory)-1]
}

// SetYouTubeID appends a new video id to the history (moving it to the end if
// already present) and resets all metadata about the previous video. Setting
// the current id again is a no-op; clearing an empty history is a no-op.
func (c *Content) SetYouTubeID(id string) {
	n := len(c.YouTubeIDHistory)
	if n > 0 && c.YouTubeIDHistory[n-1] == id {
		return
	}
	if n == 0 && id == "" {
		return
	}
	kept := c.YouTubeIDHistory[:0]
	for _, h := range c.YouTubeIDHistory {
		if h != id {
			kept = append(kept, h)
		}
	}
	c.YouTubeIDHistory = append(kept, id)
	c.YouTubeBroken = false
	c.YouTubeViews = nil
	c.YouTubeViewsUpdated = nil
}

// SetYouTubeViews records an observed view count and applies the ranking
// bonus for new views. Observed decreases are ignored (the external counter
// is authoritative but not monotone under takedowns). Returns the positive
// delta, or 0.
func (c *Content) SetYouTubeViews(count int64, now time.Time) int64 {
	var prev int64
	if c.YouTubeViews != nil {
		prev = *c.YouTubeViews
	}
	delta := count - prev
	if delta < 0 {
		return 0
	}
	c.YouTubeViews = &count
	c.YouTubeViewsUpdated = &now
	if delta > 0 {
		c.ApplySortBonus(delta*youTubeViewBonus, now)
	}
	return delta
}

var slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

// MakeSlug derives a URL slug from free text.
func MakeSlug(value string) string {
	v := slugCleanRe.ReplaceAllString(strings.ToLower(value), " ")
	v = strings.Join(strings.Fields(v), "-")
	if len(v) > 50 {
		v = v[:50]
	}
	return v
}
