package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/reactioncam/rcam-go/internal/model"
	"github.com/reactioncam/rcam-go/internal/repository"
)

// voteMarker prefixes the per-viewer vote flag placeholder embedded in cached
// feed pages. The page is rendered once with markers and cached; serving it
// replaces each marker with true/false for the requesting viewer, so one
// cached page serves every viewer.
const voteMarker = "&q:$<_z/"

// Feed page TTLs. Hot pages churn with every engagement event but small
// staleness is fine; recent pages go stale the moment anything is created.
const (
	hotFeedTTL    = 5 * time.Minute
	recentFeedTTL = 60 * time.Second
	topFeedTTL    = time.Hour
	relatedMaxTTL = 24 * time.Hour
)

// FeedService renders and caches feed pages. Pages are cached per cursor;
// deeper pages are rare and mostly expire unused.
type FeedService struct {
	contents *repository.ContentRepo
	cache    *CacheService
	log      zerolog.Logger
}

func NewFeedService(contents *repository.ContentRepo, cache *CacheService, log zerolog.Logger) *FeedService {
	return &FeedService{contents: contents, cache: cache, log: log}
}

// feedItem is the wire form of one content in a feed. Voted carries the raw
// marker when rendered for the cache.
type feedItem struct {
	ID           int64     `json:"id"`
	CreatorID    int64     `json:"creator_id"`
	RelatedTo    *int64    `json:"related_to,omitempty"`
	Title        *string   `json:"title,omitempty"`
	Tags         []string  `json:"tags"`
	VideoURL     *string   `json:"video_url,omitempty"`
	ThumbURL     *string   `json:"thumb_url,omitempty"`
	OriginalURL  *string   `json:"original_url,omitempty"`
	Duration     int       `json:"duration"`
	Views        int64     `json:"views"`
	Votes        int64     `json:"votes"`
	CommentCount int64     `json:"comment_count"`
	RelatedCount int64     `json:"related_count"`
	Voted        string    `json:"voted"`
	Created      time.Time `json:"created"`
}

// Feed returns a feed page as ready-to-send JSON, personalized with the
// viewer's vote flags. viewerID 0 means anonymous (all flags false).
func (s *FeedService) Feed(ctx context.Context, viewerID int64, tags []string, sort string, limit int, cursor int64) ([]byte, error) {
	// Feeds only ever list published content, whatever else is filtered on.
	published := false
	for _, t := range tags {
		if t == model.TagPublished {
			published = true
		}
	}
	if !published {
		tags = append(tags, model.TagPublished)
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if sort == "" {
		sort = repository.SortHot
	}

	key := feedKey(tags, sort, limit, cursor)
	page, err := s.cache.GetBytes(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("feed cache read failed")
	}
	if page == nil {
		contents, err := s.contents.List(ctx, repository.ListParams{
			Tags: tags, Sort: sort, Limit: limit, Cursor: cursor,
		})
		if err != nil {
			return nil, err
		}
		page, err = renderPage(contents)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetBytes(ctx, key, page, feedTTL(sort)); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("feed cache write failed")
		}
	}
	return s.personalize(ctx, page, viewerID)
}

// Related returns the reactions to a content as a personalized feed page. The
// TTL shrinks for young originals, whose reaction sets still move quickly.
func (s *FeedService) Related(ctx context.Context, viewerID int64, original *model.Content, limit int, cursor int64) ([]byte, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	key := fmt.Sprintf("related:v1:%d:%d:%d", original.ID, limit, cursor)
	page, err := s.cache.GetBytes(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("related cache read failed")
	}
	if page == nil {
		contents, err := s.contents.ListRelated(ctx, original.ID, []string{model.TagPublished}, limit, cursor)
		if err != nil {
			return nil, err
		}
		page, err = renderPage(contents)
		if err != nil {
			return nil, err
		}
		ttl := time.Since(original.Created)
		if ttl > relatedMaxTTL {
			ttl = relatedMaxTTL
		}
		if ttl < time.Second {
			ttl = time.Second
		}
		if err := s.cache.SetBytes(ctx, key, page, ttl); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("related cache write failed")
		}
	}
	return s.personalize(ctx, page, viewerID)
}

// Invalidate drops the cached first page for the given feed. Deeper pages are
// left to expire on their TTL.
func (s *FeedService) Invalidate(ctx context.Context, tags []string, sort string, limit int) error {
	return s.cache.Delete(ctx, feedKey(tags, sort, limit, 0))
}

func feedKey(tags []string, sortBy string, limit int, cursor int64) string {
	// Sort a copy so equivalent tag sets share one cache entry.
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	return fmt.Sprintf("feed:v1:%s:%s:%d:%d", strings.Join(sorted, ","), sortBy, limit, cursor)
}

func feedTTL(sort string) time.Duration {
	switch sort {
	case repository.SortRecent:
		return recentFeedTTL
	case repository.SortTop:
		return topFeedTTL
	default:
		return hotFeedTTL
	}
}

func renderPage(contents []model.Content) ([]byte, error) {
	items := make([]feedItem, 0, len(contents))
	for i := range contents {
		c := &contents[i]
		items = append(items, feedItem{
			ID:           c.ID,
			CreatorID:    c.CreatorID,
			RelatedTo:    c.RelatedTo,
			Title:        c.Title,
			Tags:         c.VisibleTags(),
			VideoURL:     c.VideoURL,
			ThumbURL:     c.ThumbURL,
			OriginalURL:  c.OriginalURL,
			Duration:     c.Duration,
			Views:        c.Views,
			Votes:        c.Votes,
			CommentCount: c.CommentCount,
			RelatedCount: c.RelatedCount,
			Voted:        voteMarker + strconv.FormatInt(c.ID, 10),
			Created:      c.Created,
		})
	}
	// json.Marshal HTML-escapes the marker's '&' and '<' (\u0026, \u003c),
	// breaking the byte match during splicing. Encode with escaping off.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// personalize replaces every vote marker in the page with the viewer's actual
// flag, in one batched lookup. Anonymous viewers get all-false without
// touching the database.
func (s *FeedService) personalize(ctx context.Context, page []byte, viewerID int64) ([]byte, error) {
	ids := markerIDs(page)
	voted := map[int64]bool{}
	if viewerID != 0 && len(ids) > 0 {
		var err error
		voted, err = s.contents.VotedSet(ctx, viewerID, ids)
		if err != nil {
			return nil, err
		}
	}
	return spliceMarkers(page, voted), nil
}

var quotedMarker = []byte(`"` + voteMarker)

// markerIDs extracts the content ids of all vote markers in a rendered page.
func markerIDs(page []byte) []int64 {
	var ids []int64
	rest := page
	for {
		i := bytes.Index(rest, quotedMarker)
		if i < 0 {
			return ids
		}
		rest = rest[i+len(quotedMarker):]
		end := bytes.IndexByte(rest, '"')
		if end < 0 {
			return ids
		}
		if id, err := strconv.ParseInt(string(rest[:end]), 10, 64); err == nil {
			ids = append(ids, id)
		}
		rest = rest[end+1:]
	}
}

// spliceMarkers rewrites the page with each quoted marker replaced by the
// viewer's boolean flag.
func spliceMarkers(page []byte, voted map[int64]bool) []byte {
	var out bytes.Buffer
	out.Grow(len(page))
	rest := page
	for {
		i := bytes.Index(rest, quotedMarker)
		if i < 0 {
			out.Write(rest)
			return out.Bytes()
		}
		out.Write(rest[:i])
		rest = rest[i+len(quotedMarker):]
		end := bytes.IndexByte(rest, '"')
		if end < 0 {
			// Truncated marker; emit a safe default and stop.
			out.WriteString("false")
			return out.Bytes()
		}
		id, err := strconv.ParseInt(string(rest[:end]), 10, 64)
		if err == nil && voted[id] {
			out.WriteString("true")
		} else {
			out.WriteString("false")
		}
		rest = rest[end+1:]
	}
}
