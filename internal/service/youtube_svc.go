package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/reactioncam/rcam-go/internal/errs"
)

// YouTubeService fetches public video statistics from the YouTube Data API.
type YouTubeService struct {
	apiKey string
	client *http.Client
}

func NewYouTubeService(apiKey string) *YouTubeService {
	return &YouTubeService{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (s *YouTubeService) Enabled() bool {
	return s.apiKey != ""
}

// VideoStats is the subset of video data the engine consumes.
type VideoStats struct {
	VideoID   string
	ViewCount int64
	Title     string
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// VideoStats returns the current stats for a video, or nil when the video no
// longer exists (deleted, private or taken down).
func (s *YouTubeService) VideoStats(ctx context.Context, videoID string) (*VideoStats, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("youtube: api key not configured: %w", errs.ErrExternal)
	}

	q := url.Values{}
	q.Set("part", "snippet,statistics")
	q.Set("id", videoID)
	q.Set("key", s.apiKey)
	endpoint := "https://www.googleapis.com/youtube/v3/videos?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube: %v: %w", err, errs.ErrExternal)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube: status %d: %w", resp.StatusCode, errs.ErrExternal)
	}

	var body videosResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("youtube: decode: %v: %w", err, errs.ErrExternal)
	}
	// An empty item list is the API's way of saying the video is gone.
	if len(body.Items) == 0 {
		return nil, nil
	}

	item := body.Items[0]
	views, err := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
	if err != nil {
		// Some videos hide view counts; treat them as zero new views.
		views = 0
	}
	return &VideoStats{
		VideoID:   item.ID,
		ViewCount: views,
		Title:     item.Snippet.Title,
	}, nil
}
