package service

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/reactioncam/rcam-go/internal/model"
	"github.com/reactioncam/rcam-go/internal/repository"
)

func renderTestPage(t *testing.T, ids ...int64) []byte {
	t.Helper()
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	contents := make([]model.Content, 0, len(ids))
	for _, id := range ids {
		c, err := model.NewContent(1, []string{"funny"}, false, now)
		if err != nil {
			t.Fatalf("NewContent: %v", err)
		}
		c.ID = id
		contents = append(contents, *c)
	}
	page, err := renderPage(contents)
	if err != nil {
		t.Fatalf("renderPage: %v", err)
	}
	return page
}

func TestRenderPage_EmbedsMarkers(t *testing.T) {
	page := renderTestPage(t, 5, 9)

	want := `"voted":"` + voteMarker + `5"`
	if !strings.Contains(string(page), want) {
		t.Errorf("page %s does not contain %s", page, want)
	}
	// The encoder must not HTML-escape the marker's '&' and '<'; splicing
	// matches the literal bytes.
	if strings.Contains(string(page), `\u0026`) || strings.Contains(string(page), `\u003c`) {
		t.Errorf("marker was escaped in page %s", page)
	}
	// The marker page itself is valid JSON; the marker is just a string.
	var items []map[string]any
	if err := json.Unmarshal(page, &items); err != nil {
		t.Fatalf("rendered page is not valid JSON: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
}

func TestMarkerIDs(t *testing.T) {
	page := renderTestPage(t, 5, 9, 123456789)

	got := markerIDs(page)
	want := []int64{5, 9, 123456789}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("markerIDs = %v, want %v", got, want)
	}
}

func TestMarkerIDs_NoMarkers(t *testing.T) {
	if ids := markerIDs([]byte(`[{"id":1,"voted":false}]`)); len(ids) != 0 {
		t.Errorf("markerIDs on plain page = %v, want none", ids)
	}
}

func TestSpliceMarkers(t *testing.T) {
	page := renderTestPage(t, 5, 9)

	out := spliceMarkers(page, map[int64]bool{5: true})

	var items []struct {
		ID    int64 `json:"id"`
		Voted bool  `json:"voted"`
	}
	if err := json.Unmarshal(out, &items); err != nil {
		t.Fatalf("spliced page is not valid JSON: %v\n%s", err, out)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if !items[0].Voted || items[0].ID != 5 {
		t.Errorf("item 5 = %+v, want voted", items[0])
	}
	if items[1].Voted {
		t.Errorf("item 9 = %+v, want not voted", items[1])
	}
}

func TestSpliceMarkers_AnonymousAllFalse(t *testing.T) {
	page := renderTestPage(t, 5, 9)

	out := spliceMarkers(page, nil)
	if strings.Contains(string(out), "true") {
		t.Errorf("anonymous splice produced a true flag: %s", out)
	}
	if strings.Contains(string(out), voteMarker) {
		t.Errorf("marker survived splicing: %s", out)
	}
}

func TestSpliceMarkers_TruncatedMarker(t *testing.T) {
	// A marker with no closing quote gets a safe false and the scan stops.
	page := []byte(`{"voted":"` + voteMarker + `12`)
	out := spliceMarkers(page, map[int64]bool{12: true})
	if string(out) != `{"voted":false` {
		t.Errorf("truncated splice = %s", out)
	}
}

func TestFeedKey(t *testing.T) {
	key := feedKey([]string{"funny", "published"}, repository.SortHot, 10, 0)
	if key != "feed:v1:funny,published:hot:10:0" {
		t.Errorf("feedKey = %q", key)
	}
	// Tag order does not fragment the cache.
	if feedKey([]string{"published", "funny"}, repository.SortHot, 10, 0) != key {
		t.Error("feedKey should be order-independent in tags")
	}
	if feedKey([]string{"funny", "published"}, repository.SortHot, 10, 500) == key {
		t.Error("feedKey should include the cursor")
	}
}

func TestFeedTTL(t *testing.T) {
	if feedTTL(repository.SortRecent) != recentFeedTTL {
		t.Error("recent feeds should use the short TTL")
	}
	if feedTTL(repository.SortTop) != topFeedTTL {
		t.Error("top feeds should use the long TTL")
	}
	if feedTTL(repository.SortHot) != hotFeedTTL || feedTTL("anything") != hotFeedTTL {
		t.Error("hot is the default TTL")
	}
}
