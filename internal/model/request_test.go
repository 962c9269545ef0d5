package model

import (
	"testing"
	"time"
)

func TestPublicRequest_State(t *testing.T) {
	r := &PublicRequest{Tags: []string{"music"}}
	if got := r.State(); got != RequestStatePending {
		t.Errorf("untagged request state = %q, want pending", got)
	}

	if err := r.SetState(RequestStateApproved); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if got := r.State(); got != RequestStateApproved {
		t.Errorf("state = %q, want approved", got)
	}

	// Replacing the state keeps the other tags and never stacks states.
	if err := r.SetState(RequestStateArchived); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	states, music := 0, false
	for _, tag := range r.Tags {
		if requestStates[tag] {
			states++
		}
		if tag == "music" {
			music = true
		}
	}
	if states != 1 || !music {
		t.Errorf("tags after two transitions = %v", r.Tags)
	}

	if err := r.SetState("bogus"); err == nil {
		t.Error("unknown state should be rejected")
	}
}

func TestEntryID_RoundTrip(t *testing.T) {
	id := EntryID(12, 34)
	if id != "12.34" {
		t.Errorf("EntryID = %q, want 12.34", id)
	}
	req, acc, err := SplitEntryID(id)
	if err != nil || req != 12 || acc != 34 {
		t.Errorf("SplitEntryID(%q) = %d, %d, %v", id, req, acc, err)
	}
	for _, bad := range []string{"", "12", "a.b", "12.b"} {
		if _, _, err := SplitEntryID(bad); err == nil {
			t.Errorf("SplitEntryID(%q) should fail", bad)
		}
	}
}

func TestValidEntryStatus(t *testing.T) {
	for _, status := range []string{
		EntryStatusOpen, EntryStatusPendingUpload, EntryStatusPendingYouTube,
		EntryStatusPendingReview, EntryStatusActive, EntryStatusDenied, EntryStatusInactive,
	} {
		if !ValidEntryStatus(status) {
			t.Errorf("%q should be a valid entry status", status)
		}
	}
	// "closed" is a request property, never an entry status.
	if ValidEntryStatus("closed") || ValidEntryStatus("bogus") {
		t.Error("unknown statuses should be rejected")
	}
}

func newTestRequest() *PublicRequest {
	return &PublicRequest{ID: 1, ContentID: 55, RequestedBy: 2, Tags: []string{RequestStateApproved}}
}

func newTestEntry() *RequestEntry {
	return &RequestEntry{
		ID:        EntryID(1, 10),
		RequestID: 1,
		AccountID: 10,
		Status:    EntryStatusOpen,
		Created:   time.Now(),
	}
}

func reactionContent(t *testing.T, creatorID int64, youtubeID string) *Content {
	t.Helper()
	c, err := NewContent(creatorID, []string{"funny"}, false, time.Now())
	if err != nil {
		t.Fatalf("NewContent: %v", err)
	}
	c.ID = 100
	if youtubeID != "" {
		c.SetYouTubeID(youtubeID)
	}
	original := int64(55)
	c.RelatedTo = &original
	return c
}

func TestRequestEntry_SetContent_FullPath(t *testing.T) {
	pr := newTestRequest()
	e := newTestEntry()

	// Committing without content yet: open -> pending-upload.
	changed, err := e.SetContent(pr, nil, false)
	if err != nil || !changed || e.Status != EntryStatusPendingUpload {
		t.Fatalf("nil content: changed=%v err=%v status=%q", changed, err, e.Status)
	}
	// Idempotent.
	changed, err = e.SetContent(pr, nil, false)
	if err != nil || changed {
		t.Fatalf("second nil content: changed=%v err=%v", changed, err)
	}

	// Content without a video id parks at pending-youtube.
	c := reactionContent(t, 10, "")
	changed, err = e.SetContent(pr, c, false)
	if err != nil || !changed || e.Status != EntryStatusPendingYouTube {
		t.Fatalf("content without video: changed=%v err=%v status=%q", changed, err, e.Status)
	}
	if e.ContentID == nil || *e.ContentID != c.ID {
		t.Fatal("content id not attached")
	}

	// Once the video id shows up the entry advances to review.
	c.SetYouTubeID("dQw4w9WgXcQ")
	changed, err = e.SetContent(pr, c, false)
	if err != nil || !changed || e.Status != EntryStatusPendingReview {
		t.Fatalf("content with video: changed=%v err=%v status=%q", changed, err, e.Status)
	}
	if e.YouTubeID == nil || *e.YouTubeID != "dQw4w9WgXcQ" {
		t.Fatal("video id not captured on entry")
	}
}

func TestRequestEntry_SetContent_SkipsStraightToReview(t *testing.T) {
	pr := newTestRequest()
	e := newTestEntry()
	c := reactionContent(t, 10, "dQw4w9WgXcQ")

	changed, err := e.SetContent(pr, c, false)
	if err != nil || !changed || e.Status != EntryStatusPendingReview {
		t.Fatalf("changed=%v err=%v status=%q", changed, err, e.Status)
	}
}

func TestRequestEntry_SetContent_Immutable(t *testing.T) {
	pr := newTestRequest()
	e := newTestEntry()
	c := reactionContent(t, 10, "dQw4w9WgXcQ")
	if _, err := e.SetContent(pr, c, false); err != nil {
		t.Fatal(err)
	}

	other := reactionContent(t, 10, "other-video")
	other.ID = 200
	if _, err := e.SetContent(pr, other, false); err == nil {
		t.Error("swapping content should be refused")
	}

	// Resetting clears everything and reopens the entry.
	changed, err := e.SetContent(pr, nil, true)
	if err != nil || !changed {
		t.Fatalf("reset: changed=%v err=%v", changed, err)
	}
	if e.Status != EntryStatusOpen || e.ContentID != nil || e.YouTubeID != nil {
		t.Errorf("reset left state behind: %q %v %v", e.Status, e.ContentID, e.YouTubeID)
	}

	// After a reset a different content is acceptable.
	if _, err := e.SetContent(pr, other, false); err != nil {
		t.Errorf("content after reset: %v", err)
	}
}

func TestRequestEntry_SetContent_Rejections(t *testing.T) {
	pr := newTestRequest()
	e := newTestEntry()

	if _, err := e.SetContent(pr, reactionContent(t, 10, ""), true); err == nil {
		t.Error("content plus reset should be rejected")
	}
	if _, err := e.SetContent(pr, reactionContent(t, 99, ""), false); err == nil {
		t.Error("someone else's content should be rejected")
	}
	if _, err := e.SetContent(pr, nil, true); err == nil {
		t.Error("resetting an open entry should be rejected")
	}

	unrelated := reactionContent(t, 10, "dQw4w9WgXcQ")
	other := int64(555)
	unrelated.RelatedTo = &other
	if _, err := e.SetContent(pr, unrelated, false); err == nil {
		t.Error("a reaction to a different original should be rejected")
	}
	nonReaction := reactionContent(t, 10, "dQw4w9WgXcQ")
	nonReaction.RelatedTo = nil
	if _, err := e.SetContent(pr, nonReaction, false); err == nil {
		t.Error("content that is not a reaction should be rejected")
	}
	if e.ContentID != nil || e.Status != EntryStatusOpen {
		t.Errorf("rejections must not advance the entry: %q %v", e.Status, e.ContentID)
	}
}

func TestRequestEntry_Review(t *testing.T) {
	e := newTestEntry()
	if err := e.Review(true, nil); err == nil {
		t.Error("reviewing an open entry should fail")
	}

	e.Status = EntryStatusPendingReview
	if err := e.Review(true, nil); err != nil || e.Status != EntryStatusActive {
		t.Errorf("approve: err=%v status=%q", err, e.Status)
	}

	reason := "off topic"
	e.Status = EntryStatusPendingReview
	if err := e.Review(false, &reason); err != nil || e.Status != EntryStatusDenied {
		t.Errorf("deny: err=%v status=%q", err, e.Status)
	}
	if e.StatusReason == nil || *e.StatusReason != reason {
		t.Error("denial reason not recorded")
	}
}

func TestRequestEntry_Deactivate(t *testing.T) {
	e := newTestEntry()
	e.Status = EntryStatusActive
	e.Deactivate("The YouTube video could not be loaded")
	if e.Status != EntryStatusInactive {
		t.Errorf("status = %q, want inactive", e.Status)
	}
	if e.StatusReason == nil || *e.StatusReason != "The YouTube video could not be loaded" {
		t.Errorf("reason = %v", e.StatusReason)
	}
	// A deactivated entry can still come back through review.
	if err := e.Restore(); err != nil {
		t.Errorf("restore after deactivate: %v", err)
	}
}

func TestRequestEntry_Restore(t *testing.T) {
	for _, status := range []string{EntryStatusActive, EntryStatusDenied, EntryStatusInactive} {
		e := newTestEntry()
		e.Status = status
		reason := "old reason"
		e.StatusReason = &reason
		if err := e.Restore(); err != nil {
			t.Errorf("restore from %q: %v", status, err)
		}
		if e.Status != EntryStatusPendingReview || e.StatusReason != nil {
			t.Errorf("restore from %q left %q/%v", status, e.Status, e.StatusReason)
		}
	}

	e := newTestEntry()
	if err := e.Restore(); err == nil {
		t.Error("restoring an open entry should fail")
	}
}
