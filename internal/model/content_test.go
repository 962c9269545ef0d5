package model

import (
	"testing"
	"time"
)

func newTestContent(t *testing.T, now time.Time) *Content {
	t.Helper()
	c, err := NewContent(1, []string{"funny"}, false, now)
	if err != nil {
		t.Fatalf("NewContent: %v", err)
	}
	return c
}

func TestBaseSortIndex(t *testing.T) {
	epoch := time.Date(2017, time.May, 1, 0, 0, 0, 0, time.UTC)
	if got := BaseSortIndex(epoch); got != 0 {
		t.Errorf("BaseSortIndex(epoch) = %d, want 0", got)
	}
	if got := BaseSortIndex(epoch.Add(time.Hour)); got != 3600 {
		t.Errorf("BaseSortIndex(epoch+1h) = %d, want 3600", got)
	}
}

func TestApplySortBonus_FreshContentFullValue(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)
	base := c.SortIndex

	applied := c.ApplySortBonus(10_000, now)
	if applied != 10_000 {
		t.Errorf("applied = %d, want full 10000 on fresh content", applied)
	}
	if c.SortIndex != base+10_000 {
		t.Errorf("sort index = %d, want %d", c.SortIndex, base+10_000)
	}
	if c.SortBonus != 10_000 || c.SortBonusPenalty != 0 {
		t.Errorf("bonus/penalty = %d/%d, want 10000/0", c.SortBonus, c.SortBonusPenalty)
	}
}

func TestApplySortBonus_AccumulatedBonusDecays(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)
	c.ApplySortBonus(10_000, now)

	// The second application sees the first 10k in the combined dimension
	// and is slightly withheld.
	applied := c.ApplySortBonus(10_000, now)
	if applied >= 10_000 {
		t.Errorf("applied = %d, want < 10000 once bonus has accumulated", applied)
	}
	if applied < 9_000 {
		t.Errorf("applied = %d, decay this early should be mild", applied)
	}
	if c.SortBonusPenalty != 10_000-applied {
		t.Errorf("penalty = %d, want %d", c.SortBonusPenalty, 10_000-applied)
	}
}

func TestApplySortBonus_FloorsAtTenPercent(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)
	c.SortBonus = 2_000_000 // far past the quadratic knee

	applied := c.ApplySortBonus(10_000, now)
	if applied != 1_000 {
		t.Errorf("applied = %d, want 1000 (10%% floor)", applied)
	}
}

func TestApplySortBonus_OldContentDecays(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now.Add(-72*time.Hour))

	// Three days of age alone puts the factor well below 1 but above the
	// floor: (259200)^2 / 1.86624e11 ≈ 0.36.
	applied := c.ApplySortBonus(10_000, now)
	if applied >= 10_000 || applied <= 1_000 {
		t.Errorf("applied = %d, want strictly between floor and full", applied)
	}
}

func TestApplySortBonus_NegativeClampsToCumulative(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)
	c.ApplySortBonus(5_000, now)

	c.ApplySortBonus(-50_000, now)
	if c.SortBonus != 0 {
		t.Errorf("cumulative bonus = %d, want 0 (never negative)", c.SortBonus)
	}
}

func TestApplySortBonus_SortBaseInvariant(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)
	base := c.SortIndex

	c.ApplySortBonus(10_000, now)
	c.ApplySortBonus(25_000, now.Add(time.Hour))
	c.ApplySortBonus(-5_000, now.Add(2*time.Hour))

	if got := c.SortBase(); got != base {
		t.Errorf("SortBase() = %d, want %d regardless of applied bonuses", got, base)
	}
}

func TestApplySortBonus_HotTagSticky(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)

	c.ApplySortBonus(40_000, now)
	if c.HasTag(TagHot) {
		t.Error("40k cumulative bonus should not be hot yet")
	}
	c.ApplySortBonus(20_000, now)
	if !c.HasTag(TagHot) {
		t.Error("60k cumulative bonus should be hot")
	}
	// Dropping back below the threshold does not cool it off.
	c.ApplySortBonus(-55_000, now)
	if !c.HasTag(TagHot) {
		t.Error("hot is sticky once crossed")
	}
}

func TestAddVoteCount_ViewsNeverTrailVotes(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)

	c.AddVoteCount(0, false, now)
	c.AddVoteCount(0, false, now)
	if c.Votes != 2 || c.Views != 2 {
		t.Errorf("votes/views = %d/%d, want 2/2", c.Votes, c.Views)
	}
	if c.VotesReal != 2 {
		t.Errorf("votes_real = %d, want 2", c.VotesReal)
	}

	c.AddVoteCount(0, true, now)
	if c.VotesReal != 2 {
		t.Errorf("bot votes should not count as real, got %d", c.VotesReal)
	}
}

func TestRemoveVoteCount_FloorsAtZero(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)

	c.RemoveVoteCount(0, false, now)
	if c.Votes != 0 || c.VotesReal != 0 {
		t.Errorf("counters went negative: %d/%d", c.Votes, c.VotesReal)
	}
}

func TestAddCommentCount_NeverNegative(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)

	c.AddCommentCount(0, 1, now)
	c.AddCommentCount(0, -5, now)
	if c.CommentCount != 0 {
		t.Errorf("comment count = %d, want 0", c.CommentCount)
	}
}

func TestAddRelatedCount_FirstReactor(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	created := now.Add(-48 * time.Hour)
	c := newTestContent(t, created)
	oldIndex := c.SortIndex

	first := c.AddRelatedCount(42, 13_000, 1, now)
	if !first {
		t.Error("expected first-reactor flag")
	}
	if c.FirstRelatedCreator == nil || *c.FirstRelatedCreator != 42 {
		t.Error("first related creator not recorded")
	}
	if !c.HasTag(TagReacted) {
		t.Error("reacted tag not set")
	}
	// The first reaction resurrects the original as if just created.
	if c.SortIndex <= oldIndex {
		t.Errorf("sort index = %d, want bump above %d", c.SortIndex, oldIndex)
	}

	// A second reactor is not "first" again.
	if c.AddRelatedCount(43, 13_000, 1, now) {
		t.Error("second reactor should not be first")
	}
}

func TestAddRelatedCount_SelfDoesNotScore(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)

	c.AddRelatedCount(c.CreatorID, 13_000, 1, now)
	if c.SortBonus != 0 {
		t.Errorf("self reaction applied bonus %d, want 0", c.SortBonus)
	}
	if c.FirstRelatedCreator != nil {
		t.Error("creator must not become first related creator")
	}
	if c.RelatedCount != 1 {
		t.Errorf("related count = %d, want 1 (counter still moves)", c.RelatedCount)
	}
}

func TestAddRelatedCount_OriginalPromotion(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)
	c.AddTag(TagHot, true)

	c.AddRelatedCount(2, 1_000, 1, now)
	c.AddRelatedCount(3, 1_000, 1, now)
	if c.HasTag(TagOriginal) {
		t.Error("promotion needs three reactions for a root content")
	}
	c.AddRelatedCount(4, 1_000, 1, now)
	if !c.HasTag(TagOriginal) {
		t.Error("hot content with three reactions should be original")
	}
}

func TestAddRelatedCount_ReactionNeedsSixForPromotion(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)
	parent := int64(99)
	c.RelatedTo = &parent
	c.AddTag(TagHot, true)

	for i := int64(2); i < 7; i++ {
		c.AddRelatedCount(i, 1_000, 1, now)
	}
	if c.HasTag(TagOriginal) {
		t.Error("five reactions should not promote a reaction")
	}
	c.AddRelatedCount(7, 1_000, 1, now)
	if !c.HasTag(TagOriginal) {
		t.Error("six reactions should promote a reaction to original")
	}
}

func TestSetYouTubeID_History(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)

	c.SetYouTubeID("aaa")
	c.SetYouTubeID("bbb")
	c.SetYouTubeID("aaa") // re-publish under an old id moves it to the end
	if got := c.YouTubeID(); got != "aaa" {
		t.Errorf("current id = %q, want aaa", got)
	}
	if len(c.YouTubeIDHistory) != 2 {
		t.Errorf("history length = %d, want 2 (no duplicates)", len(c.YouTubeIDHistory))
	}

	// Setting the current id again is a no-op.
	c.YouTubeBroken = true
	c.SetYouTubeID("aaa")
	if !c.YouTubeBroken {
		t.Error("setting the same id must not reset video state")
	}

	// A new id resets the broken flag and observed views.
	views := int64(10)
	c.YouTubeViews = &views
	c.SetYouTubeID("ccc")
	if c.YouTubeBroken || c.YouTubeViews != nil {
		t.Error("new id should reset broken flag and views")
	}
}

func TestSetYouTubeViews(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)
	c.SetYouTubeID("aaa")

	if delta := c.SetYouTubeViews(100, now); delta != 100 {
		t.Errorf("first observation delta = %d, want 100", delta)
	}
	if c.SortBonus != 100*15 {
		t.Errorf("bonus = %d, want %d (15 per view)", c.SortBonus, 100*15)
	}

	// Decreases are ignored entirely.
	if delta := c.SetYouTubeViews(40, now); delta != 0 {
		t.Errorf("decrease delta = %d, want 0", delta)
	}
	if *c.YouTubeViews != 100 {
		t.Errorf("stored views = %d, want 100 after ignored decrease", *c.YouTubeViews)
	}

	if delta := c.SetYouTubeViews(130, now); delta != 30 {
		t.Errorf("growth delta = %d, want 30", delta)
	}
}

func TestVisibleTags_ExFeatured(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)
	c.AddTag(TagFeatured, true)
	c.RemoveTag(TagFeatured, true)

	tags := c.VisibleTags()
	found := false
	for _, tag := range tags {
		if tag == TagExFeatured {
			found = true
		}
		if tag == TagHot || tag == TagPublished {
			t.Errorf("internal tag %q leaked into visible tags", tag)
		}
	}
	if !found {
		t.Error("previously featured content should show exfeatured")
	}
}

func TestVisibleBy(t *testing.T) {
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := newTestContent(t, now)

	if !c.VisibleBy(0) {
		t.Error("public content should be visible to anonymous")
	}

	draft := newTestContent(t, now)
	draft.Tags = []string{TagDraft}
	if draft.VisibleBy(0) {
		t.Error("draft should not be visible to anonymous")
	}
	if !draft.VisibleBy(1) {
		t.Error("draft should be visible to its creator")
	}

	c.AddTag(TagDeleted, true)
	if c.VisibleBy(1) {
		t.Error("deleted content should not be visible, even to the creator")
	}
}

func TestMakeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"  multiple   spaces  ", "multiple-spaces"},
		{"ALL CAPS & sym#bols", "all-caps-sym-bols"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := MakeSlug(tt.in); got != tt.want {
			t.Errorf("MakeSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
