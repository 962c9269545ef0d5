package model

import "testing"

func TestCreationBonus(t *testing.T) {
	tests := []struct {
		quality int
		want    int64
	}{
		{5, 16_000},
		{4, 16_000},
		{3, 15_000},
		{2, 10_000},
		{1, 1_000},
		{0, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := CreationBonus(tt.quality); got != tt.want {
			t.Errorf("CreationBonus(%d) = %d, want %d", tt.quality, got, tt.want)
		}
	}
}

func TestVoteBonus(t *testing.T) {
	tests := []struct {
		name      string
		quality   int
		followers int
		isBot     bool
		want      int64
	}{
		{"top quality", 4, 0, false, 5_000},
		{"quality 3", 3, 10_000, false, 4_000},
		{"quality 2 few followers", 2, 100, false, 2_500},
		{"quality 2 follower cap", 2, 10_000, false, 3_000},
		{"quality 1 follower cap", 1, 10_000, false, 2_000},
		{"unknown quality", 0, 10_000, false, 500},
		{"bot votes count half", 3, 0, true, 2_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VoteBonus(tt.quality, tt.followers, tt.isBot); got != tt.want {
				t.Errorf("VoteBonus(%d, %d, %v) = %d, want %d",
					tt.quality, tt.followers, tt.isBot, got, tt.want)
			}
		})
	}
}

func TestCommentBonus(t *testing.T) {
	tests := []struct {
		name      string
		quality   int
		followers int
		want      int64
	}{
		{"top quality", 4, 0, 2_000},
		{"quality 3", 3, 0, 1_500},
		{"quality 2 few followers", 2, 10, 800},
		{"quality 2 follower cap", 2, 10_000, 1_000},
		{"quality 1 follower cap", 1, 10_000, 750},
		{"unknown quality", 0, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommentBonus(tt.quality, tt.followers); got != tt.want {
				t.Errorf("CommentBonus(%d, %d) = %d, want %d",
					tt.quality, tt.followers, got, tt.want)
			}
		})
	}
}

func TestViewBonus(t *testing.T) {
	if got := ViewBonus(false); got != 5 {
		t.Errorf("ViewBonus(human) = %d, want 5", got)
	}
	if got := ViewBonus(true); got != 1 {
		t.Errorf("ViewBonus(bot) = %d, want 1", got)
	}
}

func TestRelatedBonus(t *testing.T) {
	tests := []struct {
		name      string
		quality   int
		followers int
		repeat    bool
		want      int64
	}{
		{"quality 3 no followers", 3, 0, false, 16_000},
		{"quality 3 follower cap", 3, 1_000, false, 22_000},
		{"quality 1", 1, 10, false, 4_500},
		{"quality 1 follower cap", 1, 10_000, false, 7_500},
		{"unknown quality", 0, 10_000, false, 500},
		{"repeat reactor gets a sliver", 3, 1_000, true, 220},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelatedBonus(tt.quality, tt.followers, tt.repeat); got != tt.want {
				t.Errorf("RelatedBonus(%d, %d, %v) = %d, want %d",
					tt.quality, tt.followers, tt.repeat, got, tt.want)
			}
		})
	}
}
