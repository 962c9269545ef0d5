package model

// Ranking bonus table. Every event that touches a content's score maps to a
// raw signed delta here; ApplySortBonus then handles clamping and age decay.
// Self-actions never contribute (callers pass bonus 0).

const youTubeViewBonus = 15

// CreationBonus is applied once when content becomes public, keyed on the
// creator's quality.
func CreationBonus(quality int) int64 {
	switch {
	case quality >= 4:
		return 16_000
	case quality == 3:
		return 15_000
	case quality == 2:
		return 10_000
	case quality == 1:
		return 1_000
	default:
		return 0
	}
}

// VoteBonus is the raw delta for a vote by a non-creator. Bot votes count
// half.
func VoteBonus(quality, followerCount int, isBot bool) int64 {
	var bonus int64
	switch {
	case quality >= 4:
		bonus = 5_000
	case quality == 3:
		bonus = 4_000
	case quality == 2:
		bonus = 2_000 + minInt64(int64(followerCount)*5, 1_000)
	case quality == 1:
		bonus = 1_000 + minInt64(int64(followerCount)*5, 1_000)
	default:
		bonus = 500
	}
	if isBot {
		bonus /= 2
	}
	return bonus
}

// CommentBonus is the raw delta for a comment by a non-creator.
func CommentBonus(quality, followerCount int) int64 {
	switch {
	case quality >= 4:
		return 2_000
	case quality == 3:
		return 1_500
	case quality == 2:
		return 750 + minInt64(int64(followerCount)*5, 250)
	case quality == 1:
		return 250 + minInt64(int64(followerCount)*5, 500)
	default:
		return 100
	}
}

// ViewBonus is the raw delta for a view by a non-creator.
func ViewBonus(isBot bool) int64 {
	if isBot {
		return 1
	}
	return 5
}

// RelatedBonus is the raw delta applied to an original when a reaction to it
// becomes public. Repeat reactors get 1/100th so one account cannot make
// content trend.
func RelatedBonus(quality, followerCount int, reactedAlready bool) int64 {
	var bonus int64
	switch {
	case quality > 1:
		bonus = 13_000 + int64(quality)*(1_000+minInt64(int64(followerCount)*100, 2_000))
	case quality == 1:
		bonus = 2_500 + minInt64(int64(followerCount)*200, 5_000)
	default:
		bonus = 500
	}
	if reactedAlready {
		bonus /= 100
	}
	return bonus
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
