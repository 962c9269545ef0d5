package model

import (
	"regexp"
	"strings"
)

// The tag vocabulary doubles as the content state machine: derived state
// ("is hot", "is reacted", "published") lives in restricted tags that only
// privileged code paths may set.
const (
	TagApproved  = "is approved"
	TagDeleted   = "deleted"
	TagDraft     = "is draft"
	TagExFeatured = "exfeatured"
	TagFeatured  = "featured"
	TagFlagged   = "flagged"
	TagHidden    = "is hidden"
	TagHot       = "is hot"
	TagOnHold    = "onhold"
	TagOriginal  = "original"
	TagPublished = "published"
	TagReacted   = "is reacted"
	TagReaction  = "reaction"
	TagRecording = "recording"
	TagRepost    = "repost"
	TagTrending  = "trending"
)

// internalTags never appear in API responses.
var internalTags = map[string]bool{
	TagFlagged:   true,
	TagApproved:  true,
	TagDraft:     true,
	TagHidden:    true,
	TagHot:       true,
	TagReacted:   true,
	TagOnHold:    true,
	TagPublished: true,
}

// restrictedTags cannot be set by unprivileged callers.
var restrictedTags = mergeTagSets(internalTags, map[string]bool{
	TagFeatured: true,
	TagTrending: true,
})

// unlistedTags do not make content publicly listable.
var unlistedTags = mergeTagSets(internalTags, map[string]bool{
	TagDeleted:   true,
	TagRecording: true,
})

// nonTransferableTags are never copied from an original onto its reactions.
var nonTransferableTags = mergeTagSets(restrictedTags, unlistedTags, map[string]bool{
	TagOriginal:    true,
	"reacttothis":  true,
	TagRepost:      true,
})

func mergeTagSets(sets ...map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, s := range sets {
		for t := range s {
			out[t] = true
		}
	}
	return out
}

// IsTagRestricted reports whether unprivileged callers may not set the tag.
// Multi-word tags are reserved for internal use.
func IsTagRestricted(tag string) bool {
	return strings.Contains(tag, " ") || restrictedTags[tag]
}

// IsTagUnlisted reports whether the tag keeps content off public listings.
func IsTagUnlisted(tag string) bool {
	return strings.Contains(tag, " ") || unlistedTags[tag]
}

// IsTagTransferable reports whether the tag may be copied from an original to
// a reaction of it.
func IsTagTransferable(tag string) bool {
	return !strings.Contains(tag, " ") && !nonTransferableTags[tag]
}

// ParseTags splits a comma-separated tag string, strips '#' prefixes,
// lowercases, and drops empty and (unless allowed) restricted tags.
func ParseTags(tagsString string, allowRestricted bool) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, raw := range strings.Split(tagsString, ",") {
		t := strings.ToLower(strings.Trim(raw, " #"))
		if t == "" || seen[t] {
			continue
		}
		if !allowRestricted && IsTagRestricted(t) {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// ParseHashtags extracts hashtags embedded in free text, normalized like
// ParseTags. Restricted tags are always dropped; text never grants privilege.
func ParseHashtags(text string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		t := strings.ToLower(m[1])
		if seen[t] || IsTagRestricted(t) {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

// ParseTag parses a string expected to hold exactly one tag.
func ParseTag(tagString string, allowRestricted bool) (string, bool) {
	tags := ParseTags(tagString, allowRestricted)
	if len(tags) != 1 {
		return "", false
	}
	return tags[0], true
}
