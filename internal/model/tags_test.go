package model

import (
	"reflect"
	"testing"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		allow bool
		want  []string
	}{
		{"basic split", "funny,music", false, []string{"funny", "music"}},
		{"hash prefixes and case", "#Funny, #MUSIC", false, []string{"funny", "music"}},
		{"dedupe", "funny,funny,#funny", false, []string{"funny"}},
		{"empty segments dropped", ",funny,,", false, []string{"funny"}},
		{"restricted dropped", "funny,featured,is hot", false, []string{"funny"}},
		{"restricted kept when allowed", "featured", true, []string{"featured"}},
		{"all empty", " , ,", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTags(tt.in, tt.allow)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTags(%q, %v) = %v, want %v", tt.in, tt.allow, got, tt.want)
			}
		})
	}
}

func TestParseHashtags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain text", "great reaction!", nil},
		{"single tag", "so #Funny", []string{"funny"}},
		{"multiple tags", "#funny and #music too", []string{"funny", "music"}},
		{"dedupe", "#funny #FUNNY", []string{"funny"}},
		{"restricted dropped", "#funny #featured #trending", []string{"funny"}},
		{"mid-word boundary", "a#b c#d!", []string{"b", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHashtags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseHashtags(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTag(t *testing.T) {
	if tag, ok := ParseTag("#Funny", false); !ok || tag != "funny" {
		t.Errorf("ParseTag single = %q/%v, want funny/true", tag, ok)
	}
	if _, ok := ParseTag("funny,music", false); ok {
		t.Error("ParseTag should reject multiple tags")
	}
	if _, ok := ParseTag("", false); ok {
		t.Error("ParseTag should reject empty input")
	}
	if _, ok := ParseTag("featured", false); ok {
		t.Error("ParseTag should reject restricted tags when not allowed")
	}
}

func TestIsTagRestricted(t *testing.T) {
	if !IsTagRestricted(TagFeatured) {
		t.Error("featured should be restricted")
	}
	if !IsTagRestricted("is anything") {
		t.Error("multi-word tags are reserved")
	}
	if IsTagRestricted("funny") {
		t.Error("plain tags are not restricted")
	}
}

func TestIsTagUnlisted(t *testing.T) {
	if !IsTagUnlisted(TagDeleted) || !IsTagUnlisted(TagRecording) || !IsTagUnlisted(TagDraft) {
		t.Error("deleted, recording and draft should be unlisted")
	}
	if IsTagUnlisted("funny") {
		t.Error("plain tags should be listable")
	}
}

func TestIsTagTransferable(t *testing.T) {
	for _, tag := range []string{TagOriginal, TagRepost, TagFeatured, TagDeleted, "is hot"} {
		if IsTagTransferable(tag) {
			t.Errorf("tag %q should not transfer to reactions", tag)
		}
	}
	if !IsTagTransferable("funny") {
		t.Error("plain tags should transfer to reactions")
	}
}
