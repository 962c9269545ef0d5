package middleware

import (
	"strings"
	"testing"
)

func TestValidateYouTubeID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"valid id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"dash and underscore", "a-b_c", "a-b_c", false},
		{"trimmed", "  dQw4w9WgXcQ  ", "dQw4w9WgXcQ", false},
		{"empty clears", "", "", false},
		{"whitespace only clears", "   ", "", false},
		{"too long", strings.Repeat("a", 17), "", true},
		{"invalid characters", "abc$def", "", true},
		{"spaces inside", "abc def", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := ValidateYouTubeID(tt.in)
			if (msg != "") != tt.wantErr {
				t.Errorf("ValidateYouTubeID(%q) msg = %q, wantErr %v", tt.in, msg, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateYouTubeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	if got, msg := ValidateTitle("  My Reaction  "); got != "My Reaction" || msg != "" {
		t.Errorf("ValidateTitle = %q/%q", got, msg)
	}
	if _, msg := ValidateTitle(strings.Repeat("x", MaxTitleLen+1)); msg == "" {
		t.Error("overlong title should be rejected")
	}
}

func TestValidateTags(t *testing.T) {
	if got, msg := ValidateTags(" funny,music "); got != "funny,music" || msg != "" {
		t.Errorf("ValidateTags = %q/%q", got, msg)
	}
	if _, msg := ValidateTags(strings.Repeat("x", MaxTagsLen+1)); msg == "" {
		t.Error("overlong tags should be rejected")
	}
}

func TestValidateComment(t *testing.T) {
	if got, msg := ValidateComment(" nice one "); got != "nice one" || msg != "" {
		t.Errorf("ValidateComment = %q/%q", got, msg)
	}
	if _, msg := ValidateComment("   "); msg == "" {
		t.Error("blank comment should be rejected")
	}
	if _, msg := ValidateComment(strings.Repeat("x", MaxCommentLen+1)); msg == "" {
		t.Error("overlong comment should be rejected")
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"https", "https://example.com/v.mp4", "https://example.com/v.mp4", false},
		{"http", "http://example.com", "http://example.com", false},
		{"empty allowed", "", "", false},
		{"scheme required", "ftp://example.com", "", true},
		{"no scheme", "example.com", "", true},
		{"too long", "https://" + strings.Repeat("a", MaxURLLen), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := ValidateURL(tt.in)
			if (msg != "") != tt.wantErr {
				t.Errorf("ValidateURL(%q) msg = %q, wantErr %v", tt.in, msg, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
