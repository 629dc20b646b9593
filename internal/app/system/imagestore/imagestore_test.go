package imagestore

import (
	"strings"
	"testing"
)

func TestValidType(t *testing.T) {
	valid := []string{"image/jpeg", "image/png", "image/webp", "IMAGE/PNG"}
	for _, ct := range valid {
		if !ValidType(ct) {
			t.Errorf("ValidType(%q) = false, want true", ct)
		}
	}
	invalid := []string{"", "text/html", "application/pdf", "video/mp4"}
	for _, ct := range invalid {
		if ValidType(ct) {
			t.Errorf("ValidType(%q) = true, want false", ct)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"turf.jpg", "turf.jpg"},
		{"../../etc/passwd", "passwd"},
		{"my photo (1).png", "my_photo__1_.png"},
		{"", "image"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilename_TruncatesKeepingExtension(t *testing.T) {
	got := sanitizeFilename(strings.Repeat("a", 200) + ".jpg")
	if len(got) > 100 {
		t.Errorf("length %d exceeds 100", len(got))
	}
	if !strings.HasSuffix(got, ".jpg") {
		t.Errorf("extension lost: %q", got)
	}
}
