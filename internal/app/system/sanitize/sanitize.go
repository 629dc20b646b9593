// Package sanitize strips markup from free-text inputs before they are
// persisted or echoed back to clients.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML from a free-text value (review bodies, names,
// addresses) and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// List sanitizes each element of a string slice, dropping entries that
// become empty.
func List(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = Text(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
