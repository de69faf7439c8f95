package chat

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Strict policy: no tags, no attributes. Message content is plain text and
// is never stored with markup.
var sanitizePolicy = bluemonday.StrictPolicy()

// SanitizeContent strips all HTML from free text and trims whitespace.
// Returns "" for content that was nothing but markup.
func SanitizeContent(content string) string {
	return strings.TrimSpace(sanitizePolicy.Sanitize(strings.TrimSpace(content)))
}
