package notifications

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	markdown    = goldmark.New()
	stripPolicy = bluemonday.StrictPolicy()
)

// Excerpt truncates markdown content to limit characters and renders the
// result as plain text. Truncation is applied to the raw content, before
// rendering.
func Excerpt(content string, limit int) string {
	runes := []rune(content)
	if limit > 0 && len(runes) > limit {
		content = string(runes[:limit])
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return strings.Join(strings.Fields(content), " ")
	}

	text := html.UnescapeString(stripPolicy.Sanitize(buf.String()))
	return strings.Join(strings.Fields(text), " ")
}
