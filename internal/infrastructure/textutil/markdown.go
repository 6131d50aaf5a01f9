// Package textutil cleans generated answers before display.
package textutil

import (
	"regexp"
	"strings"
)

var (
	emphasis       = regexp.MustCompile(`\*{1,2}(.*?)\*{1,2}`)
	strikethrough  = regexp.MustCompile(`~~(.*?)~~`)
	headers        = regexp.MustCompile(`(?m)^#{1,6}\s`)
	links          = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	blockquotes    = regexp.MustCompile(`(?m)^\s*>\s`)
	horizontalRule = regexp.MustCompile(`(?m)^\s*[-*_]{3,}\s*$`)
	bulletMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s`)
	orderedMarkers = regexp.MustCompile(`(?m)^\s*\d+\.\s`)
)

// StripMarkdown removes common markdown markup so answers render
// cleanly in plain-text consumers.
func StripMarkdown(text string) string {
	text = emphasis.ReplaceAllString(text, "$1")
	text = strikethrough.ReplaceAllString(text, "$1")
	text = headers.ReplaceAllString(text, "")
	text = links.ReplaceAllString(text, "$1")
	text = blockquotes.ReplaceAllString(text, "")
	text = horizontalRule.ReplaceAllString(text, "")
	text = bulletMarkers.ReplaceAllString(text, "")
	text = orderedMarkers.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
