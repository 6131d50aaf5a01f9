package usecase

import (
	"strings"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/ports"
)

// ContextNotFound is returned when the matched chunk cannot be located
// in the archived text of its document. Expansion never fails the
// answer pipeline.
const ContextNotFound = "context not found"

const defaultExpandWords = 200

// ContextExpander widens a matched chunk to its surrounding window in
// the archived full text. Retrieval searches over small chunks for
// precision; the model answers over the wider window.
type ContextExpander struct {
	archive     ports.TextArchive
	wordsBefore int
	wordsAfter  int
}

func NewContextExpander(archive ports.TextArchive, wordsBefore, wordsAfter int) *ContextExpander {
	if wordsBefore <= 0 {
		wordsBefore = defaultExpandWords
	}
	if wordsAfter <= 0 {
		wordsAfter = defaultExpandWords
	}
	return &ContextExpander{
		archive:     archive,
		wordsBefore: wordsBefore,
		wordsAfter:  wordsAfter,
	}
}

// Expand locates matchedText as a literal substring of the document's
// archived text and returns it with up to wordsBefore preceding and
// wordsAfter following whitespace-delimited words. Missing archive or
// missing match returns the ContextNotFound sentinel.
func (e *ContextExpander) Expand(documentID, matchedText string) string {
	text, err := e.archive.Read(documentID)
	if err != nil {
		return ContextNotFound
	}

	pos := strings.Index(text, matchedText)
	if pos < 0 {
		return ContextNotFound
	}

	before := lastWords(text[:pos], e.wordsBefore)
	after := firstWords(text[pos+len(matchedText):], e.wordsAfter)

	parts := make([]string, 0, 3)
	if before != "" {
		parts = append(parts, before)
	}
	parts = append(parts, matchedText)
	if after != "" {
		parts = append(parts, after)
	}
	return strings.Join(parts, " ")
}

func lastWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}

func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
