// Package chunking splits normalized document text into overlapping
// chunks along a priority-ordered list of separators.
package chunking

import (
	"regexp"
	"strings"
)

// Separators from coarsest to finest. The empty string is the last
// resort and means a plain character-level cut.
var defaultSeparators = []string{"\n\n", "\n", " ", ".", "!", "?", ""}

type Splitter struct {
	ChunkSize  int
	Overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Splitter{
		ChunkSize:  chunkSize,
		Overlap:    overlap,
		separators: defaultSeparators,
	}
}

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	wrappedLine    = regexp.MustCompile(`(\S)\n(\S)`)
)

// NormalizeText repairs PDF extraction artifacts: runs of three or more
// newlines collapse to exactly one blank line, and a lone newline
// between two non-whitespace characters (a hard-wrapped sentence)
// becomes a single space.
func NormalizeText(text string) string {
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	text = wrappedLine.ReplaceAllString(text, "$1 $2")
	return text
}

// Normalize satisfies the chunker contract used by the ingestion
// pipeline.
func (s *Splitter) Normalize(text string) string {
	return NormalizeText(text)
}

// Split cuts text into chunks of at most ChunkSize characters. Each
// chunk after the first starts with exactly the trailing Overlap
// characters of its predecessor, so concatenating the first chunk with
// every later chunk's non-overlap tail reconstructs the input. Chunk
// ends land on the coarsest separator available inside the window.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.ChunkSize {
		return []string{text}
	}

	step := s.ChunkSize - s.Overlap
	out := make([]string, 0, len(runes)/step+1)

	start := 0
	for {
		end := start + s.ChunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			return out
		}

		end = s.cutPoint(runes, start, end)
		out = append(out, string(runes[start:end]))
		start = end - s.Overlap
	}
}

// cutPoint moves the window end back onto the last occurrence of the
// coarsest separator in the window, provided the chunk still makes
// forward progress past the overlap region.
func (s *Splitter) cutPoint(runes []rune, start, end int) int {
	window := string(runes[start:end])
	minEnd := start + s.Overlap + 1

	for _, sep := range s.separators {
		if sep == "" {
			break
		}
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := start + len([]rune(window[:idx])) + len([]rune(sep))
		if cut >= minEnd {
			return cut
		}
	}
	return end
}
