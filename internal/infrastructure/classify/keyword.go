// Package classify decides whether a question targets the uploaded
// documents. The keyword matcher is deliberately simple; anything
// smarter can replace it behind the same port.
package classify

import (
	"strings"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

type KeywordClassifier struct {
	keywords []string
}

// NewKeywordClassifier builds a classifier from a comma-separated
// keyword list. Matching is case-insensitive substring search.
func NewKeywordClassifier(keywordList string) *KeywordClassifier {
	parts := strings.Split(keywordList, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			keywords = append(keywords, part)
		}
	}
	return &KeywordClassifier{keywords: keywords}
}

func (c *KeywordClassifier) Classify(question string) domain.Topic {
	lowered := strings.ToLower(question)
	for _, keyword := range c.keywords {
		if strings.Contains(lowered, keyword) {
			return domain.TopicDocument
		}
	}
	return domain.TopicGeneral
}
