package classify

import (
	"testing"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

func TestClassifyMatchesKeywords(t *testing.T) {
	classifier := NewKeywordClassifier("pdf, document, tài liệu, báo cáo")

	cases := []struct {
		question string
		want     domain.Topic
	}{
		{"summarize the PDF for me", domain.TopicDocument},
		{"What does the Document say about revenue?", domain.TopicDocument},
		{"tóm tắt tài liệu này", domain.TopicDocument},
		{"trong báo cáo có gì?", domain.TopicDocument},
		{"what's the weather like today?", domain.TopicGeneral},
		{"tell me a joke", domain.TopicGeneral},
	}
	for _, tc := range cases {
		if got := classifier.Classify(tc.question); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.question, got, tc.want)
		}
	}
}

func TestClassifierIgnoresBlankKeywords(t *testing.T) {
	classifier := NewKeywordClassifier("pdf, , ,report")
	if got := classifier.Classify("any question at all"); got != domain.TopicGeneral {
		t.Fatalf("blank keyword matched everything: got %q", got)
	}
	if got := classifier.Classify("open the report"); got != domain.TopicDocument {
		t.Fatalf("real keyword lost: got %q", got)
	}
}
