package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
	"github.com/hoangvum/pdf-chat-assistant/internal/core/ports"
	"github.com/hoangvum/pdf-chat-assistant/internal/prompts"
)

// Retriever is the searching capability the router depends on. The
// chat path must never touch it.
type Retriever interface {
	Retrieve(ctx context.Context, documentIDs []string, question string) ([]domain.RetrievedChunk, error)
}

// Expander widens one matched chunk to its surrounding text window.
type Expander interface {
	Expand(documentID, matchedText string) string
}

const defaultHistoryMax = 5

type ChatUseCase struct {
	generator  ports.Generator
	retriever  Retriever
	expander   Expander
	classifier ports.QuestionClassifier
	templates  prompts.Templates
	sanitize   func(string) string

	historyWindow domain.HistoryWindow
	historyMax    int
}

func NewChatUseCase(
	generator ports.Generator,
	retriever Retriever,
	expander Expander,
	classifier ports.QuestionClassifier,
	templates prompts.Templates,
	sanitize func(string) string,
	historyWindow domain.HistoryWindow,
	historyMax int,
) *ChatUseCase {
	if historyMax <= 0 {
		historyMax = defaultHistoryMax
	}
	if historyWindow == "" {
		historyWindow = domain.HistoryWindowAll
	}
	if sanitize == nil {
		sanitize = func(s string) string { return s }
	}
	return &ChatUseCase{
		generator:     generator,
		retriever:     retriever,
		expander:      expander,
		classifier:    classifier,
		templates:     templates,
		sanitize:      sanitize,
		historyWindow: historyWindow,
		historyMax:    historyMax,
	}
}

// ProcessQuestion answers one turn against the caller-owned state. The
// sticky mode picks the path; auto defers to the question classifier.
func (uc *ChatUseCase) ProcessQuestion(ctx context.Context, state *domain.ConversationState, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "process question", errors.New("empty question"))
	}

	mode := state.Mode
	if mode == domain.ModeAuto {
		if uc.classifier != nil && uc.classifier.Classify(question) == domain.TopicDocument {
			mode = domain.ModeDocumentQuery
		} else {
			mode = domain.ModeChat
		}
	}

	switch mode {
	case domain.ModeDocumentQuery:
		return uc.answerFromDocuments(ctx, state, question)
	default:
		return uc.answerFreely(ctx, state, question)
	}
}

func (uc *ChatUseCase) answerFreely(ctx context.Context, state *domain.ConversationState, question string) (*domain.Answer, error) {
	raw, err := uc.generator.Generate(ctx, uc.templates.RenderChat(question))
	if err != nil {
		return nil, domain.WrapError(domain.ErrGeneration, "chat generation", err)
	}

	answer := uc.sanitize(strings.TrimSpace(raw))
	uc.recordTurn(state, question, answer, "")
	return &domain.Answer{Text: answer}, nil
}

func (uc *ChatUseCase) answerFromDocuments(ctx context.Context, state *domain.ConversationState, question string) (*domain.Answer, error) {
	if len(state.SelectedDocumentIDs) == 0 {
		return nil, domain.WrapError(domain.ErrNoDocumentsSelected, "document query", errors.New("no documents selected"))
	}

	hits, err := uc.retriever.Retrieve(ctx, state.SelectedDocumentIDs, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	// Zero hits still reaches the model: the prompt instructs it to
	// decline when the context is insufficient.
	contexts := make([]string, 0, len(hits))
	for _, hit := range hits {
		contexts = append(contexts, uc.expander.Expand(hit.DocumentID, hit.Text))
	}
	contextText := strings.Join(contexts, "\n")

	state.AppendHistory(question+"\n"+contextText, uc.historyMax)
	prompt := uc.templates.RenderQA(state.HistoryGlobal(uc.historyWindow), contextText, question)

	raw, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, domain.WrapError(domain.ErrGeneration, "document query generation", err)
	}

	answer := uc.sanitize(strings.TrimSpace(raw))
	sources := uniqueSources(hits)
	if line := sourcesLine(sources); line != "" {
		answer = line + "\n" + answer
	}

	uc.recordTurn(state, question, answer, contextText)
	return &domain.Answer{Text: answer, Context: contextText, Sources: sources}, nil
}

// Continue extends the last truncated answer without re-running
// retrieval. The continuation is appended to the remembered answer so
// repeated calls keep extending the same turn.
func (uc *ChatUseCase) Continue(ctx context.Context, state *domain.ConversationState) (*domain.Answer, error) {
	if state.LastAnswer == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "continue answer", errors.New("nothing to continue"))
	}

	target := remainingWordTarget(state.LastQuestion, state.LastAnswer)
	prompt := uc.templates.RenderContinuation(state.LastAnswer, state.LastQuestion, state.LastContext, target)

	raw, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, domain.WrapError(domain.ErrGeneration, "continuation", err)
	}

	extension := uc.sanitize(strings.TrimSpace(raw))
	full := strings.TrimSpace(state.LastAnswer + " " + extension)
	state.AppendTurn("assistant", extension)
	state.Remember(state.LastQuestion, full, state.LastContext)

	return &domain.Answer{Text: full, Context: state.LastContext}, nil
}

// NeedsContinuation reports whether an answer looks cut off: its last
// non-space character is not a sentence-terminal token.
func (uc *ChatUseCase) NeedsContinuation(answer string) bool {
	trimmed := strings.TrimRight(answer, " \t\n")
	if trimmed == "" {
		return false
	}
	for _, token := range uc.templates.EndTokens {
		if strings.HasSuffix(trimmed, token) {
			return false
		}
	}
	return true
}

func (uc *ChatUseCase) recordTurn(state *domain.ConversationState, question, answer, context string) {
	state.AppendTurn("user", question)
	state.AppendTurn("assistant", answer)
	state.Remember(question, answer, context)
}

func uniqueSources(hits []domain.RetrievedChunk) []domain.SourceRef {
	seen := make(map[string]bool, len(hits))
	var out []domain.SourceRef
	for _, hit := range hits {
		if seen[hit.DocumentID] {
			continue
		}
		seen[hit.DocumentID] = true
		out = append(out, domain.SourceRef{DocumentID: hit.DocumentID, Filename: hit.Filename})
	}
	return out
}

func sourcesLine(sources []domain.SourceRef) string {
	if len(sources) == 0 {
		return ""
	}
	names := make([]string, len(sources))
	for i, src := range sources {
		name := src.Filename
		if name == "" {
			name = src.DocumentID
		}
		names[i] = name
	}
	return "Sources: " + strings.Join(names, ", ")
}

var wordTargetPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:words?|từ)`)

// remainingWordTarget extracts an explicit word-count request from the
// original question and subtracts what the previous answer already
// wrote. Zero means no explicit target.
func remainingWordTarget(question, previousAnswer string) int {
	match := wordTargetPattern.FindStringSubmatch(question)
	if match == nil {
		return 0
	}
	requested, err := strconv.Atoi(match[1])
	if err != nil || requested <= 0 {
		return 0
	}
	remaining := requested - len(strings.Fields(previousAnswer))
	if remaining <= 0 {
		return 0
	}
	return remaining
}
