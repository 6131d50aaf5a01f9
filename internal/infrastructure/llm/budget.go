package llm

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/ports"
)

// BudgetSentinel is returned instead of calling the provider once the
// cumulative token budget is spent.
const BudgetSentinel = "Out of tokens"

const defaultTokenBudget = 1_000_000

// BudgetedGenerator enforces a cumulative token budget across all calls
// made through it. Token counts are approximated from rune counts; the
// budget is a coarse cost guard, not billing.
type BudgetedGenerator struct {
	inner  ports.Generator
	budget int

	mu    sync.Mutex
	spent int
}

func NewBudgetedGenerator(inner ports.Generator, budget int) *BudgetedGenerator {
	if budget <= 0 {
		budget = defaultTokenBudget
	}
	return &BudgetedGenerator{inner: inner, budget: budget}
}

func (g *BudgetedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	exhausted := g.spent > g.budget
	g.mu.Unlock()
	if exhausted {
		return BudgetSentinel, nil
	}

	answer, err := g.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	g.spent += approxTokens(prompt) + approxTokens(answer)
	g.mu.Unlock()
	return answer, nil
}

// Spent reports the approximate tokens consumed so far.
func (g *BudgetedGenerator) Spent() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.spent
}

func approxTokens(text string) int {
	return utf8.RuneCountInString(text)/4 + 1
}
