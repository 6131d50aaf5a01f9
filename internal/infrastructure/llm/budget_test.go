package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type scriptedGenerator struct {
	reply string
	err   error
	calls int
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func TestBudgetedGeneratorPassesThroughUnderBudget(t *testing.T) {
	inner := &scriptedGenerator{reply: "a short answer"}
	gen := NewBudgetedGenerator(inner, 1000)

	answer, err := gen.Generate(context.Background(), "a short prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "a short answer" {
		t.Fatalf("answer = %q", answer)
	}
	if gen.Spent() == 0 {
		t.Fatal("Spent not updated after a successful call")
	}
}

func TestBudgetedGeneratorReturnsSentinelWhenSpent(t *testing.T) {
	inner := &scriptedGenerator{reply: strings.Repeat("x", 400)}
	gen := NewBudgetedGenerator(inner, 10)

	// First call is allowed and overshoots the tiny budget.
	if _, err := gen.Generate(context.Background(), strings.Repeat("p", 400)); err != nil {
		t.Fatalf("first Generate: %v", err)
	}

	answer, err := gen.Generate(context.Background(), "another prompt")
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if answer != BudgetSentinel {
		t.Fatalf("answer = %q, want sentinel", answer)
	}
	if inner.calls != 1 {
		t.Fatalf("provider called %d times, want 1", inner.calls)
	}
}

func TestBudgetedGeneratorDoesNotChargeFailedCalls(t *testing.T) {
	inner := &scriptedGenerator{err: errors.New("provider down")}
	gen := NewBudgetedGenerator(inner, 1000)

	if _, err := gen.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("error from provider swallowed")
	}
	if gen.Spent() != 0 {
		t.Fatalf("Spent = %d after failed call, want 0", gen.Spent())
	}
}

func TestBudgetedGeneratorDefaultsZeroBudget(t *testing.T) {
	inner := &scriptedGenerator{reply: "ok"}
	gen := NewBudgetedGenerator(inner, 0)

	answer, err := gen.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "ok" {
		t.Fatalf("answer = %q, want passthrough under default budget", answer)
	}
}
