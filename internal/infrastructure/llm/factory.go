// Package llm selects and decorates the configured language-model
// provider.
package llm

import (
	"fmt"
	"strings"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/ports"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/llm/ollama"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/llm/openai"
	"github.com/hoangvum/pdf-chat-assistant/internal/infrastructure/resilience"
)

type ProviderConfig struct {
	Provider string

	OllamaURL        string
	OllamaGenModel   string
	OllamaEmbedModel string

	OpenAIAPIKey     string
	OpenAIGenModel   string
	OpenAIEmbedModel string

	TokenBudget int
}

// NewProvider returns the embedder and generator for the configured
// provider. The generator is wrapped with the cumulative token budget.
func NewProvider(cfg ProviderConfig, executor *resilience.Executor) (ports.Embedder, ports.Generator, error) {
	var (
		embedder  ports.Embedder
		generator ports.Generator
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "ollama":
		client := ollama.NewWithExecutor(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
		embedder = ollama.NewEmbedder(client)
		generator = ollama.NewGenerator(client)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil, fmt.Errorf("openai provider requires an api key")
		}
		client := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIGenModel, cfg.OpenAIEmbedModel)
		embedder = openai.NewEmbedder(client)
		generator = openai.NewGenerator(client)
	default:
		return nil, nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}

	return embedder, NewBudgetedGenerator(generator, cfg.TokenBudget), nil
}
