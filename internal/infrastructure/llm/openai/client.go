// Package openai adapts the OpenAI API as an alternative embedding and
// generation provider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

type Client struct {
	api        openai.Client
	genModel   string
	embedModel string
}

func New(apiKey, genModel, embedModel string) *Client {
	if genModel == "" {
		genModel = "gpt-4o-mini"
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	return &Client{
		api:        openai.NewClient(option.WithAPIKey(apiKey)),
		genModel:   genModel,
		embedModel: embedModel,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(e.client.embedModel),
	})
	if err != nil {
		return nil, wrapAPIError("embed", err)
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = toFloat32(data.Embedding)
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: g.client.genModel,
	})
	if err != nil {
		return "", wrapAPIError("generate", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai generate: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func wrapAPIError(operation string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && isRetryableStatus(apiErr.StatusCode) {
		return domain.WrapError(domain.ErrTemporary, "openai "+operation, err)
	}
	return fmt.Errorf("openai %s: %w", operation, err)
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
