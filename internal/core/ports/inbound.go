package ports

import (
	"context"
	"io"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

// DocumentIngestor is the inbound contract for upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor runs the ingestion pipeline for staged documents.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
	IngestFile(ctx context.Context, path string) (*domain.IngestResult, error)
	IngestDirectory(ctx context.Context, dir string) ([]domain.IngestResult, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// ChatService answers questions against the caller-owned conversation state.
type ChatService interface {
	ProcessQuestion(ctx context.Context, state *domain.ConversationState, question string) (*domain.Answer, error)
	Continue(ctx context.Context, state *domain.ConversationState) (*domain.Answer, error)
	NeedsContinuation(answer string) bool
}
