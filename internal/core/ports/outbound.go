package ports

import (
	"context"
	"io"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveIngestResult(ctx context.Context, id string, result domain.IngestResult) error
}

// ObjectStorage stages uploaded source documents on the local filesystem.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Path(key string) string
}

// MessageQueue publishes/consumes upload events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// Fingerprinter computes the content hash used for deduplication.
type Fingerprinter interface {
	Hash(path string) (string, error)
}

// HashRegistry maps content hashes to their originating file path.
// Record persists the registry atomically after updating it.
type HashRegistry interface {
	Contains(hash string) bool
	Record(hash, sourcePath string) error
}

// PageLoader extracts ordered pages of raw text from a source file.
type PageLoader interface {
	LoadPages(ctx context.Context, path string) ([]domain.Page, error)
}

// Chunker repairs extraction artifacts and splits document text into
// overlapping chunks. Normalize runs before both archiving and Split so
// the archived text and the chunk text agree character for character.
type Chunker interface {
	Normalize(text string) string
	Split(text string) []string
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the narrow capability of one per-document index.
type VectorIndex interface {
	AddChunks(chunks []domain.Chunk, vectors [][]float32) error
	SearchWithScore(vector []float32, k int) ([]domain.RetrievedChunk, error)
	Len() int
}

// IndexStore owns the lifecycle of per-document indexes keyed by
// normalized document id. Load returns domain.ErrDocumentNotFound when
// no usable index exists for the id; a corrupt on-disk index is logged
// and reported the same way.
type IndexStore interface {
	Load(ctx context.Context, documentID string) (VectorIndex, error)
	OpenOrCreate(ctx context.Context, documentID string) (VectorIndex, error)
	Persist(ctx context.Context, documentID string, index VectorIndex) error
	List(ctx context.Context) ([]string, error)
}

// TextArchive stores the full normalized text of each document, written
// once at ingestion time and read back for context expansion.
type TextArchive interface {
	Write(documentID, text string) error
	Read(documentID string) (string, error)
	Exists(documentID string) bool
}

// Generator creates answer text from a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QuestionClassifier decides whether a question targets the uploaded
// documents or general knowledge.
type QuestionClassifier interface {
	Classify(question string) domain.Topic
}
