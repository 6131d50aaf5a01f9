package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
	"github.com/hoangvum/pdf-chat-assistant/internal/core/ports"
)

// SourceFilter reports whether the pipeline can extract text from a
// given file. Directory ingestion skips files the filter rejects.
type SourceFilter interface {
	Supports(path string) bool
}

type ProcessDocumentUseCase struct {
	repo        ports.DocumentRepository
	storage     ports.ObjectStorage
	fingerprint ports.Fingerprinter
	registry    ports.HashRegistry
	loader      ports.PageLoader
	filter      SourceFilter
	chunker     ports.Chunker
	embedder    ports.Embedder
	indexes     ports.IndexStore
	archive     ports.TextArchive
	workers     int

	// Serializes per-id index writes when a directory batch contains
	// differently-accented names that normalize to the same id.
	idLocks sync.Map
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	fingerprint ports.Fingerprinter,
	registry ports.HashRegistry,
	loader ports.PageLoader,
	filter SourceFilter,
	chunker ports.Chunker,
	embedder ports.Embedder,
	indexes ports.IndexStore,
	archive ports.TextArchive,
	workers int,
) *ProcessDocumentUseCase {
	if workers <= 0 {
		workers = 4
	}
	return &ProcessDocumentUseCase{
		repo:        repo,
		storage:     storage,
		fingerprint: fingerprint,
		registry:    registry,
		loader:      loader,
		filter:      filter,
		chunker:     chunker,
		embedder:    embedder,
		indexes:     indexes,
		archive:     archive,
		workers:     workers,
	}
}

// ProcessByID runs the ingestion pipeline for a previously uploaded
// document and records the outcome on its repository row.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	result, err := uc.ingest(ctx, uc.storage.Path(doc.StoragePath), doc.Filename)
	if err != nil {
		if failErr := uc.markStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveIngestResult(ctx, documentID, *result); err != nil {
		return fmt.Errorf("save ingest result: %w", err)
	}

	status := domain.StatusReady
	if result.Duplicate {
		status = domain.StatusDuplicate
	}
	if err := uc.markStatus(ctx, documentID, status, ""); err != nil {
		return fmt.Errorf("set status=%s: %w", status, err)
	}
	return nil
}

// IngestFile indexes one source file directly from disk, bypassing the
// upload metadata store. Used by batch ingestion and the worker CLI.
func (uc *ProcessDocumentUseCase) IngestFile(ctx context.Context, path string) (*domain.IngestResult, error) {
	return uc.ingest(ctx, path, path)
}

// IngestDirectory fans out over every supported file in dir. Failures
// are isolated per file: successful results are returned alongside the
// joined errors of the files that failed.
func (uc *ProcessDocumentUseCase) IngestDirectory(ctx context.Context, dir string) ([]domain.IngestResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read ingest directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if uc.filter != nil && !uc.filter.Supports(path) {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var (
		mu       sync.Mutex
		results  []domain.IngestResult
		fileErrs []error
		wg       sync.WaitGroup

		slots = make(chan struct{}, uc.workers)
	)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		slots <- struct{}{}
		go func(path string) {
			defer wg.Done()
			defer func() { <-slots }()

			result, err := uc.ingest(ctx, path, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("file ingestion failed", "path", path, "error", err)
				fileErrs = append(fileErrs, fmt.Errorf("%s: %w", filepath.Base(path), err))
				return
			}
			results = append(results, *result)
		}(path)
	}
	wg.Wait()

	return results, errors.Join(fileErrs...)
}

// ingest is the pipeline shared by every entry point. sourceName names
// the document for id derivation; for staged uploads it is the original
// filename rather than the staging key.
func (uc *ProcessDocumentUseCase) ingest(ctx context.Context, path, sourceName string) (*domain.IngestResult, error) {
	docID := domain.NormalizeDocumentID(sourceName)

	hash, err := uc.fingerprint.Hash(path)
	if err != nil {
		return nil, fmt.Errorf("fingerprint source file: %w", err)
	}
	if uc.registry.Contains(hash) {
		slog.Info("skipping known document", "document_id", docID, "hash", hash)
		return &domain.IngestResult{DocumentID: docID, Hash: hash, Duplicate: true}, nil
	}

	unlock := uc.lockID(docID)
	defer unlock()

	pages, err := uc.loader.LoadPages(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}
	text := uc.chunker.Normalize(joinPages(pages))
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract pages", errors.New("empty extracted text"))
	}

	if err := uc.archive.Write(docID, text); err != nil {
		return nil, fmt.Errorf("archive raw text: %w", err)
	}

	texts := uc.chunker.Split(text)
	if len(texts) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(texts)),
		)
	}

	index, err := uc.indexes.OpenOrCreate(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("open document index: %w", err)
	}

	base := index.Len()
	chunks := make([]domain.Chunk, len(texts))
	for i, chunkText := range texts {
		chunks[i] = domain.Chunk{
			DocumentID: docID,
			Text:       chunkText,
			Ordinal:    base + i,
			Source:     filepath.Base(sourceName),
		}
	}
	if err := index.AddChunks(chunks, vectors); err != nil {
		return nil, fmt.Errorf("add chunks to index: %w", err)
	}
	if err := uc.indexes.Persist(ctx, docID, index); err != nil {
		return nil, fmt.Errorf("persist document index: %w", err)
	}

	// Registry strictly after the index write: a crash in between
	// leaves the document re-ingestable, never falsely known.
	if err := uc.registry.Record(hash, sourceName); err != nil {
		return nil, fmt.Errorf("record content hash: %w", err)
	}

	return &domain.IngestResult{DocumentID: docID, Hash: hash, Chunks: len(texts)}, nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) lockID(docID string) func() {
	v, _ := uc.idLocks.LoadOrStore(docID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func joinPages(pages []domain.Page) string {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(page.Text)
	}
	return b.String()
}
