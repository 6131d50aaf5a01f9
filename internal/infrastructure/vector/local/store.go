package local

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
	"github.com/hoangvum/pdf-chat-assistant/internal/core/ports"
)

const indexFileName = "index.json"

// Store owns per-document indexes under <root>/<documentID>/index.json
// with an in-memory cache in front of the disk copies.
type Store struct {
	root string

	mu    sync.Mutex
	cache map[string]*Index
}

func NewStore(root string) (*Store, error) {
	if root == "" {
		root = "./data/vectorstores"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create vector root: %w", err)
	}
	return &Store{
		root:  root,
		cache: make(map[string]*Index),
	}, nil
}

type indexFile struct {
	Dimension int            `json:"dimension"`
	Chunks    []domain.Chunk `json:"chunks"`
	Vectors   [][]float32    `json:"vectors"`
}

// Load returns the index for documentID, reading it from disk on a
// cache miss. A missing or corrupt on-disk index is reported as
// domain.ErrDocumentNotFound; corruption is logged, never fatal.
func (s *Store) Load(_ context.Context, documentID string) (ports.VectorIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ix, ok := s.cache[documentID]; ok {
		return ix, nil
	}

	ix, err := s.readIndex(documentID)
	if err != nil {
		return nil, err
	}
	s.cache[documentID] = ix
	return ix, nil
}

// OpenOrCreate returns the existing index for documentID or an empty
// one when none exists yet. A same-id re-ingestion with a new hash thus
// accumulates into the prior index.
func (s *Store) OpenOrCreate(_ context.Context, documentID string) (ports.VectorIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ix, ok := s.cache[documentID]; ok {
		return ix, nil
	}

	ix, err := s.readIndex(documentID)
	if err != nil {
		if !domain.IsKind(err, domain.ErrDocumentNotFound) {
			return nil, err
		}
		ix = NewIndex()
	}
	s.cache[documentID] = ix
	return ix, nil
}

func (s *Store) Persist(_ context.Context, documentID string, index ports.VectorIndex) error {
	ix, ok := index.(*Index)
	if !ok {
		return fmt.Errorf("persist: unsupported index type %T", index)
	}

	ix.mu.RLock()
	payload := indexFile{
		Dimension: ix.dimension,
		Chunks:    ix.chunks,
		Vectors:   ix.vectors,
	}
	raw, err := json.Marshal(payload)
	ix.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	dir := filepath.Join(s.root, documentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	path := filepath.Join(dir, indexFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write index temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// List returns the document ids with an index directory on disk.
func (s *Store) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read vector root: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, entry.Name(), indexFileName)); err != nil {
			continue
		}
		ids = append(ids, entry.Name())
	}
	return ids, nil
}

func (s *Store) readIndex(documentID string) (*Index, error) {
	path := filepath.Join(s.root, documentID, indexFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "load index", err)
		}
		return nil, fmt.Errorf("read index file: %w", err)
	}

	var payload indexFile
	if err := json.Unmarshal(raw, &payload); err != nil {
		slog.Warn("index file corrupt, treating as absent", "document_id", documentID, "error", err)
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "load index", err)
	}
	if len(payload.Chunks) != len(payload.Vectors) {
		slog.Warn("index file inconsistent, treating as absent", "document_id", documentID)
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "load index", fmt.Errorf("chunks/vectors mismatch"))
	}

	return &Index{
		dimension: payload.Dimension,
		chunks:    payload.Chunks,
		vectors:   payload.Vectors,
	}, nil
}
