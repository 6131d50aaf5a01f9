package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

func chunksFor(docID string, texts ...string) ([]domain.Chunk, [][]float32) {
	chunks := make([]domain.Chunk, 0, len(texts))
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, domain.Chunk{
			DocumentID: docID,
			Text:       text,
			Ordinal:    i,
			Source:     docID + ".pdf",
		})
		vectors = append(vectors, []float32{float32(i + 1), 1})
	}
	return chunks, vectors
}

func TestPersistThenLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ix, err := store.OpenOrCreate(ctx, "bao_cao")
	if err != nil {
		t.Fatalf("OpenOrCreate: %v", err)
	}
	chunks, vectors := chunksFor("bao_cao", "doanh thu quý 3", "chi phí vận hành")
	if err := ix.AddChunks(chunks, vectors); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	if err := store.Persist(ctx, "bao_cao", ix); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	// A fresh store reads from disk, not the first store's cache.
	reopened, err := NewStore(root)
	if err != nil {
		t.Fatalf("NewStore reopen: %v", err)
	}
	loaded, err := reopened.Load(ctx, "bao_cao")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded index Len = %d, want 2", loaded.Len())
	}

	hits, err := loaded.SearchWithScore([]float32{1, 1}, 1)
	if err != nil {
		t.Fatalf("SearchWithScore: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Text != "doanh thu quý 3" {
		t.Fatalf("nearest chunk = %q, want the [1,1]-aligned one", hits[0].Text)
	}
	if hits[0].DocumentID != "bao_cao" || hits[0].Filename != "bao_cao.pdf" {
		t.Fatalf("hit metadata not preserved: %+v", hits[0])
	}
}

func TestLoadMissingIndexIsNotFound(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Load(context.Background(), "nope"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("Load missing index: got %v, want document-not-found kind", err)
	}
}

func TestLoadCorruptIndexIsNotFound(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "broken")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, indexFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Load(context.Background(), "broken"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("Load corrupt index: got %v, want document-not-found kind", err)
	}
}

func TestOpenOrCreateAccumulates(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	first, err := store.OpenOrCreate(ctx, "doc")
	if err != nil {
		t.Fatalf("OpenOrCreate: %v", err)
	}
	chunks, vectors := chunksFor("doc", "phiên bản một")
	if err := first.AddChunks(chunks, vectors); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	if err := store.Persist(ctx, "doc", first); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	// Same id, new content: the second ingestion appends after the
	// existing chunks instead of replacing them.
	reopened, err := NewStore(root)
	if err != nil {
		t.Fatalf("NewStore reopen: %v", err)
	}
	second, err := reopened.OpenOrCreate(ctx, "doc")
	if err != nil {
		t.Fatalf("OpenOrCreate reopened: %v", err)
	}
	if second.Len() != 1 {
		t.Fatalf("reopened Len = %d, want 1", second.Len())
	}
	more, moreVecs := chunksFor("doc", "phiên bản hai")
	more[0].Ordinal = second.Len()
	if err := second.AddChunks(more, moreVecs); err != nil {
		t.Fatalf("AddChunks append: %v", err)
	}
	if second.Len() != 2 {
		t.Fatalf("after append Len = %d, want 2", second.Len())
	}
}

func TestListReturnsPersistedIDsOnly(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ix, err := store.OpenOrCreate(ctx, "kept")
	if err != nil {
		t.Fatalf("OpenOrCreate: %v", err)
	}
	chunks, vectors := chunksFor("kept", "text")
	if err := ix.AddChunks(chunks, vectors); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	if err := store.Persist(ctx, "kept", ix); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	// A directory without an index file is not listed.
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 1 || ids[0] != "kept" {
		t.Fatalf("List = %v, want [kept]", ids)
	}
}

func TestPersistIsAtomic(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ix, err := store.OpenOrCreate(ctx, "doc")
	if err != nil {
		t.Fatalf("OpenOrCreate: %v", err)
	}
	chunks, vectors := chunksFor("doc", "text")
	if err := ix.AddChunks(chunks, vectors); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	if err := store.Persist(ctx, "doc", ix); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "doc", indexFileName+".tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}
