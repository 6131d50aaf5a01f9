// Package local implements per-document vector indexes persisted as
// JSON under a root path, one directory per document id. Search is
// brute-force cosine distance, good for the per-document index sizes
// this service deals with.
package local

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

// Index holds embedded chunk vectors plus the original chunk text and
// metadata for one document.
type Index struct {
	mu        sync.RWMutex
	dimension int
	chunks    []domain.Chunk
	vectors   [][]float32
}

func NewIndex() *Index { return &Index{} }

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

func (ix *Index) AddChunks(chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dimension == 0 {
		ix.dimension = len(vectors[0])
	}
	for _, v := range vectors {
		if len(v) != ix.dimension {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(v), ix.dimension)
		}
	}

	ix.chunks = append(ix.chunks, chunks...)
	ix.vectors = append(ix.vectors, vectors...)
	return nil
}

// SearchWithScore returns up to k hits ordered by ascending cosine
// distance (lower score = more similar).
func (ix *Index) SearchWithScore(vector []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = 2
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.chunks) == 0 {
		return nil, nil
	}

	hits := make([]domain.RetrievedChunk, 0, len(ix.chunks))
	for i, v := range ix.vectors {
		hits = append(hits, domain.RetrievedChunk{
			DocumentID: ix.chunks[i].DocumentID,
			Filename:   ix.chunks[i].Source,
			Text:       ix.chunks[i].Text,
			ChunkIndex: ix.chunks[i].Ordinal,
			Score:      cosineDistance(vector, v),
		})
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score < hits[b].Score })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
