package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
	"github.com/hoangvum/pdf-chat-assistant/internal/core/ports"
)

const defaultTopK = 2

// MultiIndexRetriever runs similarity search across the selected
// per-document indexes and keeps the global top k across all of them.
type MultiIndexRetriever struct {
	embedder ports.Embedder
	indexes  ports.IndexStore
	topK     int
}

func NewMultiIndexRetriever(embedder ports.Embedder, indexes ports.IndexStore, topK int) *MultiIndexRetriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &MultiIndexRetriever{
		embedder: embedder,
		indexes:  indexes,
		topK:     topK,
	}
}

// Retrieve merges up to topK hits per selected document and returns the
// globally best topK sorted ascending by score. A single relevant
// document may supply every final hit. Selected ids without a loadable
// index are skipped, but a selection where no index loads at all is
// reported as ErrNoDocumentsSelected; an empty selection yields an
// empty result, not an error, so the caller can distinguish it from
// zero matches itself.
func (r *MultiIndexRetriever) Retrieve(ctx context.Context, documentIDs []string, question string) ([]domain.RetrievedChunk, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	vector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	loaded := 0
	var merged []domain.RetrievedChunk
	for _, id := range documentIDs {
		index, err := r.indexes.Load(ctx, id)
		if err != nil {
			if domain.IsKind(err, domain.ErrDocumentNotFound) {
				slog.Warn("no index for selected document", "document_id", id)
				continue
			}
			return nil, fmt.Errorf("load index %s: %w", id, err)
		}
		loaded++

		hits, err := index.SearchWithScore(vector, r.topK)
		if err != nil {
			return nil, fmt.Errorf("search index %s: %w", id, err)
		}
		merged = append(merged, hits...)
	}

	if loaded == 0 {
		return nil, domain.WrapError(domain.ErrNoDocumentsSelected, "retrieve",
			fmt.Errorf("no index available for any of the %d selected documents", len(documentIDs)))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score < merged[j].Score
	})
	if len(merged) > r.topK {
		merged = merged[:r.topK]
	}
	return merged, nil
}
