// Package knowledge owns the embedding and index lifecycle for the
// knowledge base: ingest, query, statistics, and reset.
package knowledge

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/shiken/internal/embedding"
	"github.com/hyperjump/shiken/internal/models"
	"github.com/hyperjump/shiken/internal/vector"
)

// Index batch-embeds chunks into the vector collection and answers
// similarity queries over it.
type Index struct {
	collection vector.Collection
	embedder   embedding.Embedder
	logger     *zap.Logger
}

// NewIndex creates a knowledge index over the given collection and embedder.
func NewIndex(collection vector.Collection, embedder embedding.Embedder, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{collection: collection, embedder: embedder, logger: logger}
}

// AddChunks embeds all chunk texts in one batch call and inserts them.
// Entry IDs follow doc_{i}_{chunk_index}, where i is the position within this
// call's batch; IDs are unique per call but not stable across rebuilds.
// Returns the number of chunks added; 0 for empty input without touching the
// backend.
func (idx *Index) AddChunks(ctx context.Context, chunks []models.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	ids := make([]string, len(chunks))
	metadatas := make([]models.Metadata, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
		metadatas[i] = ch.Metadata
		ids[i] = fmt.Sprintf("doc_%d_%s", i, ch.Metadata.Get(models.MetaChunkIndex, fmt.Sprintf("%d", i)))
	}

	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: embed batch: %v", models.ErrIndexFailure, err)
	}
	if err := idx.collection.Add(ctx, ids, vectors, texts, metadatas); err != nil {
		return 0, fmt.Errorf("%w: add: %v", models.ErrIndexFailure, err)
	}
	idx.logger.Debug("chunks indexed", zap.Int("count", len(chunks)))
	return len(chunks), nil
}

// Search embeds the query and returns up to topK results ordered by
// ascending distance; similarity is derived as 1 - distance.
func (idx *Index) Search(ctx context.Context, query string, topK int) ([]models.RetrievalResult, error) {
	vec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", models.ErrIndexFailure, err)
	}
	res, err := idx.collection.Query(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", models.ErrIndexFailure, err)
	}

	results := make([]models.RetrievalResult, len(res.IDs))
	for i := range res.IDs {
		results[i] = models.RetrievalResult{
			ID:         res.IDs[i],
			Text:       res.Texts[i],
			Metadata:   res.Metadatas[i],
			Distance:   res.Distances[i],
			Similarity: 1 - res.Distances[i],
		}
	}
	return results, nil
}

// ClearCollection drops all entries, best-effort: a failure is logged and the
// prior collection stays in place rather than half-completing.
func (idx *Index) ClearCollection() {
	if err := idx.collection.Clear(); err != nil {
		idx.logger.Warn("clear collection failed, keeping existing entries", zap.Error(err))
	}
}

// Stats reports the collection count, name, and storage location.
func (idx *Index) Stats() models.IndexStats {
	return models.IndexStats{
		TotalChunks:    idx.collection.Count(),
		CollectionName: idx.collection.Name(),
		Location:       idx.collection.Location(),
	}
}

// AllSources returns the distinct source metadata values across the whole
// collection, lexicographically sorted for deterministic display. Errors
// degrade to an empty list.
func (idx *Index) AllSources() []string {
	seen := make(map[string]bool)
	for _, meta := range idx.collection.AllMetadata() {
		if src, ok := meta[models.MetaSource]; ok && src != "" {
			seen[src] = true
		}
	}
	sources := make([]string, 0, len(seen))
	for src := range seen {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	return sources
}
