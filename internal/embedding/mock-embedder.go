package embedding

import (
	"context"
	"hash/fnv"

	"github.com/hyperjump/shiken/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests and offline runs. Each
// text maps to a unit vector drawn from a PRNG seeded by the text hash, so
// identical texts embed identically and distinct texts land far apart.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder producing deterministic embeddings of
// the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns the deterministic embedding for text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	state := h.Sum64()
	if state == 0 {
		state = 1 // xorshift must not start at zero
	}

	emb := make([]float32, e.dimensions)
	for i := range emb {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		// Top 53 bits as a float in [-1, 1).
		emb[i] = float32(float64(state>>11)/(1<<52) - 1)
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}
