// Package vector provides the persisted vector collection backing the
// knowledge index.
package vector

import (
	"context"

	"github.com/hyperjump/shiken/internal/models"
)

// QueryResult holds one similarity query's hits, parallel slices ordered by
// ascending distance.
type QueryResult struct {
	IDs       []string
	Texts     []string
	Metadatas []models.Metadata
	Distances []float64
}

// Collection is the index backend contract: scalar-metadata vector storage
// with similarity search. Distances follow the cosine convention
// (0 identical, 2 opposite); callers derive similarity as 1 - distance.
type Collection interface {
	Add(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadatas []models.Metadata) error
	Query(ctx context.Context, vector []float32, topK int) (*QueryResult, error)
	Clear() error
	Count() int
	AllMetadata() []models.Metadata
	Name() string
	Location() string
	Save(path string) error
	Load(path string) error
	Close() error
}
