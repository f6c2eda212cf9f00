// Package storage persists the upload registry: which source documents exist,
// where their payloads live, and when they arrived.
package storage

import (
	"context"

	"github.com/hyperjump/shiken/internal/models"
)

// Store defines source-document registry operations. Documents are created on
// upload, never mutated, and removed only by explicit delete or cleanup.
type Store interface {
	CreateDocument(ctx context.Context, doc *models.SourceDocument) error
	GetDocument(ctx context.Context, id string) (*models.SourceDocument, error)
	ListDocuments(ctx context.Context) ([]*models.SourceDocument, error)
	DeleteDocument(ctx context.Context, id string) error
	CountDocuments(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
	Close() error
}
