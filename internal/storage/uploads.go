package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/shiken/internal/models"
)

// Upload rejection errors. Handlers map these onto client-error responses.
var (
	ErrTooManyDocuments = errors.New("maximum number of documents reached")
	ErrFileTooLarge     = errors.New("file exceeds maximum size")
)

// UploadManager writes uploaded payloads to disk and registers them in a Store.
// One registry row per payload file; rows and files are removed together.
type UploadManager struct {
	store       Store
	dir         string
	maxDocs     int
	maxFileSize int64
	extensions  map[string]bool
	logger      *zap.Logger
}

// NewUploadManager creates the upload directory if needed. allowedExtensions
// are lowercase with a leading dot, e.g. ".md".
func NewUploadManager(store Store, dir string, maxDocs int, maxFileSize int64, allowedExtensions []string, logger *zap.Logger) (*UploadManager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	exts := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		exts[strings.ToLower(ext)] = true
	}
	return &UploadManager{
		store:       store,
		dir:         dir,
		maxDocs:     maxDocs,
		maxFileSize: maxFileSize,
		extensions:  exts,
		logger:      logger,
	}, nil
}

// Save validates and persists one uploaded file, returning its registry record.
// The payload lives in a per-record subdirectory, so repeated uploads of the
// same name never collide and the stored basename is always the registered
// filename. Chunk provenance derives from that basename, so it must match.
func (m *UploadManager) Save(ctx context.Context, filename string, content []byte) (*models.SourceDocument, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !m.extensions[ext] {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, ext)
	}
	if m.maxFileSize > 0 && int64(len(content)) > m.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(content))
	}
	if m.maxDocs > 0 {
		count, err := m.store.CountDocuments(ctx)
		if err != nil {
			return nil, err
		}
		if count >= int64(m.maxDocs) {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyDocuments, m.maxDocs)
		}
	}

	id := uuid.New().String()
	safe := sanitizeFilename(filename)
	recordDir := filepath.Join(m.dir, id)
	if err := os.MkdirAll(recordDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	path := filepath.Join(recordDir, safe)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	doc := &models.SourceDocument{
		ID:         id,
		Filename:   safe,
		Format:     formatForExtension(ext),
		Size:       int64(len(content)),
		Path:       path,
		UploadedAt: time.Now(),
	}
	if err := m.store.CreateDocument(ctx, doc); err != nil {
		_ = os.Remove(path)
		_ = os.Remove(recordDir)
		return nil, err
	}

	m.logger.Info("saved upload",
		zap.String("id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int64("size", doc.Size))
	return doc, nil
}

// List returns all registered uploads, most recent first.
func (m *UploadManager) List(ctx context.Context) ([]*models.SourceDocument, error) {
	return m.store.ListDocuments(ctx)
}

// Paths returns the payload paths of all registered uploads, most recent first.
func (m *UploadManager) Paths(ctx context.Context) ([]string, error) {
	docs, err := m.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		paths = append(paths, doc.Path)
	}
	return paths, nil
}

// Remove deletes one upload's registry row and payload file.
func (m *UploadManager) Remove(ctx context.Context, id string) error {
	doc, err := m.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := m.store.DeleteDocument(ctx, id); err != nil {
		return err
	}
	m.removePayload(doc.Path)
	return nil
}

// Clear deletes every registered upload and its payload file. Payload removal
// is best-effort; the registry is always emptied.
func (m *UploadManager) Clear(ctx context.Context) (int, error) {
	docs, err := m.store.ListDocuments(ctx)
	if err != nil {
		return 0, err
	}
	if err := m.store.DeleteAll(ctx); err != nil {
		return 0, err
	}
	for _, doc := range docs {
		m.removePayload(doc.Path)
	}
	return len(docs), nil
}

// removePayload deletes a payload file and its record directory, best-effort.
func (m *UploadManager) removePayload(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("failed to remove upload payload", zap.String("path", path), zap.Error(err))
	}
	if dir := filepath.Dir(path); filepath.Dir(dir) == filepath.Clean(m.dir) {
		_ = os.Remove(dir)
	}
}

// Dir returns the upload directory.
func (m *UploadManager) Dir() string {
	return m.dir
}

// sanitizeFilename strips any path components and replaces characters outside
// [A-Za-z0-9._-] with underscores.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func formatForExtension(ext string) string {
	switch ext {
	case ".html", ".htm":
		return models.FormatHTML
	case ".md":
		return models.FormatMarkdown
	case ".json":
		return models.FormatJSON
	case ".pdf":
		return models.FormatPDF
	default:
		return models.FormatText
	}
}
