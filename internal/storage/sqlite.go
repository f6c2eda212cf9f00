package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/shiken/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS source_documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		format TEXT NOT NULL,
		size INTEGER NOT NULL,
		path TEXT NOT NULL,
		uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_source_documents_uploaded_at ON source_documents(uploaded_at);
	CREATE INDEX IF NOT EXISTS idx_source_documents_filename ON source_documents(filename);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateDocument inserts an upload record.
func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *models.SourceDocument) error {
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO source_documents (id, filename, format, size, path, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.Format, doc.Size, doc.Path, doc.UploadedAt,
	)
	return err
}

// GetDocument returns an upload record by ID.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*models.SourceDocument, error) {
	var doc models.SourceDocument

	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, format, size, path, uploaded_at
		 FROM source_documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Filename, &doc.Format, &doc.Size, &doc.Path, &doc.UploadedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// ListDocuments returns all upload records, most recent first.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]*models.SourceDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, format, size, path, uploaded_at
		 FROM source_documents ORDER BY uploaded_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.SourceDocument
	for rows.Next() {
		var doc models.SourceDocument
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Format, &doc.Size, &doc.Path, &doc.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes an upload record by ID.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM source_documents WHERE id = ?`, id)
	return err
}

// CountDocuments returns the total number of upload records.
func (s *SQLiteStore) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM source_documents`).Scan(&count)
	return count, err
}

// DeleteAll removes every upload record.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM source_documents`)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
