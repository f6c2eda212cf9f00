// Package models defines core data structures for documents, chunks, and retrieval results.
package models

import "time"

// Document format tags. Markdown and text normalize identically but keep
// distinct tags for provenance labeling in retrieval output.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatJSON     = "json"
	FormatPDF      = "pdf"
)

// SourceDocument is an uploaded document registered in storage. Created on
// upload, immutable, removed only by explicit cleanup.
type SourceDocument struct {
	ID         string    `json:"id" db:"id"`
	Filename   string    `json:"filename" db:"filename"`
	Format     string    `json:"format" db:"format"`
	Size       int64     `json:"size" db:"size"`
	Path       string    `json:"path" db:"path"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// ParsedDocument is the transient output of parsing one source document.
// Only its derived chunks are ever persisted.
type ParsedDocument struct {
	Text      string              `json:"text"`
	Format    string              `json:"format"`
	RawMarkup string              `json:"raw_markup,omitempty"`
	Elements  []StructuralElement `json:"elements,omitempty"`
}
