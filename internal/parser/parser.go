// Package parser normalizes heterogeneous document formats into parsed text,
// and for markup additionally extracts structural elements.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/shiken/internal/models"
	"github.com/hyperjump/shiken/pkg/utils"
)

// Parser dispatches file parsing by extension.
type Parser struct{}

// NewParser returns a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads the file at path and parses it according to its extension.
// Supported: .html .htm .md .txt .json .pdf. Returns ErrUnsupportedFormat for
// anything else and ErrMalformedInput when markup or JSON cannot be parsed.
func (p *Parser) ParseFile(path string) (*models.ParsedDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return p.ParseBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ParseBytes parses content according to ext (with leading dot).
func (p *Parser) ParseBytes(content []byte, ext string) (*models.ParsedDocument, error) {
	switch ext {
	case ".html", ".htm":
		return parseHTML(string(content))
	case ".md":
		return &models.ParsedDocument{
			Text:   utils.CleanText(string(content)),
			Format: models.FormatMarkdown,
		}, nil
	case ".txt":
		return &models.ParsedDocument{
			Text:   utils.CleanText(string(content)),
			Format: models.FormatText,
		}, nil
	case ".json":
		return parseJSON(content)
	case ".pdf":
		return parsePDF(content)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, ext)
	}
}
