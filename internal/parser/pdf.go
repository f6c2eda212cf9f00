package parser

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/hyperjump/shiken/internal/models"
	"github.com/hyperjump/shiken/pkg/utils"
)

// parsePDF extracts text page by page in document order, joins pages with a
// newline, and normalizes the result.
func parsePDF(content []byte) (*models.ParsedDocument, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(text)
	}
	return &models.ParsedDocument{
		Text:   utils.CleanText(buf.String()),
		Format: models.FormatPDF,
	}, nil
}
