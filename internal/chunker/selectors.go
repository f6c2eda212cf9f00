package chunker

import (
	"strings"

	"github.com/hyperjump/shiken/internal/models"
)

// ChunkSelectors serializes structural elements into one chunk each. The
// chunk text pipe-joins the element's non-empty fields in a fixed order
// (Element Type, ID, Name, Placeholder, Text); metadata is the flattened
// selector schema, always tagged html_selector.
func ChunkSelectors(elements []models.StructuralElement, filename string) []models.Chunk {
	chunks := make([]models.Chunk, 0, len(elements))
	for _, el := range elements {
		parts := []string{"Element Type: " + el.ElementType}
		if el.ElementID != "" {
			parts = append(parts, "ID: "+el.ElementID)
		}
		if el.ElementName != "" {
			parts = append(parts, "Name: "+el.ElementName)
		}
		if el.Placeholder != "" {
			parts = append(parts, "Placeholder: "+el.Placeholder)
		}
		if el.TextContent != "" {
			parts = append(parts, "Text: "+el.TextContent)
		}

		meta := models.SelectorChunkMeta{
			Source:      filename,
			ElementType: el.ElementType,
			ElementID:   el.ElementID,
			ElementName: el.ElementName,
			CSSSelector: el.CSSSelector,
			XPath:       el.XPath,
			Placeholder: el.Placeholder,
			InputType:   el.InputType,
		}
		chunks = append(chunks, models.Chunk{
			Text:     strings.Join(parts, " | "),
			Metadata: meta.Flatten(),
		})
	}
	return chunks
}
