// Package chunker splits normalized text into overlapping windows and
// serializes structural elements into retrievable chunks.
package chunker

import (
	"fmt"
	"strings"

	"github.com/hyperjump/shiken/internal/models"
)

// Chunker splits text into overlapping character windows, preferring cuts at
// natural text boundaries.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker with the given window size and overlap, both
// in characters. overlap must be strictly less than size or the window can
// never advance, so that combination is rejected as a configuration error.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got size=%d overlap=%d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// ChunkText splits text into windows of at most size characters. When a
// window does not end the text, the cut prefers the last sentence terminator
// (". ") past the window midpoint, then the last space past the midpoint,
// then a hard cut. Each emitted chunk is trimmed. Consecutive windows share
// overlap characters.
func (c *Chunker) ChunkText(text string) []string {
	if len(text) <= c.size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + c.size
		if end < len(text) {
			if cut := strings.LastIndex(text[start:end], ". "); cut > c.size/2 {
				end = start + cut + 1
			} else if cut := strings.LastIndex(text[start:end], " "); cut > c.size/2 {
				end = start + cut
			}
			chunks = append(chunks, strings.TrimSpace(text[start:end]))
			start = end - c.overlap
			continue
		}
		// Final window: the remainder fits, so emit it and stop rather than
		// generating an overlap-only tail chunk.
		chunks = append(chunks, strings.TrimSpace(text[start:]))
		break
	}
	return chunks
}

// ChunkDocument chunks body text into metadata-tagged chunks for one source
// document. Whitespace-only text yields no chunks; chunking it would store a
// spurious empty entry.
func (c *Chunker) ChunkDocument(filename, docType, text string) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := c.ChunkText(text)
	chunks := make([]models.Chunk, 0, len(parts))
	for i, part := range parts {
		meta := models.TextChunkMeta{
			Source:      filename,
			Type:        docType,
			ChunkIndex:  i,
			TotalChunks: len(parts),
		}
		chunks = append(chunks, models.Chunk{Text: part, Metadata: meta.Flatten()})
	}
	return chunks
}
