// Package pipeline orchestrates the retrieval-augmented knowledge flow:
// parse, chunk, embed, index on build; search, format, and reconstruct on query.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/shiken/internal/chunker"
	"github.com/hyperjump/shiken/internal/knowledge"
	"github.com/hyperjump/shiken/internal/models"
	"github.com/hyperjump/shiken/internal/parser"
)

// EmptyContext is the canonical sentinel returned when a query matches
// nothing. Callers compare against this exact sentence, not an empty string.
const EmptyContext = "No relevant context found."

// selectorInventoryQuery is the broad query used to pull the full structural
// inventory rather than a query-relevant subset.
const selectorInventoryQuery = "html form input button"

// selectorInventoryLimit caps the inventory retrieval.
const selectorInventoryLimit = 100

// Pipeline is the top-level orchestrator over parsing, chunking, and the
// knowledge index. It holds no hidden session state; Build takes an explicit
// file list on every call.
type Pipeline struct {
	parser  *parser.Parser
	chunker *chunker.Chunker
	index   *knowledge.Index
	logger  *zap.Logger
}

// New creates a pipeline.
func New(p *parser.Parser, c *chunker.Chunker, idx *knowledge.Index, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{parser: p, chunker: c, index: idx, logger: logger}
}

// Build ingests the given files into the knowledge base. When clearExisting
// is true the collection is reset first (best-effort). A file that fails to
// parse is logged and skipped; the rest of the batch still ingests. All
// chunks across all files go to the index in a single call.
func (pl *Pipeline) Build(ctx context.Context, filePaths []string, clearExisting bool) (*models.BuildResult, error) {
	if clearExisting {
		pl.index.ClearCollection()
	}

	var allChunks []models.Chunk
	var processed []string
	for _, path := range filePaths {
		parsed, err := pl.parser.ParseFile(path)
		if err != nil {
			pl.logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
			continue
		}
		filename := filepath.Base(path)
		if strings.TrimSpace(parsed.Text) != "" {
			allChunks = append(allChunks, pl.chunker.ChunkDocument(filename, parsed.Format, parsed.Text)...)
		}
		if len(parsed.Elements) > 0 {
			allChunks = append(allChunks, chunker.ChunkSelectors(parsed.Elements, filename)...)
		}
		processed = append(processed, filename)
	}

	count, err := pl.index.AddChunks(ctx, allChunks)
	if err != nil {
		return nil, err
	}
	pl.logger.Info("knowledge base built",
		zap.Int("chunks", count),
		zap.Int("documents", len(processed)),
	)
	return &models.BuildResult{
		ChunkCount:     count,
		DocumentCount:  len(processed),
		ProcessedFiles: processed,
	}, nil
}

// Query retrieves the topK most relevant chunks and formats them into a
// context block with source attribution, the deduplicated source set, and
// any structural elements reconstructed from selector hits.
func (pl *Pipeline) Query(ctx context.Context, text string, topK int) (*models.QueryResult, error) {
	results, err := pl.index.Search(ctx, text, topK)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	sources := make([]string, 0, len(results))
	for _, r := range results {
		src := r.Metadata.Get(models.MetaSource, "unknown")
		if !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}

	return &models.QueryResult{
		Context:  formatContext(results),
		Sources:  sources,
		Results:  results,
		Elements: reconstructElements(results),
	}, nil
}

// formatContext enumerates results 1..N with source, type, and a 2-decimal
// similarity, each followed by the chunk text, joined with blank lines.
func formatContext(results []models.RetrievalResult) string {
	if len(results) == 0 {
		return EmptyContext
	}
	parts := []string{"RETRIEVED CONTEXT:\n"}
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("[%d] Source: %s | Type: %s | Relevance: %.2f\n%s\n",
			i+1,
			r.Metadata.Get(models.MetaSource, "unknown"),
			r.Metadata.Get(models.MetaType, "unknown"),
			r.Similarity,
			r.Text,
		))
	}
	return strings.Join(parts, "\n")
}

// reconstructElements re-expands selector hits into StructuralElements. The
// map key is the element id, else its name, else {element_type}_{ordinal}
// over the running count, which stays unique when id and name are absent.
func reconstructElements(results []models.RetrievalResult) map[string]models.StructuralElement {
	elements := make(map[string]models.StructuralElement)
	for _, r := range results {
		if !r.Metadata.IsSelector() {
			continue
		}
		el := models.ReconstructElement(r.Metadata)
		key := el.ElementID
		if key == "" {
			key = el.ElementName
		}
		if key == "" {
			key = fmt.Sprintf("%s_%d", el.ElementType, len(elements))
		}
		elements[key] = el
	}
	return elements
}

// AllStructuralElements returns the full selector inventory from the
// knowledge base via a broad fixed query.
func (pl *Pipeline) AllStructuralElements(ctx context.Context) (map[string]models.StructuralElement, error) {
	results, err := pl.index.Search(ctx, selectorInventoryQuery, selectorInventoryLimit)
	if err != nil {
		return nil, err
	}
	return reconstructElements(results), nil
}

// ValidateGrounding reports whether any result's source name appears as a
// case-insensitive substring of generatedText. This is a cheap provenance
// heuristic, not a semantic check: it proves a source was named, not that the
// text is faithful to it. False when contextResults is empty.
func (pl *Pipeline) ValidateGrounding(generatedText string, contextResults []models.RetrievalResult) bool {
	if len(contextResults) == 0 {
		return false
	}
	lowered := strings.ToLower(generatedText)
	for _, r := range contextResults {
		src := r.Metadata.Get(models.MetaSource, "")
		if src != "" && strings.Contains(lowered, strings.ToLower(src)) {
			return true
		}
	}
	return false
}

// Stats reports the knowledge base provenance summary.
func (pl *Pipeline) Stats() *models.KnowledgeBaseStats {
	stats := pl.index.Stats()
	sources := pl.index.AllSources()
	return &models.KnowledgeBaseStats{
		TotalChunks:   stats.TotalChunks,
		UniqueSources: len(sources),
		Sources:       sources,
	}
}
