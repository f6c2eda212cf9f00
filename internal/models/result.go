package models

// RetrievalResult is a single search hit. Similarity is 1 - Distance under
// the cosine-distance convention; results are ordered by ascending distance.
type RetrievalResult struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Metadata   Metadata `json:"metadata"`
	Distance   float64  `json:"distance"`
	Similarity float64  `json:"similarity"`
}

// BuildResult reports a knowledge-base build.
type BuildResult struct {
	ChunkCount     int      `json:"num_chunks"`
	DocumentCount  int      `json:"num_documents"`
	ProcessedFiles []string `json:"processed_files"`
}

// QueryResult is the retrieval output for one query: a formatted context
// block, deduplicated sources, the raw hits, and any structural elements
// reconstructed from selector chunks among the hits.
type QueryResult struct {
	Context  string                       `json:"context"`
	Sources  []string                     `json:"sources"`
	Results  []RetrievalResult            `json:"results"`
	Elements map[string]StructuralElement `json:"html_selectors"`
}

// IndexStats describes the persisted collection.
type IndexStats struct {
	TotalChunks    int    `json:"total_chunks"`
	CollectionName string `json:"collection_name"`
	Location       string `json:"location"`
}

// KnowledgeBaseStats is the provenance summary reported to callers.
type KnowledgeBaseStats struct {
	TotalChunks   int      `json:"total_chunks"`
	UniqueSources int      `json:"unique_sources"`
	Sources       []string `json:"sources"`
}
