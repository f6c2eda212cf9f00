package models

import "strconv"

// ChunkTypeSelector tags chunks derived from structural markup elements.
// Text chunks carry their document's format tag instead.
const ChunkTypeSelector = "html_selector"

// Metadata keys shared by both chunk schemas.
const (
	MetaSource      = "source"
	MetaType        = "type"
	MetaChunkIndex  = "chunk_index"
	MetaTotalChunks = "total_chunks"
	MetaElementType = "element_type"
	MetaElementID   = "element_id"
	MetaElementName = "element_name"
	MetaCSSSelector = "css_selector"
	MetaXPath       = "xpath"
	MetaPlaceholder = "placeholder"
	MetaInputType   = "input_type"
)

// Metadata is the flat, scalar-only field mapping the index backend accepts.
// Nested values are rejected by the backend, so both chunk schemas flatten
// into this shape before storage.
type Metadata map[string]string

// Get returns the value for key, or fallback when absent.
func (m Metadata) Get(key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

// Chunk is the retrievable unit: text plus flattened scalar metadata.
type Chunk struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// TextChunkMeta is the typed schema for body-text chunks.
type TextChunkMeta struct {
	Source      string
	Type        string
	ChunkIndex  int
	TotalChunks int
}

// Flatten converts the text-chunk schema to scalar metadata.
func (t TextChunkMeta) Flatten() Metadata {
	return Metadata{
		MetaSource:      t.Source,
		MetaType:        t.Type,
		MetaChunkIndex:  strconv.Itoa(t.ChunkIndex),
		MetaTotalChunks: strconv.Itoa(t.TotalChunks),
	}
}

// SelectorChunkMeta is the typed schema for structural-element chunks. It
// deliberately carries only the enumerated locator fields; the element's full
// attribute map is not part of the flattened schema, so reconstruction is
// lossy for arbitrary attributes.
type SelectorChunkMeta struct {
	Source      string
	ElementType string
	ElementID   string
	ElementName string
	CSSSelector string
	XPath       string
	Placeholder string
	InputType   string
}

// Flatten converts the selector-chunk schema to scalar metadata.
func (s SelectorChunkMeta) Flatten() Metadata {
	return Metadata{
		MetaSource:      s.Source,
		MetaType:        ChunkTypeSelector,
		MetaElementType: s.ElementType,
		MetaElementID:   s.ElementID,
		MetaElementName: s.ElementName,
		MetaCSSSelector: s.CSSSelector,
		MetaXPath:       s.XPath,
		MetaPlaceholder: s.Placeholder,
		MetaInputType:   s.InputType,
	}
}

// IsSelector reports whether the metadata describes a structural-element chunk.
func (m Metadata) IsSelector() bool {
	return m[MetaType] == ChunkTypeSelector
}

// ReconstructElement re-expands flattened selector metadata into the
// StructuralElement shape. Fields not carried by the flattened schema
// (class list, value, attribute map) come back empty.
func ReconstructElement(m Metadata) StructuralElement {
	return StructuralElement{
		ElementType: m.Get(MetaElementType, ""),
		ElementID:   m.Get(MetaElementID, ""),
		ElementName: m.Get(MetaElementName, ""),
		CSSSelector: m.Get(MetaCSSSelector, ""),
		XPath:       m.Get(MetaXPath, ""),
		Placeholder: m.Get(MetaPlaceholder, ""),
		InputType:   m.Get(MetaInputType, ""),
	}
}
