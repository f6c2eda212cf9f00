package models

// StructuralElement describes one interactive markup node with synthesized
// locators. CSSSelector and XPath are always non-empty and deterministic for
// a given markup tree. Absent optional attributes are empty strings, never
// omitted, because the index backend requires a uniform scalar metadata shape.
type StructuralElement struct {
	ElementType string            `json:"element_type"`
	ElementID   string            `json:"element_id"`
	ElementName string            `json:"element_name"`
	ClassList   string            `json:"element_class"`
	InputType   string            `json:"input_type"`
	CSSSelector string            `json:"css_selector"`
	XPath       string            `json:"xpath"`
	TextContent string            `json:"text_content"`
	Placeholder string            `json:"placeholder"`
	Value       string            `json:"value"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}
