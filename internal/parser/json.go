package parser

import (
	"encoding/json"
	"fmt"

	"github.com/hyperjump/shiken/internal/models"
)

// parseJSON decodes content and re-serializes it with 2-space indentation so
// retrieval runs over pretty-printed key/value text instead of a one-line blob.
func parseJSON(content []byte) (*models.ParsedDocument, error) {
	var data interface{}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}
	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}
	return &models.ParsedDocument{
		Text:   string(pretty),
		Format: models.FormatJSON,
	}, nil
}
