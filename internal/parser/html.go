package parser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperjump/shiken/internal/models"
	"github.com/hyperjump/shiken/internal/structural"
	"github.com/hyperjump/shiken/pkg/utils"
)

// parseHTML extracts visible text (script and style subtrees excluded so they
// never pollute retrievable text), runs structural extraction, and keeps the
// raw markup for downstream reuse.
func parseHTML(markup string) (*models.ParsedDocument, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	elements, err := structural.Extract(markup)
	if err != nil {
		return nil, err
	}

	return &models.ParsedDocument{
		Text:      utils.CleanText(b.String()),
		Format:    models.FormatHTML,
		RawMarkup: markup,
		Elements:  elements,
	}, nil
}
