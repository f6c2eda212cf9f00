// Package structural extracts interactive elements from markup and
// synthesizes stable CSS selectors and XPath locators for them.
package structural

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperjump/shiken/internal/models"
	"github.com/hyperjump/shiken/pkg/utils"
)

// maxTextContent caps the visible text captured per element.
const maxTextContent = 100

// targetKinds is the fixed extraction priority order. Output is kind-major,
// document order within a kind, so re-parsing identical markup always yields
// the same element sequence.
var targetKinds = []string{"input", "button", "select", "textarea", "a", "form"}

// Extract parses markup and returns one StructuralElement per interactive
// node. Returns ErrMalformedInput when the markup cannot be parsed. Elements
// missing optional attributes get empty strings rather than omitted fields.
func Extract(markup string) ([]models.StructuralElement, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}

	var elements []models.StructuralElement
	for _, kind := range targetKinds {
		for _, node := range findAll(doc, kind) {
			elements = append(elements, describeElement(node, kind))
		}
	}
	return elements, nil
}

// findAll returns all element nodes with the given tag in document order.
func findAll(root *html.Node, tag string) []*html.Node {
	var nodes []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			nodes = append(nodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return nodes
}

func describeElement(node *html.Node, kind string) models.StructuralElement {
	attrs := make(map[string]string, len(node.Attr))
	for _, a := range node.Attr {
		attrs[a.Key] = a.Val
	}

	id := attrs["id"]
	name := attrs["name"]
	class := attrs["class"]
	inputType := attrs["type"]

	text := utils.Truncate(utils.CleanText(visibleText(node)), maxTextContent)

	return models.StructuralElement{
		ElementType: kind,
		ElementID:   id,
		ElementName: name,
		ClassList:   class,
		InputType:   inputType,
		CSSSelector: buildCSSSelector(kind, id, name, class, inputType),
		XPath:       buildXPath(node, id, name),
		TextContent: text,
		Placeholder: attrs["placeholder"],
		Value:       attrs["value"],
		Attributes:  attrs,
	}
}

// visibleText concatenates all descendant text nodes.
func visibleText(node *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return b.String()
}

// buildCSSSelector synthesizes a selector by precedence:
// id, then name, then type attribute, then class list, then bare tag.
func buildCSSSelector(kind, id, name, class, inputType string) string {
	switch {
	case id != "":
		return "#" + id
	case name != "":
		return fmt.Sprintf("%s[name='%s']", kind, name)
	case inputType != "":
		return fmt.Sprintf("%s[type='%s']", kind, inputType)
	case strings.TrimSpace(class) != "":
		return kind + "." + strings.Join(strings.Fields(class), ".")
	default:
		return kind
	}
}

// buildXPath synthesizes a locator by precedence: id, then name, then a
// structural path from the document root with 1-based sibling positions.
func buildXPath(node *html.Node, id, name string) string {
	if id != "" {
		return fmt.Sprintf("//*[@id='%s']", id)
	}
	if name != "" {
		return fmt.Sprintf("//%s[@name='%s']", node.Data, name)
	}

	var parts []string
	for n := node; n != nil && n.Type == html.ElementNode; n = n.Parent {
		parts = append([]string{pathStep(n)}, parts...)
	}
	return "//" + strings.Join(parts, "/")
}

// pathStep returns the tag name, with a 1-based position appended only when
// the node has true siblings of the same tag. Unindexed steps keep paths
// minimal for singleton tags.
func pathStep(n *html.Node) string {
	if n.Parent == nil {
		return n.Data
	}
	total := 0
	position := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != n.Data {
			continue
		}
		total++
		if c == n {
			position = total
		}
	}
	if total > 1 {
		return fmt.Sprintf("%s[%d]", n.Data, position)
	}
	return n.Data
}
