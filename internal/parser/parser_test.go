package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/shiken/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFile_UnsupportedExtension(t *testing.T) {
	p := NewParser()
	path := writeFile(t, "sheet.xlsx", "data")
	_, err := p.ParseFile(path)
	if !errors.Is(err, models.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseFile_Markdown(t *testing.T) {
	p := NewParser()
	path := writeFile(t, "guide.md", "# Title\n\nSome   body  text\n")
	doc, err := p.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != models.FormatMarkdown {
		t.Errorf("format = %s, want markdown", doc.Format)
	}
	if doc.Text != "# Title Some body text" {
		t.Errorf("text = %q", doc.Text)
	}
	if doc.RawMarkup != "" || doc.Elements != nil {
		t.Error("markdown should carry no markup or elements")
	}
}

func TestParseFile_TextFormatTag(t *testing.T) {
	p := NewParser()
	path := writeFile(t, "notes.txt", "plain notes")
	doc, err := p.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != models.FormatText {
		t.Errorf("format = %s, want text", doc.Format)
	}
}

func TestParseFile_JSONPrettyPrinted(t *testing.T) {
	p := NewParser()
	path := writeFile(t, "api.json", `{"endpoint":"/login","method":"POST"}`)
	doc, err := p.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != models.FormatJSON {
		t.Errorf("format = %s, want json", doc.Format)
	}
	if !strings.Contains(doc.Text, "\n  \"endpoint\": \"/login\"") {
		t.Errorf("json should be re-indented with 2 spaces, got %q", doc.Text)
	}
}

func TestParseFile_MalformedJSON(t *testing.T) {
	p := NewParser()
	path := writeFile(t, "broken.json", `{"unclosed":`)
	_, err := p.ParseFile(path)
	if !errors.Is(err, models.ErrMalformedInput) {
		t.Errorf("err = %v, want ErrMalformedInput", err)
	}
}

func TestParseFile_HTMLStripsScriptAndStyle(t *testing.T) {
	p := NewParser()
	markup := `<html><head><style>body{color:red}</style></head><body>
<script>var secret = "leaky";</script>
<p>Visible content</p>
<form><input id="email" name="email" type="email"></form>
</body></html>`
	path := writeFile(t, "page.html", markup)
	doc, err := p.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != models.FormatHTML {
		t.Errorf("format = %s, want html", doc.Format)
	}
	if strings.Contains(doc.Text, "secret") || strings.Contains(doc.Text, "color:red") {
		t.Errorf("script/style content leaked into text: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Visible content") {
		t.Errorf("visible text missing: %q", doc.Text)
	}
	if doc.RawMarkup != markup {
		t.Error("raw markup should be retained")
	}
	if len(doc.Elements) != 2 { // input + form
		t.Errorf("elements = %d, want 2", len(doc.Elements))
	}
	if doc.Elements[0].CSSSelector != "#email" {
		t.Errorf("first element selector = %s, want #email", doc.Elements[0].CSSSelector)
	}
}

func TestParseBytes_HTMExtension(t *testing.T) {
	p := NewParser()
	doc, err := p.ParseBytes([]byte("<html><body><p>hi</p></body></html>"), ".htm")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != models.FormatHTML {
		t.Errorf("format = %s, want html", doc.Format)
	}
}
