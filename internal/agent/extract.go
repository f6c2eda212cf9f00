package agent

import (
	"regexp"
	"strings"
)

var (
	fencedJSONRe   = regexp.MustCompile("```(?:json)?\\s*(\\[[\\s\\S]*?\\]|\\{[\\s\\S]*?\\})\\s*```")
	rawJSONRe      = regexp.MustCompile(`(\[[\s\S]*\]|\{[\s\S]*\})`)
	fencedPythonRe = regexp.MustCompile("(?s)```python\\s*(.*?)\\s*```")
	fencedAnyRe    = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	openFenceRe    = regexp.MustCompile("^```(?:python)?\\s*")
	closeFenceRe   = regexp.MustCompile("\\s*```$")
)

// ExtractJSON pulls a JSON array or object out of completion text, preferring
// fenced code blocks. Returns the input unchanged if nothing JSON-like is found.
func ExtractJSON(text string) string {
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := rawJSONRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// ExtractCode pulls source code out of completion text, preferring a
// python-tagged fence, then any fence, then stripping stray fence markers.
func ExtractCode(text string) string {
	cleaned := strings.TrimSpace(text)
	if m := fencedPythonRe.FindStringSubmatch(cleaned); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := fencedAnyRe.FindStringSubmatch(cleaned); m != nil {
		return strings.TrimSpace(m[1])
	}
	cleaned = openFenceRe.ReplaceAllString(cleaned, "")
	cleaned = closeFenceRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
