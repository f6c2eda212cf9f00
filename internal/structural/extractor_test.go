package structural

import (
	"reflect"
	"strings"
	"testing"
)

const loginPage = `<html><body>
<form id="login-form" action="/login">
  <input id="user" name="username" type="text" placeholder="Username">
  <input name="password" type="password">
  <button class="btn btn-primary" type="submit">Sign in</button>
</form>
<a href="/forgot">Forgot password?</a>
</body></html>`

func TestExtract_KindMajorOrder(t *testing.T) {
	elements, err := Extract(loginPage)
	if err != nil {
		t.Fatal(err)
	}
	var kinds []string
	for _, el := range elements {
		kinds = append(kinds, el.ElementType)
	}
	want := []string{"input", "input", "button", "a", "form"}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("element kinds = %v, want %v", kinds, want)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	first, err := Extract(loginPage)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Extract(loginPage)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two extractions of identical markup differ")
	}
	for i, el := range first {
		if el.CSSSelector == "" {
			t.Errorf("element %d has empty css selector", i)
		}
		if el.XPath == "" {
			t.Errorf("element %d has empty xpath", i)
		}
	}
}

func TestBuildCSSSelector_Precedence(t *testing.T) {
	// id wins over everything else
	elements, err := Extract(`<html><body><input id="x" name="y" type="text"></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if elements[0].CSSSelector != "#x" {
		t.Errorf("css selector = %s, want #x", elements[0].CSSSelector)
	}
	if elements[0].XPath != "//*[@id='x']" {
		t.Errorf("xpath = %s, want //*[@id='x']", elements[0].XPath)
	}

	// name wins over type
	elements, err = Extract(`<html><body><input name="y" type="text"></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if elements[0].CSSSelector != "input[name='y']" {
		t.Errorf("css selector = %s, want input[name='y']", elements[0].CSSSelector)
	}
	if elements[0].XPath != "//input[@name='y']" {
		t.Errorf("xpath = %s, want //input[@name='y']", elements[0].XPath)
	}

	// type wins over class
	elements, err = Extract(`<html><body><input type="text" class="wide"></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if elements[0].CSSSelector != "input[type='text']" {
		t.Errorf("css selector = %s, want input[type='text']", elements[0].CSSSelector)
	}

	// class list dot-joined in original order
	elements, err = Extract(`<html><body><button class="btn btn-primary">Go</button></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if elements[0].CSSSelector != "button.btn.btn-primary" {
		t.Errorf("css selector = %s, want button.btn.btn-primary", elements[0].CSSSelector)
	}

	// bare kind as last resort
	elements, err = Extract(`<html><body><textarea></textarea></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if elements[0].CSSSelector != "textarea" {
		t.Errorf("css selector = %s, want textarea", elements[0].CSSSelector)
	}
}

func TestBuildXPath_SiblingIndexing(t *testing.T) {
	markup := `<html><body><form><input type="a"><input type="b"><input type="c"></form></body></html>`
	elements, err := Extract(markup)
	if err != nil {
		t.Fatal(err)
	}
	if len(elements) < 3 {
		t.Fatalf("expected 3 inputs, got %d elements", len(elements))
	}
	if !strings.HasSuffix(elements[1].XPath, "input[2]") {
		t.Errorf("second sibling xpath = %s, want suffix input[2]", elements[1].XPath)
	}
	if !strings.HasSuffix(elements[0].XPath, "input[1]") {
		t.Errorf("first sibling xpath = %s, want suffix input[1]", elements[0].XPath)
	}
	// singleton tags carry no index
	if strings.Contains(elements[0].XPath, "form[") {
		t.Errorf("singleton form should not be indexed: %s", elements[0].XPath)
	}
	if !strings.HasPrefix(elements[0].XPath, "//") {
		t.Errorf("xpath should be //-prefixed: %s", elements[0].XPath)
	}
}

func TestExtract_MissingAttributesAreEmptyStrings(t *testing.T) {
	elements, err := Extract(`<html><body><a href="/x">Link</a></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	el := elements[0]
	if el.ElementID != "" || el.ElementName != "" || el.Placeholder != "" || el.Value != "" {
		t.Errorf("absent attributes should be empty strings: %+v", el)
	}
	if el.TextContent != "Link" {
		t.Errorf("text content = %q, want Link", el.TextContent)
	}
	if el.Attributes["href"] != "/x" {
		t.Errorf("attribute map should carry href, got %v", el.Attributes)
	}
}

func TestExtract_TextContentTruncated(t *testing.T) {
	long := strings.Repeat("x", 300)
	elements, err := Extract(`<html><body><button>` + long + `</button></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(elements[0].TextContent) != 100 {
		t.Errorf("text content length = %d, want 100", len(elements[0].TextContent))
	}
}
