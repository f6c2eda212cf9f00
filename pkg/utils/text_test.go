package utils

import "testing"

func TestCleanText(t *testing.T) {
	if got := CleanText("  hello \t\n world  "); got != "hello world" {
		t.Errorf("CleanText = %q, want %q", got, "hello world")
	}
	if got := CleanText("one\n\n\ntwo"); got != "one two" {
		t.Errorf("CleanText = %q, want %q", got, "one two")
	}
	if got := CleanText("   "); got != "" {
		t.Errorf("CleanText on whitespace = %q, want empty", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Errorf("Truncate = %q, want %q", got, "abc")
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("Truncate should not pad, got %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Errorf("Truncate with maxLen 0 should return input, got %q", got)
	}
	// rune-safe cut
	if got := Truncate("héllo", 2); got != "hé" {
		t.Errorf("Truncate = %q, want %q", got, "hé")
	}
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if v[0] != 0.6 || v[1] != 0.8 {
		t.Errorf("NormalizeL2 = %v, want [0.6 0.8]", v)
	}
	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("NormalizeL2 on zero vector should be unchanged, got %v", zero)
	}
}
