package agent

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fenced json block",
			in:   "Here you go:\n```json\n[{\"a\": 1}]\n```\nDone.",
			want: `[{"a": 1}]`,
		},
		{
			name: "fence without language",
			in:   "```\n{\"b\": 2}\n```",
			want: `{"b": 2}`,
		},
		{
			name: "raw array",
			in:   "Sure: [1, 2, 3] is the answer",
			want: "[1, 2, 3]",
		},
		{
			name: "no json",
			in:   "nothing here",
			want: "nothing here",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "python fence",
			in:   "```python\nimport pytest\n```",
			want: "import pytest",
		},
		{
			name: "plain fence",
			in:   "```\nx = 1\n```",
			want: "x = 1",
		},
		{
			name: "stray opening fence",
			in:   "```python\nimport time",
			want: "import time",
		},
		{
			name: "no fences",
			in:   "  import os  ",
			want: "import os",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCode(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
