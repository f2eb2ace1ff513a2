package markdown

import (
	"strings"
	"testing"
)

func TestDetectBoundary(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"unterminated paragraph", "Hello **world", 0},
		{"single paragraph no blank line", "just one line", 0},
		{"closed paragraph", "alpha\n\nbeta", 7},
		{"two closed paragraphs", "alpha\n\nbeta\n\ngamma", 13},
		{
			"unterminated fence falls back before opener",
			"# Title\n\nSome text\n\n```py\nprint(1)",
			20,
		},
		{
			"unterminated fence with no earlier blank line",
			"```js\ncode",
			0,
		},
		{
			"closed fence followed by blank line",
			"```js\ncode\nmore\n```\n\nx",
			21,
		},
		{
			"blank line inside fence is not a boundary",
			"```go\na\n\nb",
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectBoundary(tt.text)
			if got != tt.want {
				t.Errorf("DetectBoundary(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectBoundaryMonotonic(t *testing.T) {
	// A prefix ending in a blank line with no open fence stays stable
	// no matter what arrives afterwards.
	prefix := "alpha\n\nbeta\n\n"
	suffixes := []string{
		"",
		"gamma",
		"gamma\n\ndelta",
		"```go\nfunc main() {",
		"**unclosed",
		"\n\n\n",
	}

	for _, suffix := range suffixes {
		got := DetectBoundary(prefix + suffix)
		if got < len(prefix) {
			t.Errorf("DetectBoundary(prefix+%q) = %d, want >= %d", suffix, got, len(prefix))
		}
	}
}

func TestDetectBoundaryFenceSafety(t *testing.T) {
	// With an odd number of fence markers the boundary must never land
	// inside the span of the last, unterminated fence.
	texts := []string{
		"a\n\n```go\ncode\nstuff",
		"```py\nx",
		"one\n\n```\n\n",
		"done\n\n```rust\nfn main() {}\n",
	}

	for _, text := range texts {
		fenceOpen := strings.LastIndex(text, "```")
		got := DetectBoundary(text)
		if got > fenceOpen {
			t.Errorf("DetectBoundary(%q) = %d, inside unterminated fence opened at %d", text, got, fenceOpen)
		}
		if got < 0 || got > len(text) {
			t.Errorf("DetectBoundary(%q) = %d, out of range", text, got)
		}
	}
}
