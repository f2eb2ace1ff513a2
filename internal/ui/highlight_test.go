package ui

import (
	"strings"
	"testing"
)

func TestNewHighlighterFallsBack(t *testing.T) {
	h := NewHighlighter("no-such-language", "monokai")
	if h == nil {
		t.Fatal("highlighter must always be usable")
	}
	if got := h.Highlight("plain text"); !strings.Contains(got, "plain text") {
		t.Errorf("fallback lost content: %q", got)
	}
}

func TestHighlighterCached(t *testing.T) {
	a := NewHighlighter("go", "monokai")
	b := NewHighlighter("go", "monokai")
	if a != b {
		t.Error("expected cached highlighter for repeated language")
	}
	c := NewHighlighter("go", "dracula")
	if a == c {
		t.Error("different style must not share a highlighter")
	}
}

func TestHighlightKeepsCode(t *testing.T) {
	h := NewHighlighter("go", "monokai")
	out := h.Highlight("x := 1\ny := 2")
	for _, want := range []string{"x", "1", "y", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("highlighted output lost %q: %q", want, out)
		}
	}
}
