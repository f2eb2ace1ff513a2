package render

import (
	"strings"
	"testing"

	"github.com/flowmark/flowmark/internal/markdown"
)

func paintFixture(t *testing.T, text string) string {
	t.Helper()
	c := NewComposer(80, nil)
	comp := c.Compose(markdown.ParseAll(text), "")
	p := NewPainter(80, nil, "monokai", nil)
	return p.Paint(comp, false, nil)
}

func TestPaintReplacesPlaceholders(t *testing.T) {
	out := paintFixture(t, "intro\n\n```go\nx := 1\n```\n\noutro")

	if strings.Contains(out, "ovl:") {
		t.Errorf("marker survived painting:\n%s", out)
	}
	// The highlighter interleaves color codes between tokens, so check
	// for single tokens rather than the full source line.
	for _, want := range []string{"intro", ":=", "outro"} {
		if !strings.Contains(out, want) {
			t.Errorf("painted output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "intro") > strings.Index(out, ":=") {
		t.Error("overlay painted out of document order")
	}
}

func TestPaintMermaidFrameLabeled(t *testing.T) {
	out := paintFixture(t, "```mermaid\ngraph TD\n```")
	if !strings.Contains(out, "mermaid") {
		t.Errorf("mermaid frame unlabeled:\n%s", out)
	}
	if !strings.Contains(out, "graph TD") {
		t.Errorf("diagram source missing:\n%s", out)
	}
}

func TestPaintImageFallback(t *testing.T) {
	out := paintFixture(t, "![a chart](missing.png)")
	if !strings.Contains(out, "a chart") {
		t.Errorf("image fallback lacks alt text:\n%s", out)
	}
}

func TestPaintKeepsFollowingContentPosition(t *testing.T) {
	c := NewComposer(80, nil)
	comp := c.Compose(markdown.ParseAll("```go\na\n```\n\nafter"), "")
	baseLines := strings.Split(comp.Base, "\n")

	p := NewPainter(80, nil, "monokai", nil)
	out := strings.Split(p.Paint(comp, false, nil), "\n")
	if len(out) != len(baseLines) {
		t.Errorf("painting changed line count: %d -> %d", len(baseLines), len(out))
	}

	afterBase, afterOut := -1, -1
	for i := range baseLines {
		if strings.Contains(baseLines[i], "after") {
			afterBase = i
		}
	}
	for i := range out {
		if strings.Contains(out[i], "after") {
			afterOut = i
		}
	}
	if afterBase != afterOut {
		t.Errorf("following content moved: line %d -> %d", afterBase, afterOut)
	}
}

func TestSpliceRunBounds(t *testing.T) {
	lines := []string{"a", "b", "c"}
	out := spliceRun(lines, 5, 2, []string{"x"})
	if len(out) != 3 {
		t.Errorf("out-of-range splice must be a no-op, got %v", out)
	}

	out = spliceRun(lines, 2, 5, []string{"x", "y", "z"})
	if len(out) != 3 || out[2] != "x" {
		t.Errorf("overlong run must clamp: %v", out)
	}
}
