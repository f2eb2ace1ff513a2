package render

import (
	"strings"
	"testing"

	"github.com/flowmark/flowmark/internal/markdown"
)

func layoutFor(comp Composition) LayoutResult {
	return LayoutResult{
		Lines:      strings.Split(comp.Base, "\n"),
		LineHeight: 1,
		Width:      80,
	}
}

func TestReconcilePlacesOverlays(t *testing.T) {
	comp := compose(t, "intro\n\n```go\nx := 1\ny := 2\n```\n\noutro", "")
	layout := layoutFor(comp)

	var p Positioner
	placed := p.Reconcile(comp.Overlays, layout)
	if len(placed) != 1 {
		t.Fatalf("placed = %+v", placed)
	}

	markerIdx := -1
	for i, line := range layout.Lines {
		if _, ok := ParseMarker(line); ok {
			markerIdx = i
		}
	}
	if placed[0].YOffset != markerIdx {
		t.Errorf("yOffset = %d, marker at line %d", placed[0].YOffset, markerIdx)
	}
	if placed[0].MeasuredHeight < placed[0].EstimatedHeight {
		t.Errorf("measured %d < estimated %d", placed[0].MeasuredHeight, placed[0].EstimatedHeight)
	}
}

func TestReconcileScalesByLineHeight(t *testing.T) {
	comp := compose(t, "```go\nx\n```", "")
	layout := layoutFor(comp)
	layout.LineHeight = 18

	var p Positioner
	placed := p.Reconcile(comp.Overlays, layout)
	if len(placed) != 1 {
		t.Fatalf("placed = %+v", placed)
	}
	if placed[0].YOffset%18 != 0 || placed[0].MeasuredHeight%18 != 0 {
		t.Errorf("offsets not in host units: %+v", placed[0])
	}
}

func TestReconcileOmitsUnlaidMarkers(t *testing.T) {
	comp := compose(t, "para\n\n```go\nx\n```", "")

	// The host has only laid out the first paragraph so far.
	layout := LayoutResult{Lines: []string{"para"}, LineHeight: 1, Width: 80}

	var p Positioner
	placed := p.Reconcile(comp.Overlays, layout)
	if len(placed) != 0 {
		t.Fatalf("expected no placements before layout, got %+v", placed)
	}

	// Next pass with full layout picks it up.
	placed = p.Reconcile(comp.Overlays, layoutFor(comp))
	if len(placed) != 1 {
		t.Fatalf("retry did not place overlay: %+v", placed)
	}
}

func TestReconcileGatedByContentHash(t *testing.T) {
	comp := compose(t, "a\n\n```go\nx\n```", "")
	layout := layoutFor(comp)

	var p Positioner
	first := p.Reconcile(comp.Overlays, layout)
	second := p.Reconcile(comp.Overlays, layout)
	if len(first) == 0 || len(second) == 0 {
		t.Fatal("expected placements")
	}
	if &first[0] != &second[0] {
		t.Error("identical layout must be a no-op returning the cached result")
	}

	p.Invalidate()
	third := p.Reconcile(comp.Overlays, layout)
	if len(third) != len(first) {
		t.Errorf("invalidate lost placements: %+v", third)
	}
}

func TestReconcileRecomputesOnWidthChange(t *testing.T) {
	comp := compose(t, "a\n\n```go\nx\n```", "")
	layout := layoutFor(comp)

	var p Positioner
	first := p.Reconcile(comp.Overlays, layout)

	narrow := layout
	narrow.Width = 40
	second := p.Reconcile(comp.Overlays, narrow)
	if len(second) != len(first) {
		t.Fatalf("width change dropped placements: %+v", second)
	}
	if len(second) > 0 && len(first) > 0 && &first[0] == &second[0] {
		t.Error("width change must trigger recomputation")
	}
}

func TestMeasureRunStopsAtContent(t *testing.T) {
	blocks := markdown.ParseAll("```go\na\nb\n```\n\nafter")
	c := NewComposer(80, nil)
	comp := c.Compose(blocks, "")

	var p Positioner
	placed := p.Reconcile(comp.Overlays, layoutFor(comp))
	if len(placed) != 1 {
		t.Fatalf("placed = %+v", placed)
	}
	lines := strings.Split(comp.Base, "\n")
	afterIdx := -1
	for i, l := range lines {
		if strings.Contains(l, "after") {
			afterIdx = i
		}
	}
	if got := placed[0].YOffset + placed[0].MeasuredHeight; got > afterIdx {
		t.Errorf("measured run %d overlaps following content at line %d", got, afterIdx)
	}
}
