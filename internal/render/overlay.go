package render

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/x/ansi"
)

// LayoutResult is the host surface's post-layout geometry for the base
// content: the visual lines as laid out, and the height of one line in
// host units (1 for a terminal cell grid, pixels elsewhere).
type LayoutResult struct {
	Lines      []string
	LineHeight int
	Width      int
}

// PlacedOverlay is an overlay descriptor augmented with its measured
// on-screen placement.
type PlacedOverlay struct {
	OverlayDescriptor
	YOffset        int
	MeasuredHeight int
}

// Positioner locates placeholder markers in laid-out base content and
// emits position records for compositing. Recomputation is gated by a
// hash of (content, width) so unrelated host events (scroll, focus)
// are no-ops.
type Positioner struct {
	lastHash uint64
	placed   []PlacedOverlay
}

// Reconcile measures where each placeholder landed. Descriptors whose
// marker is not present in the layout are omitted, not failed; the
// caller retries on the next pass once the host has laid them out.
func (p *Positioner) Reconcile(overlays []OverlayDescriptor, layout LayoutResult) []PlacedOverlay {
	if layout.LineHeight < 1 {
		layout.LineHeight = 1
	}

	h := layoutHash(layout)
	if h == p.lastHash && p.placed != nil {
		return p.placed
	}

	markerAt := make(map[uint64]int, len(overlays))
	for i, line := range layout.Lines {
		if id, ok := ParseMarker(ansi.Strip(line)); ok {
			markerAt[id] = i
		}
	}

	placed := make([]PlacedOverlay, 0, len(overlays))
	for _, desc := range overlays {
		lineIdx, ok := markerAt[desc.ID]
		if !ok {
			continue
		}
		placed = append(placed, PlacedOverlay{
			OverlayDescriptor: desc,
			YOffset:           lineIdx * layout.LineHeight,
			MeasuredHeight:    measureRun(layout.Lines, lineIdx) * layout.LineHeight,
		})
	}

	p.lastHash = h
	p.placed = placed
	return placed
}

// Invalidate forces the next Reconcile to recompute even if the layout
// hash matches. Call after a full document reset.
func (p *Positioner) Invalidate() {
	p.lastHash = 0
	p.placed = nil
}

// measureRun counts the marker line plus the blank run reserved after
// it, which is the placeholder's actual laid-out extent.
func measureRun(lines []string, markerIdx int) int {
	height := 1
	for i := markerIdx + 1; i < len(lines); i++ {
		if strings.TrimSpace(ansi.Strip(lines[i])) != "" {
			break
		}
		height++
	}
	return height
}

func layoutHash(layout LayoutResult) uint64 {
	d := xxhash.New()
	for _, line := range layout.Lines {
		d.WriteString(line)
		d.WriteString("\n")
	}
	var wbuf [2]byte
	wbuf[0] = byte(layout.Width)
	wbuf[1] = byte(layout.Width >> 8)
	d.Write(wbuf[:])
	return d.Sum64()
}
