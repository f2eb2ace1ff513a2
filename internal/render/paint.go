package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/flowmark/flowmark/internal/ui"
)

// Painter renders overlay payloads into terminal cells and splices
// them over the base content's placeholder runs. It is the terminal
// host's half of the overlay contract; a GUI host would keep the
// descriptors and paint real widgets instead.
type Painter struct {
	styles    *ui.Styles
	codeTheme string
	width     int
	images    *ui.ImageCache
}

// NewPainter creates a painter for the given container width.
func NewPainter(width int, styles *ui.Styles, codeTheme string, images *ui.ImageCache) *Painter {
	if styles == nil {
		styles = ui.DefaultStyles()
	}
	if images == nil {
		images = ui.NewImageCache()
	}
	return &Painter{styles: styles, codeTheme: codeTheme, width: width, images: images}
}

// Paint flattens a composition into final terminal lines: every
// placeholder run is replaced by its painted overlay. notify fires
// when an asynchronously loading image changes state and a repaint
// would show more.
func (p *Painter) Paint(comp Composition, shimmer bool, notify func()) string {
	lines := strings.Split(comp.Base, "\n")

	var pos Positioner
	placed := pos.Reconcile(comp.Overlays, LayoutResult{Lines: lines, LineHeight: 1, Width: p.width})

	for _, pl := range placed {
		ovl := p.PaintOverlay(pl.OverlayDescriptor, shimmer && pl.IsLast, notify)
		lines = spliceRun(lines, pl.YOffset, pl.MeasuredHeight, ovl)
	}
	return strings.Join(lines, "\n")
}

// PaintOverlay renders one overlay payload as terminal lines.
func (p *Painter) PaintOverlay(desc OverlayDescriptor, shimmer bool, notify func()) []string {
	border := p.styles.OverlayBorder
	if shimmer {
		border = p.styles.OverlayShimmer
	}

	switch desc.Kind {
	case OverlayCode:
		code := ui.NewHighlighter(desc.Language, p.codeTheme).Highlight(desc.Code)
		return p.frame(border, desc.Language, code)

	case OverlayMermaid:
		return p.frame(border, "mermaid", desc.Code)

	case OverlayImage, OverlayImageRow:
		cells := make([]string, 0, len(desc.Images))
		for _, ref := range desc.Images {
			_, state := p.images.State(ref.URL, notify)
			cells = append(cells, ui.ImageFallback(p.styles, state, ref.Alt, ref.URL))
		}
		return p.frame(border, "", strings.Join(cells, "   "))
	}
	return nil
}

// frame draws a bordered box around content, with an optional label on
// the top border.
func (p *Painter) frame(border lipgloss.Style, label, content string) []string {
	inner := p.width - 4
	if inner < 10 {
		inner = 10
	}

	box := border.
		Border(lipgloss.RoundedBorder()).
		Width(inner).
		Render(content)
	lines := strings.Split(box, "\n")

	if label != "" && len(lines) > 0 {
		lines[0] = injectLabel(lines[0], p.styles.Muted.Render(" "+label+" "))
	}
	return lines
}

// injectLabel overwrites part of a top border with a label, keeping
// the border's corners intact.
func injectLabel(top, label string) string {
	runes := []rune(top)
	if len(runes) < 4 {
		return top
	}
	// Keep corner plus one border cell before the label.
	return string(runes[:2]) + label + string(runes[2:])
}

// spliceRun replaces the placeholder run at [y, y+run) with the
// painted overlay lines, padding or trimming the overlay to fit so
// content after the run keeps its measured offset.
func spliceRun(lines []string, y, run int, overlay []string) []string {
	if y < 0 || y >= len(lines) {
		return lines
	}
	if y+run > len(lines) {
		run = len(lines) - y
	}

	fitted := make([]string, run)
	for i := 0; i < run; i++ {
		if i < len(overlay) {
			fitted[i] = overlay[i]
		} else {
			fitted[i] = ""
		}
	}

	out := make([]string, 0, len(lines))
	out = append(out, lines[:y]...)
	out = append(out, fitted...)
	out = append(out, lines[y+run:]...)
	return out
}
