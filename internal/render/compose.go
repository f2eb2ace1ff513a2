// Package render turns a parsed block sequence plus the trailing
// streaming buffer into a paintable composition: a flowed base content
// string with reserved placeholder runs, and a side list of overlay
// descriptors for the non-text blocks composited over it.
package render

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/flowmark/flowmark/internal/markdown"
	"github.com/flowmark/flowmark/internal/ui"
)

// OverlayKind discriminates overlay payloads.
type OverlayKind int

const (
	OverlayCode OverlayKind = iota
	OverlayImage
	OverlayImageRow
	OverlayMermaid
)

func (k OverlayKind) String() string {
	switch k {
	case OverlayCode:
		return "code"
	case OverlayImage:
		return "image"
	case OverlayImageRow:
		return "imagerow"
	case OverlayMermaid:
		return "mermaid"
	}
	return "unknown"
}

// OverlayDescriptor describes one non-text block whose widget is
// painted over the base content. Descriptors are rebuilt wholesale on
// every compose pass and never mutated in place.
type OverlayDescriptor struct {
	ID    uint64
	Kind  OverlayKind
	Index int // block index in document order

	// IsLast marks the overlay belonging to the final block; hosts use
	// it for the actively-streaming treatment (shimmer).
	IsLast bool

	// EstimatedHeight is in base content lines. Code overlays grow
	// while streaming, so this is recomputed on every pass.
	EstimatedHeight int

	// Payload
	Code     string
	Language string
	Images   []markdown.ImageRef
}

// Composition is the paintable output of one compose pass.
type Composition struct {
	Base     string
	Overlays []OverlayDescriptor
}

// Fixed chrome heights in lines.
const (
	codeChrome     = 2 // top and bottom border of the code frame
	imageEstHeight = 9 // reserved rows for an image cell before measurement
)

// Composer flows blocks into base content for a given container width.
type Composer struct {
	width  int
	styles *ui.Styles
}

// NewComposer returns a composer for the given container width. Width
// is in cells; values below 20 are clamped to keep wrapping sane.
func NewComposer(width int, styles *ui.Styles) *Composer {
	if width < 20 {
		width = 20
	}
	if styles == nil {
		styles = ui.DefaultStyles()
	}
	return &Composer{width: width, styles: styles}
}

// Width returns the container width the composer flows to.
func (c *Composer) Width() int { return c.width }

// Compose walks blocks in document order, appending text-bearing
// blocks to the base content and reserving placeholder runs for the
// rest. The trailing buffer is appended unstyled as provisional text.
func (c *Composer) Compose(blocks []markdown.Block, buffer string) Composition {
	var base strings.Builder
	var overlays []OverlayDescriptor

	for i, b := range blocks {
		if i > 0 {
			base.WriteString("\n\n")
		}
		switch b.Kind {
		case markdown.KindParagraph:
			base.WriteString(wordwrap.String(c.renderSpans(b.Text), c.width))

		case markdown.KindHeading:
			base.WriteString(c.renderHeading(b))

		case markdown.KindList:
			base.WriteString(c.renderList(b))

		case markdown.KindBlockQuote:
			base.WriteString(c.renderQuote(b))

		case markdown.KindTable:
			base.WriteString(c.renderTable(b))

		case markdown.KindThematicBreak:
			base.WriteString(c.styles.Rule.Render(strings.Repeat("─", c.width)))

		case markdown.KindCodeBlock, markdown.KindMermaid, markdown.KindImage, markdown.KindImageRow:
			desc := c.describeOverlay(b, i, i == len(blocks)-1)
			overlays = append(overlays, desc)
			base.WriteString(placeholderRun(desc.ID, desc.EstimatedHeight))
		}
	}

	if buffer != "" {
		if base.Len() > 0 {
			base.WriteString("\n\n")
		}
		base.WriteString(c.styles.Provisional.Render(wordwrap.String(buffer, c.width)))
	}

	return Composition{Base: base.String(), Overlays: overlays}
}

func (c *Composer) describeOverlay(b markdown.Block, index int, isLast bool) OverlayDescriptor {
	desc := OverlayDescriptor{
		ID:     b.ID,
		Index:  index,
		IsLast: isLast,
	}
	switch b.Kind {
	case markdown.KindCodeBlock:
		desc.Kind = OverlayCode
		desc.Code = b.Code
		desc.Language = b.Language
		desc.EstimatedHeight = lineCount(b.Code) + codeChrome
	case markdown.KindMermaid:
		desc.Kind = OverlayMermaid
		desc.Code = b.Code
		desc.EstimatedHeight = lineCount(b.Code) + codeChrome
	case markdown.KindImage:
		desc.Kind = OverlayImage
		desc.Images = b.Images
		desc.EstimatedHeight = imageEstHeight
	case markdown.KindImageRow:
		desc.Kind = OverlayImageRow
		desc.Images = b.Images
		desc.EstimatedHeight = imageEstHeight
	}
	return desc
}

func lineCount(code string) int {
	if code == "" {
		return 1
	}
	return strings.Count(code, "\n") + 1
}

// renderSpans tokenizes raw block text and applies inline styling.
func (c *Composer) renderSpans(text string) string {
	var out strings.Builder
	for _, sp := range markdown.Tokenize(text) {
		switch {
		case sp.Code:
			out.WriteString(c.styles.InlineCode.Render(sp.Text))
		case sp.Bold && sp.Italic:
			out.WriteString(c.styles.Bold.Italic(true).Render(sp.Text))
		case sp.Bold:
			out.WriteString(c.styles.Bold.Render(sp.Text))
		case sp.Italic:
			out.WriteString(c.styles.Italic.Render(sp.Text))
		case sp.Strike:
			out.WriteString(c.styles.Strike.Render(sp.Text))
		case sp.Link != "":
			out.WriteString(c.styles.Link.Render(sp.Text))
		default:
			out.WriteString(sp.Text)
		}
	}
	return out.String()
}

func (c *Composer) renderHeading(b markdown.Block) string {
	text := c.styles.Heading.Render(spanText(b.Text))
	if b.Level <= 2 {
		return text + "\n" + c.styles.Rule.Render(strings.Repeat("─", min(c.width, headingRuleWidth(b.Text))))
	}
	return text
}

func headingRuleWidth(text string) int {
	w := runewidth.StringWidth(text)
	if w < 4 {
		return 4
	}
	return w
}

func (c *Composer) renderList(b markdown.Block) string {
	var out strings.Builder
	for i, item := range b.Items {
		if i > 0 {
			out.WriteString("\n")
		}
		if b.Ordered {
			out.WriteString(c.styles.ListBullet.Render(strconv.Itoa(i+1) + "."))
			out.WriteString(" ")
		} else {
			out.WriteString(c.styles.ListBullet.Render("•"))
			out.WriteString(" ")
		}
		out.WriteString(c.renderSpans(item))
	}
	return out.String()
}

func (c *Composer) renderQuote(b markdown.Block) string {
	var out strings.Builder
	for i, line := range strings.Split(b.Text, "\n") {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(c.styles.QuoteBar.Render("│ "))
		out.WriteString(c.styles.Quote.Render(c.renderSpans(line)))
	}
	return out.String()
}

// renderTable lays the table out as a runewidth-measured monospace grid.
func (c *Composer) renderTable(b markdown.Block) string {
	widths := make([]int, len(b.Header))
	for j, h := range b.Header {
		widths[j] = runewidth.StringWidth(h)
	}
	for _, row := range b.Rows {
		for j, cell := range row {
			if j < len(widths) && runewidth.StringWidth(cell) > widths[j] {
				widths[j] = runewidth.StringWidth(cell)
			}
		}
	}

	align := func(j int) markdown.Alignment {
		if j < len(b.Alignments) {
			return b.Alignments[j]
		}
		return markdown.AlignDefault
	}

	var out strings.Builder
	out.WriteString(c.tableRow(b.Header, widths, align, true))
	out.WriteString("\n")
	out.WriteString(c.styles.TableBorder.Render(tableRule(widths)))
	for _, row := range b.Rows {
		out.WriteString("\n")
		out.WriteString(c.tableRow(row, widths, align, false))
	}
	return out.String()
}

func (c *Composer) tableRow(cells []string, widths []int, align func(int) markdown.Alignment, header bool) string {
	var out strings.Builder
	for j, w := range widths {
		cell := ""
		if j < len(cells) {
			cell = cells[j]
		}
		padded := padCell(cell, w, align(j))
		if header {
			padded = c.styles.TableHeader.Render(padded)
		} else {
			padded = c.renderSpans(padded)
		}
		if j > 0 {
			out.WriteString("  ")
		}
		out.WriteString(padded)
	}
	return out.String()
}

func padCell(cell string, width int, a markdown.Alignment) string {
	gap := width - runewidth.StringWidth(cell)
	if gap <= 0 {
		return cell
	}
	switch a {
	case markdown.AlignRight:
		return strings.Repeat(" ", gap) + cell
	case markdown.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", gap-left)
	default:
		return cell + strings.Repeat(" ", gap)
	}
}

func tableRule(widths []int) string {
	parts := make([]string, len(widths))
	for j, w := range widths {
		parts[j] = strings.Repeat("─", w)
	}
	return strings.Join(parts, "──")
}

// spanText flattens tokenized text to its plain content, dropping the
// delimiter markup but not applying inline styles. Used where an outer
// style (heading) owns the whole line.
func spanText(text string) string {
	var out strings.Builder
	for _, sp := range markdown.Tokenize(text) {
		out.WriteString(sp.Text)
	}
	return out.String()
}

// markerSentinel brackets placeholder markers. The rune is an invisible
// separator, so a host that paints base content directly shows a blank
// run where the overlay will land.
const markerSentinel = "⁣"

// Marker returns the unique placeholder tag for an overlay ID.
func Marker(id uint64) string {
	return markerSentinel + "ovl:" + strconv.FormatUint(id, 16) + markerSentinel
}

// ParseMarker recognizes a placeholder tag produced by Marker.
func ParseMarker(line string) (uint64, bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, markerSentinel+"ovl:") || !strings.HasSuffix(s, markerSentinel) {
		return 0, false
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, markerSentinel+"ovl:"), markerSentinel)
	id, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// placeholderRun reserves height lines in the base content, the first
// carrying the marker the positioner later locates.
func placeholderRun(id uint64, height int) string {
	if height < 1 {
		height = 1
	}
	return Marker(id) + strings.Repeat("\n", height-1)
}
