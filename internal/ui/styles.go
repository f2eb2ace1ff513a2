package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - consistent across all rendering surfaces
var (
	Green  = lipgloss.Color("10") // success, loaded resources
	Red    = lipgloss.Color("9")  // error, failed resources
	Grey   = lipgloss.Color("8")  // muted text, placeholders
	Blue   = lipgloss.Color("4")  // headings, borders
	Cyan   = lipgloss.Color("6")  // links
	White  = lipgloss.Color("15") // heading text
	CodeBg = lipgloss.Color("0")  // inline code background
)

// Status indicators
const (
	ImageIcon   = "🖼"
	FailIcon    = "✗"
	LoadingIcon = "…"
)

// Styles returns styled text helpers bound to a renderer
type Styles struct {
	renderer *lipgloss.Renderer

	// Block styles
	Heading     lipgloss.Style
	Quote       lipgloss.Style
	QuoteBar    lipgloss.Style
	ListBullet  lipgloss.Style
	Rule        lipgloss.Style
	Provisional lipgloss.Style

	// Inline span styles
	Bold       lipgloss.Style
	Italic     lipgloss.Style
	InlineCode lipgloss.Style
	Strike     lipgloss.Style
	Link       lipgloss.Style

	// Table styles
	TableHeader lipgloss.Style
	TableBorder lipgloss.Style

	// Overlay chrome
	OverlayBorder  lipgloss.Style
	OverlayShimmer lipgloss.Style
	Muted          lipgloss.Style
	Error          lipgloss.Style
}

// NewStyles creates a new Styles instance for the given output
func NewStyles(output *os.File) *Styles {
	r := lipgloss.NewRenderer(output)

	return &Styles{
		renderer: r,

		Heading: r.NewStyle().
			Bold(true).
			Foreground(White),

		Quote: r.NewStyle().
			Italic(true).
			Foreground(Grey),

		QuoteBar: r.NewStyle().
			Foreground(Blue),

		ListBullet: r.NewStyle().
			Foreground(Blue),

		Rule: r.NewStyle().
			Foreground(Grey),

		Provisional: r.NewStyle().
			Foreground(Grey),

		Bold: r.NewStyle().
			Bold(true),

		Italic: r.NewStyle().
			Italic(true),

		InlineCode: r.NewStyle().
			Background(CodeBg).
			Foreground(Green),

		Strike: r.NewStyle().
			Strikethrough(true),

		Link: r.NewStyle().
			Foreground(Cyan).
			Underline(true),

		TableHeader: r.NewStyle().
			Bold(true).
			Foreground(White),

		TableBorder: r.NewStyle().
			Foreground(Blue),

		OverlayBorder: r.NewStyle().
			Foreground(Blue),

		OverlayShimmer: r.NewStyle().
			Foreground(Cyan),

		Muted: r.NewStyle().
			Foreground(Grey),

		Error: r.NewStyle().
			Foreground(Red),
	}
}

// DefaultStyles returns styles for stdout (default render output)
func DefaultStyles() *Styles {
	return NewStyles(os.Stdout)
}

// Truncate shortens a string to maxLen with ellipsis
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
