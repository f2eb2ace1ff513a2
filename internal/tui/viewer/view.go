package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  " + m.spinner.View() + " loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) statusLine() string {
	var status string
	if m.streaming {
		status = m.spinner.View() + " streaming"
	} else {
		status = m.styles.Muted.Render("done")
	}

	pct := fmt.Sprintf("%3.0f%%", m.viewport.ScrollPercent()*100)
	help := m.styles.Muted.Render("q quit · ↑/↓ scroll")

	left := " " + status
	right := help + "  " + m.styles.Muted.Render(pct) + " "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
