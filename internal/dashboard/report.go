package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"punk_dash/internal/gfx"
)

// Report renders the document's values and attribution as a styled block
// for one-shot output.
func Report(doc *Document, theme gfx.Theme) string {
	base := lipgloss.Color(theme.Base.Hex())
	head := lipgloss.Color(theme.Head().Hex())
	label := lipgloss.NewStyle().Foreground(base).Width(cardWidth)
	value := lipgloss.NewStyle().Foreground(head).Bold(true)

	parts := []string{lipgloss.NewStyle().Foreground(head).Bold(true).Render(headerTitle)}
	if ts := doc.LastUpdate(); ts != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(base).Faint(true).Render("last update "+ts))
	}
	parts = append(parts, "")
	for _, e := range doc.Elements() {
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, label.Render(e.Label), value.Render(e.Text)))
	}

	a := doc.Attribution()
	if len(a.Lines) > 0 {
		parts = append(parts, "")
		if a.Title != "" {
			parts = append(parts, lipgloss.NewStyle().Foreground(base).Underline(true).Render(a.Title))
		}
		for _, line := range a.Lines {
			style := lipgloss.NewStyle().Foreground(base)
			if line.Fallback {
				style = style.Foreground(lipgloss.Color(warningColor.Hex())).Bold(true)
			}
			parts = append(parts, style.Render(line.Text))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(base).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
