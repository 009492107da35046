package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"punk_dash/internal/gfx"
	"punk_dash/internal/screen"
)

type boxSize struct{ w, h int }

// boxes caches the plain text of rounded boxes by size.
type boxes map[boxSize][]string

func (b boxes) lines(w, h int) []string {
	if w < 2 || h < 2 {
		return nil
	}
	key := boxSize{w, h}
	if l, ok := b[key]; ok {
		return l
	}
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(w - 2).
		Height(h - 2).
		Render("")
	l := strings.Split(ansi.Strip(s), "\n")
	b[key] = l
	return l
}

// draw blanks the region, outlines it and writes title into the top border.
func (b boxes) draw(r screen.Region, title string, border, text gfx.Color) {
	r.Fill()
	for y, line := range b.lines(r.W, r.H) {
		r.Put(0, y, line, border)
	}
	if title != "" && r.W > 6 {
		r.Put(2, 0, " "+ansi.Truncate(title, r.W-6, "…")+" ", text)
	}
}
