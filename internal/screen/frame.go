// Package screen maps the pixel surfaces used by the effects onto terminal
// cells and renders the resulting frames with termenv.
package screen

import (
	"strings"

	"github.com/rivo/uniseg"

	"punk_dash/internal/gfx"
)

// blank is the glyph of a background cell. The trailing half of a
// double-width glyph holds the empty string.
const blank = " "

// Frame represents the in-memory terminal screen state.
type Frame struct {
	glyphs       [][]string    // Grapheme clusters to display
	colors       [][]gfx.Color // Colors for each position
	isBackground [][]bool      // Whether a position is background
	height       int
	width        int
}

// NewFrame creates a new Frame with the given dimensions.
func NewFrame(height, width int) *Frame {
	height, width = max(height, 0), max(width, 0)
	glyphs := make([][]string, height)
	colors := make([][]gfx.Color, height)
	isBackground := make([][]bool, height)
	for i := range glyphs {
		glyphs[i] = make([]string, width)
		colors[i] = make([]gfx.Color, width)
		isBackground[i] = make([]bool, width)
		for j := range glyphs[i] {
			glyphs[i][j] = blank
			isBackground[i][j] = true
		}
	}
	return &Frame{
		height:       height,
		width:        width,
		glyphs:       glyphs,
		colors:       colors,
		isBackground: isBackground,
	}
}

// Size returns the frame's width and height in cells.
func (f *Frame) Size() (width, height int) {
	return f.width, f.height
}

// Clear resets the frame to its default state.
func (f *Frame) Clear() {
	for i := range f.glyphs {
		for j := range f.glyphs[i] {
			f.glyphs[i][j] = blank
			f.isBackground[i][j] = true
			f.colors[i][j] = gfx.Color{}
		}
	}
}

// At returns the cell at row, col. lit is false for background cells.
func (f *Frame) At(row, col int) (glyph string, c gfx.Color, lit bool) {
	if !f.inside(row, col) {
		return blank, gfx.Color{}, false
	}
	return f.glyphs[row][col], f.colors[row][col], !f.isBackground[row][col]
}

// Set places a glyph of the given cell width (1 or 2). A double-width glyph
// that would not fit before the right edge is dropped.
func (f *Frame) Set(row, col int, glyph string, width int, c gfx.Color) {
	if !f.inside(row, col) || width < 1 || width > 2 {
		return
	}
	if width == 2 && col+1 >= f.width {
		return
	}
	f.erase(row, col)
	if width == 2 {
		f.erase(row, col+1)
		f.glyphs[row][col+1] = ""
		f.colors[row][col+1] = c
		f.isBackground[row][col+1] = false
	}
	f.glyphs[row][col] = glyph
	f.colors[row][col] = c
	f.isBackground[row][col] = false
}

// PutString writes s from row, col using at most maxWidth cells and returns
// the number of cells used.
func (f *Frame) PutString(row, col int, s string, c gfx.Color, maxWidth int) int {
	used := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		var w int
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
		if w == 0 {
			continue
		}
		if used+w > maxWidth {
			break
		}
		f.Set(row, col+used, cluster, min(w, 2), c)
		used += w
	}
	return used
}

// Row returns the text of one row, background cells as spaces.
func (f *Frame) Row(row int) string {
	if row < 0 || row >= f.height {
		return ""
	}
	var b strings.Builder
	for _, g := range f.glyphs[row] {
		b.WriteString(g)
	}
	return b.String()
}

// CopyFrom copies src into f, reallocating when the sizes differ.
func (f *Frame) CopyFrom(src *Frame) {
	if f.height != src.height || f.width != src.width {
		*f = *NewFrame(src.height, src.width)
	}
	for r := range src.glyphs {
		copy(f.glyphs[r], src.glyphs[r])
		copy(f.colors[r], src.colors[r])
		copy(f.isBackground[r], src.isBackground[r])
	}
}

func (f *Frame) inside(row, col int) bool {
	return row >= 0 && row < f.height && col >= 0 && col < f.width
}

// continuation reports whether the cell is the trailing half of a wide glyph.
func (f *Frame) continuation(row, col int) bool {
	return f.glyphs[row][col] == "" && !f.isBackground[row][col]
}

// wide reports whether the cell starts a double-width glyph.
func (f *Frame) wide(row, col int) bool {
	return col+1 < f.width && f.continuation(row, col+1)
}

// erase turns a cell into background, including the other half of a wide glyph.
func (f *Frame) erase(row, col int) {
	switch {
	case f.continuation(row, col):
		f.reset(row, col-1)
	case f.wide(row, col):
		f.reset(row, col+1)
	}
	f.reset(row, col)
}

func (f *Frame) reset(row, col int) {
	if col < 0 {
		return
	}
	f.glyphs[row][col] = blank
	f.colors[row][col] = gfx.Color{}
	f.isBackground[row][col] = true
}
