package screen

import "punk_dash/internal/gfx"

// Region is a rectangle of a frame. Coordinates passed to its methods are
// relative to its top-left corner and clipped to it.
type Region struct {
	Frame      *Frame
	X, Y, W, H int
}

// Empty reports whether the region has no frame or no area.
func (r Region) Empty() bool {
	return r.Frame == nil || r.W <= 0 || r.H <= 0
}

// Inset shrinks the region by n cells on every side.
func (r Region) Inset(n int) Region {
	return Region{Frame: r.Frame, X: r.X + n, Y: r.Y + n, W: max(r.W-2*n, 0), H: max(r.H-2*n, 0)}
}

// Put writes s at (x, y) and returns the cells used.
func (r Region) Put(x, y int, s string, c gfx.Color) int {
	if r.Empty() || y < 0 || y >= r.H || x < 0 || x >= r.W {
		return 0
	}
	return r.Frame.PutString(r.Y+y, r.X+x, s, c, r.W-x)
}

// Set places a single-width glyph at (x, y).
func (r Region) Set(x, y int, glyph string, c gfx.Color) {
	if r.Empty() || y < 0 || y >= r.H || x < 0 || x >= r.W {
		return
	}
	r.Frame.Set(r.Y+y, r.X+x, glyph, 1, c)
}

// Fill blanks the region so nothing below shows through.
func (r Region) Fill() {
	if r.Empty() {
		return
	}
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			r.Frame.Set(r.Y+y, r.X+x, blank, 1, gfx.Black)
		}
	}
}

// Paste copies src into the region from its top-left corner. Cells outside
// the region are clipped.
func (r Region) Paste(src *Frame) {
	if r.Empty() || src == nil {
		return
	}
	for row := 0; row < min(src.height, r.H); row++ {
		for col := 0; col < min(src.width, r.W); col++ {
			if src.continuation(row, col) {
				continue
			}
			width := 1
			if src.wide(row, col) {
				if col+1 >= r.W {
					r.Frame.Set(r.Y+row, r.X+col, blank, 1, src.colors[row][col])
					continue
				}
				width = 2
			}
			r.Frame.Set(r.Y+row, r.X+col, src.glyphs[row][col], width, src.colors[row][col])
		}
	}
}
