package chart

// braille is a dot grid packed two dots wide and four high per cell, the
// layout of the Unicode braille block starting at U+2800.
type braille struct {
	cols, rows int
	cells      [][]rune
}

var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func newBraille(cols, rows int) *braille {
	b := &braille{cols: cols, rows: rows, cells: make([][]rune, rows)}
	for i := range b.cells {
		b.cells[i] = make([]rune, cols)
	}
	return b
}

// dots returns the grid size in dots.
func (b *braille) dots() (w, h int) {
	return b.cols * 2, b.rows * 4
}

func (b *braille) set(x, y int) {
	if x < 0 || y < 0 || x >= b.cols*2 || y >= b.rows*4 {
		return
	}
	b.cells[y/4][x/2] |= brailleBits[y%4][x%2]
}

// line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (b *braille) line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		b.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// glyph returns the character for a cell, or "" when no dot is set.
func (b *braille) glyph(col, row int) string {
	bits := b.cells[row][col]
	if bits == 0 {
		return ""
	}
	return string(0x2800 + bits)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
