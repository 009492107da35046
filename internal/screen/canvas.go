package screen

import (
	"fmt"
	"math"

	"github.com/mattn/go-runewidth"

	"punk_dash/internal/gfx"
)

// fadeCutoff is the brightest channel value below which a fading cell is
// dropped back to the terminal background.
const fadeCutoff = 24

// Canvas is a pixel surface backed by a cell frame. Each cell covers
// cellWidth x cellHeight pixels; glyphs land in the cell holding their
// baseline. Font size only affects where a glyph lands.
type Canvas struct {
	frame         *Frame
	cellWidth     int
	cellHeight    int
	width, height int
}

// NewCanvas creates an empty canvas with the given cell size in pixels.
func NewCanvas(cellWidth, cellHeight int) (*Canvas, error) {
	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf("cell size must be positive: got %dx%d", cellWidth, cellHeight)
	}
	return &Canvas{
		frame:      NewFrame(0, 0),
		cellWidth:  cellWidth,
		cellHeight: cellHeight,
	}, nil
}

// CellSize returns the pixel size of one cell.
func (c *Canvas) CellSize() (width, height int) {
	return c.cellWidth, c.cellHeight
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// SetSize replaces the pixel dimensions, which clears the canvas.
func (c *Canvas) SetSize(width, height int) {
	c.width, c.height = max(width, 0), max(height, 0)
	c.frame = NewFrame(c.height/c.cellHeight, c.width/c.cellWidth)
}

// Clear erases every cell.
func (c *Canvas) Clear() {
	c.frame.Clear()
}

// Frame returns the cells backing the canvas.
func (c *Canvas) Frame() *Frame {
	return c.frame
}

// FillRect composites col over every lit cell the rectangle touches. Cells
// that fade below the cutoff, or are covered by an opaque fill, return to
// the background.
func (c *Canvas) FillRect(x, y, w, h float64, col gfx.RGBA) {
	f := c.frame
	c0, c1 := c.span(x, w, c.cellWidth, f.width)
	r0, r1 := c.span(y, h, c.cellHeight, f.height)
	for row := r0; row < r1; row++ {
		for cl := c0; cl < c1; cl++ {
			if f.isBackground[row][cl] || f.continuation(row, cl) {
				continue
			}
			blended := gfx.Blend(f.colors[row][cl], col)
			if col.A >= 1 || blended.Max() < fadeCutoff {
				f.erase(row, cl)
				continue
			}
			f.colors[row][cl] = blended
			if f.wide(row, cl) {
				f.colors[row][cl+1] = blended
			}
		}
	}
}

// FillText draws glyph with its baseline at (x, y).
func (c *Canvas) FillText(glyph rune, x, y, _ float64, col gfx.RGBA) {
	w := runewidth.RuneWidth(glyph)
	if w <= 0 {
		return
	}
	cl := int(math.Floor(x / float64(c.cellWidth)))
	row := int(math.Ceil(y/float64(c.cellHeight))) - 1
	_, under, lit := c.frame.At(row, cl)
	if !lit {
		under = gfx.Black
	}
	c.frame.Set(row, cl, string(glyph), w, gfx.Blend(under, col))
}

// span converts a pixel interval into a clamped half-open cell range.
func (c *Canvas) span(start, length float64, cell, limit int) (int, int) {
	lo := int(math.Floor(start / float64(cell)))
	hi := int(math.Ceil((start + length) / float64(cell)))
	return max(lo, 0), min(hi, limit)
}
