// Package rain implements the falling-glyph background: the column field
// with its fade trail, and the free-falling particle variant.
package rain

import "punk_dash/internal/gfx"

// Surface is a raster target addressed in pixels. Text is placed by its
// baseline, the way a 2D canvas does it.
type Surface interface {
	Size() (width, height int)
	// SetSize replaces the pixel dimensions and clears the contents.
	SetSize(width, height int)
	Clear()
	FillRect(x, y, w, h float64, c gfx.RGBA)
	FillText(glyph rune, x, y, fontSize float64, c gfx.RGBA)
}

// Rand is the random source the effects draw from. *math/rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Animator is driven by the animation loop: Resize on every viewport change,
// Tick once per frame.
type Animator interface {
	Resize(width, height int)
	Tick()
}
