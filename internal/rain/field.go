package rain

import (
	"errors"

	"punk_dash/internal/gfx"
)

// Body glyph intensity is redrawn every tick from [bodyIntensityMin, bodyIntensityMin+bodyIntensitySpan).
const (
	bodyIntensityMin  = 120
	bodyIntensitySpan = 135
	headOpacityBoost  = 0.2
)

// Field owns the rain columns and the surface they are drawn on.
type Field struct {
	surface Surface
	palette Palette
	params  Params
	theme   gfx.Theme
	random  Rand

	columns       []Column
	width, height int
}

// NewField creates a Field. Resize must be called before the first Tick.
func NewField(surface Surface, palette Palette, params Params, theme gfx.Theme, random Rand) (*Field, error) {
	if surface == nil {
		return nil, errors.New("rain field needs a surface")
	}
	if random == nil {
		return nil, errors.New("rain field needs a random source")
	}
	if len(palette.Katakana) == 0 || len(palette.Latin) == 0 || len(palette.Digits) == 0 {
		return nil, errors.New("palette sets cannot be empty")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Field{
		surface: surface,
		palette: palette,
		params:  params,
		theme:   theme,
		random:  random,
	}, nil
}

// Resize resizes the surface, which clears it, and rebuilds every column.
// No column survives a resize.
func (f *Field) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	f.surface.SetSize(width, height)
	f.width, f.height = width, height

	count := width / f.params.BasePitch
	f.columns = make([]Column, count)
	for i := range f.columns {
		f.columns[i] = newColumn(i, f.params, f.random)
	}
}

// Tick fades the previous frames, draws one glyph per column and moves the
// columns down.
func (f *Field) Tick() {
	f.surface.FillRect(0, 0, float64(f.width), float64(f.height), gfx.Black.Alpha(f.params.FadeAlpha))
	for i := range f.columns {
		c := &f.columns[i]
		glyph := f.palette.DrawGlyph(f.random)
		f.surface.FillText(glyph, float64(c.X), c.Y(), c.FontSize, f.glyphColor(c))
		c.advance(f.height, f.params.ResetChance, f.random)
	}
}

// glyphColor returns the head tint for leading glyphs and a freshly
// randomized body shade otherwise.
func (f *Field) glyphColor(c *Column) gfx.RGBA {
	if c.IsHead() {
		return f.theme.Head().Alpha(c.Opacity + headOpacityBoost)
	}
	intensity := bodyIntensityMin + f.random.Intn(bodyIntensitySpan)
	return f.theme.Body(intensity).Alpha(c.Opacity)
}

// Columns returns a copy of the current column state.
func (f *Field) Columns() []Column {
	out := make([]Column, len(f.columns))
	copy(out, f.columns)
	return out
}

// Params returns the field's parameters.
func (f *Field) Params() Params {
	return f.params
}

// SetTheme recolors the rain from the next tick on.
func (f *Field) SetTheme(t gfx.Theme) {
	f.theme = t
}

// SetPalette switches the glyph sets drawn by new glyphs.
func (f *Field) SetPalette(p Palette) {
	f.palette = p
}
