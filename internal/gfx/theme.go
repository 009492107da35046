package gfx

import (
	"sort"
	"strings"
)

// headWhiteness is how far the head glyph moves from the base color toward
// white. For pure green it yields rgb(180,255,180).
const headWhiteness = 180.0 / 255.0

// Theme is the rain palette derived from one base color.
type Theme struct {
	Name string
	Base Color
}

// Head returns the near-white tint of a column's leading glyph.
func (t Theme) Head() Color {
	return Mix(t.Base, White, headWhiteness)
}

// Body returns the base color at the given intensity (0-255).
func (t Theme) Body(intensity int) Color {
	return Dim(t.Base, float64(intensity)/255)
}

// ColorThemes stores the predefined color themes.
var ColorThemes = map[string]Color{
	"green":  {0, 255, 0},
	"amber":  {255, 191, 0},
	"red":    {255, 0, 0},
	"orange": {255, 165, 0},
	"blue":   {0, 150, 255},
	"purple": {128, 0, 255},
	"cyan":   {0, 255, 255},
	"pink":   {255, 20, 147},
	"white":  {255, 255, 255},
}

// LookupTheme resolves a theme by case-insensitive name.
func LookupTheme(name string) (Theme, bool) {
	name = strings.ToLower(name)
	c, ok := ColorThemes[name]
	if !ok {
		return Theme{}, false
	}
	return Theme{Name: name, Base: c}, true
}

// ThemeNames lists the theme names in alphabetical order.
func ThemeNames() []string {
	names := make([]string, 0, len(ColorThemes))
	for name := range ColorThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
