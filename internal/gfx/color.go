// Package gfx holds the color types shared by the rain surfaces, the terminal
// screen and the chart renderers.
package gfx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color represents an RGB color value for terminal output.
type Color struct{ R, G, B uint8 }

// RGBA is a color with a straight (non-premultiplied) alpha in [0,1].
type RGBA struct {
	Color
	A float64
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

// ErrBadColor is returned when a CSS-style color string cannot be parsed.
var ErrBadColor = errors.New("invalid color")

// Alpha pairs the color with an opacity, clamped to [0,1].
func (c Color) Alpha(a float64) RGBA {
	return RGBA{Color: c, A: clamp01(a)}
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// Max returns the brightest channel, used to decide when a faded cell is gone.
func (c Color) Max() uint8 {
	return max(c.R, c.G, c.B)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{r, g, b}
}

// Blend composites src over dst using src's alpha.
func Blend(dst Color, src RGBA) Color {
	if src.A <= 0 {
		return dst
	}
	if src.A >= 1 {
		return src.Color
	}
	return fromColorful(dst.colorful().BlendRgb(src.colorful(), src.A))
}

// Mix moves a toward b by t in RGB space.
func Mix(a, b Color, t float64) Color {
	return fromColorful(a.colorful().BlendRgb(b.colorful(), clamp01(t)))
}

// Brighten increases the brightness of a color by a factor.
func Brighten(c Color, factor float64) Color {
	return Color{
		R: uint8(min(255, float64(c.R)*factor)),
		G: uint8(min(255, float64(c.G)*factor)),
		B: uint8(min(255, float64(c.B)*factor)),
	}
}

// Dim reduces the brightness of a color by a factor.
func Dim(c Color, factor float64) Color {
	factor = clamp01(factor)
	return Color{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
	}
}

// Parse reads the color notations used by chart configurations:
// #rgb, #rrggbb, rgb(r, g, b) and rgba(r, g, b, a).
func Parse(s string) (RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		hex := s
		if len(hex) == 4 {
			hex = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w %q: %v", ErrBadColor, s, err)
		}
		return fromColorful(c).Alpha(1), nil
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], 4, s)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], 3, s)
	}
	return RGBA{}, fmt.Errorf("%w %q", ErrBadColor, s)
}

// MustParse is Parse for package-level literals.
func MustParse(s string) RGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseFunc(args string, want int, orig string) (RGBA, error) {
	parts := strings.Split(args, ",")
	if len(parts) != want {
		return RGBA{}, fmt.Errorf("%w %q: want %d components", ErrBadColor, orig, want)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return RGBA{}, fmt.Errorf("%w %q: channel %d", ErrBadColor, orig, i)
		}
		ch[i] = uint8(v)
	}
	a := 1.0
	if want == 4 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w %q: alpha", ErrBadColor, orig)
		}
		a = v
	}
	return Color{ch[0], ch[1], ch[2]}.Alpha(a), nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
