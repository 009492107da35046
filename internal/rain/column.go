package rain

import (
	"errors"
	"fmt"
)

// headMaxDrop is the drop below which a glyph is drawn as the bright head.
const headMaxDrop = 1

// Params holds the tunables of the column rain. The two presets differ in
// font jitter, speed range and starting drop.
type Params struct {
	BasePitch      int     // Column pitch and base font size, in pixels
	FontJitter     float64 // Font size is drawn from [BasePitch, BasePitch+FontJitter)
	SpeedMin       float64
	SpeedMax       float64
	OpacityMin     float64
	OpacitySpan    float64
	InitialDropMax int     // When > 0 the starting drop is an integer in [0, InitialDropMax)
	InitialDrop    float64 // Starting drop when InitialDropMax is 0
	ResetChance    float64 // Per-tick probability of a reset once past the bottom
	FadeAlpha      float64 // Alpha of the black overlay painted each tick
}

// PresetFrameSynced matches the display-refresh rain.
var PresetFrameSynced = Params{
	BasePitch:      14,
	FontJitter:     6,
	SpeedMin:       1,
	SpeedMax:       3,
	OpacityMin:     0.7,
	OpacitySpan:    0.3,
	InitialDropMax: 5,
	ResetChance:    0.025,
	FadeAlpha:      0.04,
}

// PresetFixedRate matches the 30ms interval rain.
var PresetFixedRate = Params{
	BasePitch:   14,
	FontJitter:  4,
	SpeedMin:    1,
	SpeedMax:    2.5,
	OpacityMin:  0.7,
	OpacitySpan: 0.3,
	InitialDrop: 1,
	ResetChance: 0.025,
	FadeAlpha:   0.04,
}

// Validate checks the parameters for validity.
func (p Params) Validate() error {
	if p.BasePitch <= 0 {
		return fmt.Errorf("base pitch must be positive: got %d", p.BasePitch)
	}
	if p.FontJitter < 0 || p.SpeedMin <= 0 || p.SpeedMax < p.SpeedMin {
		return errors.New("invalid font or speed range")
	}
	if p.OpacityMin < 0 || p.OpacitySpan < 0 || p.OpacityMin+p.OpacitySpan > 1 {
		return errors.New("invalid opacity range")
	}
	if p.ResetChance < 0 || p.ResetChance > 1 {
		return fmt.Errorf("reset chance out of range (0-1): got %.3f", p.ResetChance)
	}
	if p.FadeAlpha <= 0 || p.FadeAlpha > 1 {
		return fmt.Errorf("fade alpha out of range (0-1]: got %.3f", p.FadeAlpha)
	}
	if p.InitialDropMax < 0 || p.InitialDrop < 0 {
		return errors.New("invalid initial drop")
	}
	return nil
}

// Column is one vertical lane of the rain.
type Column struct {
	X        int     // Horizontal pixel offset
	FontSize float64 // Glyph size in pixels
	Speed    float64 // Drop units gained per two ticks
	Opacity  float64
	Drop     float64 // Current fall offset, in font-size units
}

// newColumn creates the i-th column with randomized size, speed and opacity.
func newColumn(i int, p Params, r Rand) Column {
	c := Column{
		X:        i * p.BasePitch,
		FontSize: float64(p.BasePitch) + r.Float64()*p.FontJitter,
		Speed:    p.SpeedMin + r.Float64()*(p.SpeedMax-p.SpeedMin),
		Opacity:  p.OpacityMin + r.Float64()*p.OpacitySpan,
		Drop:     p.InitialDrop,
	}
	if p.InitialDropMax > 0 {
		c.Drop = float64(r.Intn(p.InitialDropMax))
	}
	return c
}

// Y returns the baseline of the column's current glyph in pixels.
func (c *Column) Y() float64 {
	return c.Drop * c.FontSize
}

// IsHead reports whether the current glyph is the column's leading glyph.
func (c *Column) IsHead() bool {
	return c.Drop <= headMaxDrop
}

// advance moves the drop down and, once it is past the bottom, resets it with
// probability chance. Resets are staggered so columns do not fall in sync.
func (c *Column) advance(height int, chance float64, r Rand) (reset bool) {
	c.Drop += c.Speed / 2
	if c.Y() > float64(height) && r.Float64() < chance {
		c.Drop = 0
		return true
	}
	return false
}
