// Package chart describes the dashboard's charts as typed configurations and
// renders them either into terminal cells or to PNG files.
package chart

import (
	"errors"
	"fmt"

	"punk_dash/internal/gfx"
)

// Type is the chart kind.
type Type string

const (
	Line Type = "line"
	Pie  Type = "pie"
	Bar  Type = "bar"
)

// Dataset is one series. Colors use CSS notation.
type Dataset struct {
	Label           string
	Data            []float64
	BorderColor     string
	BackgroundColor []string // One color, or one per data point
	Fill            bool
	Tension         float64
}

// Data holds the category labels and the series.
type Data struct {
	Labels   []string
	Datasets []Dataset
}

// Legend controls the chart legend.
type Legend struct {
	Display bool
	Color   string
}

// Options carries presentation settings.
type Options struct {
	Legend    Legend
	TickColor string
}

// Config is a full chart description.
type Config struct {
	Type    Type
	Data    Data
	Options Options
}

var (
	// ErrNoTarget is returned when a chart's drawing target does not exist.
	ErrNoTarget = errors.New("chart target not found")
	// ErrInvalidConfig is returned for configurations that cannot be drawn.
	ErrInvalidConfig = errors.New("invalid chart config")
)

// Validate checks that the configuration can be drawn.
func (c Config) Validate() error {
	switch c.Type {
	case Line, Pie, Bar:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidConfig, c.Type)
	}
	if len(c.Data.Datasets) == 0 {
		return fmt.Errorf("%w: no datasets", ErrInvalidConfig)
	}
	for _, ds := range c.Data.Datasets {
		if len(ds.Data) == 0 {
			return fmt.Errorf("%w: dataset %q is empty", ErrInvalidConfig, ds.Label)
		}
		if len(ds.Data) != len(c.Data.Labels) {
			return fmt.Errorf("%w: dataset %q has %d points for %d labels", ErrInvalidConfig, ds.Label, len(ds.Data), len(c.Data.Labels))
		}
	}
	return nil
}

// pointColor returns the background color of point i, cycling through the
// dataset's colors and falling back to its border color.
func (ds Dataset) pointColor(i int) gfx.RGBA {
	if n := len(ds.BackgroundColor); n > 0 {
		if c, err := gfx.Parse(ds.BackgroundColor[i%n]); err == nil {
			return c
		}
	}
	return ds.lineColor()
}

// lineColor returns the border color, green when unset.
func (ds Dataset) lineColor() gfx.RGBA {
	if c, err := gfx.Parse(ds.BorderColor); err == nil {
		return c
	}
	return gfx.Color{G: 255}.Alpha(1)
}

func textColor(s string) gfx.Color {
	if c, err := gfx.Parse(s); err == nil {
		return c.Color
	}
	return gfx.Color{G: 255}
}
