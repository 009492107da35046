package chart

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"punk_dash/internal/gfx"
)

// PNGRenderer writes each chart to <Dir>/<target>.png.
type PNGRenderer struct {
	Dir           string
	Width, Height int
}

// NewPNGRenderer returns a renderer writing 800x400 images into dir.
func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{Dir: dir, Width: 800, Height: 400}
}

// Path returns the file a target is written to.
func (r *PNGRenderer) Path(target string) string {
	return filepath.Join(r.Dir, target+".png")
}

// Render draws cfg and writes the image file for target.
func (r *PNGRenderer) Render(cfg Config, target string) error {
	if fi, err := os.Stat(r.Dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("%w: directory %q", ErrNoTarget, r.Dir)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	var err error
	switch cfg.Type {
	case Line:
		err = r.lineChart(cfg).Render(chart.PNG, &buf)
	case Pie:
		err = r.pieChart(cfg).Render(chart.PNG, &buf)
	case Bar:
		err = r.barChart(cfg).Render(chart.PNG, &buf)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", target, err)
	}
	if err := os.WriteFile(r.Path(target), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

func toDrawing(c gfx.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(c.A * 255))}
}

func background() chart.Style {
	return chart.Style{FillColor: drawing.ColorBlack, Padding: chart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16}}
}

func tickStyle(cfg Config) chart.Style {
	c := toDrawing(textColor(cfg.Options.TickColor).Alpha(1))
	return chart.Style{FontColor: c, StrokeColor: c}
}

func (r *PNGRenderer) lineChart(cfg Config) chart.Chart {
	labels := cfg.Data.Labels
	xs := make([]float64, len(labels))
	ticks := make([]chart.Tick, len(labels))
	for i, l := range labels {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: l}
	}
	var series []chart.Series
	for _, ds := range cfg.Data.Datasets {
		st := chart.Style{StrokeColor: toDrawing(ds.lineColor()), StrokeWidth: 2}
		if ds.Fill {
			st.FillColor = toDrawing(ds.pointColor(0))
		}
		series = append(series, chart.ContinuousSeries{Name: ds.Label, XValues: xs, YValues: ds.Data, Style: st})
	}
	ch := chart.Chart{
		Width:      r.Width,
		Height:     r.Height,
		Background: background(),
		Canvas:     chart.Style{FillColor: drawing.ColorBlack},
		XAxis:      chart.XAxis{Ticks: ticks, Style: tickStyle(cfg)},
		YAxis:      chart.YAxis{Style: tickStyle(cfg)},
		Series:     series,
	}
	if cfg.Options.Legend.Display {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

func (r *PNGRenderer) pieChart(cfg Config) chart.PieChart {
	ds := cfg.Data.Datasets[0]
	values := make([]chart.Value, len(cfg.Data.Labels))
	for i, l := range cfg.Data.Labels {
		values[i] = chart.Value{Label: l, Value: ds.Data[i], Style: chart.Style{FillColor: toDrawing(ds.pointColor(i))}}
	}
	return chart.PieChart{
		Title:      ds.Label,
		Width:      r.Width,
		Height:     r.Height,
		Background: background(),
		Canvas:     chart.Style{FillColor: drawing.ColorBlack},
		Values:     values,
	}
}

func (r *PNGRenderer) barChart(cfg Config) chart.BarChart {
	ds := cfg.Data.Datasets[0]
	bars := make([]chart.Value, len(cfg.Data.Labels))
	for i, l := range cfg.Data.Labels {
		c := toDrawing(ds.pointColor(i))
		bars[i] = chart.Value{Label: l, Value: ds.Data[i], Style: chart.Style{FillColor: c, StrokeColor: c}}
	}
	return chart.BarChart{
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   r.Width / (2 * len(bars)),
		BarSpacing: r.Width / (4 * len(bars)),
		Background: background(),
		Canvas:     chart.Style{FillColor: drawing.ColorBlack},
		XAxis:      tickStyle(cfg),
		YAxis:      chart.YAxis{Style: tickStyle(cfg)},
		Bars:       bars,
	}
}
