package chart

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/mattn/go-runewidth"

	"punk_dash/internal/gfx"
	"punk_dash/internal/screen"
)

var barEighths = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Fills are drawn at no less than this opacity to stay visible on black.
const minFillAlpha = 0.3

// TerminalRenderer draws charts into named regions of a frame. Each chart is
// drawn once per config and size, then copied into its region on every call.
type TerminalRenderer struct {
	regions map[string]screen.Region
	cache   map[string]*drawnChart
}

// drawnChart is a chart already drawn at its region's size.
type drawnChart struct {
	cfg   Config
	cells *screen.Frame
}

// NewTerminalRenderer returns a renderer with no targets.
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{
		regions: make(map[string]screen.Region),
		cache:   make(map[string]*drawnChart),
	}
}

// SetTarget registers or moves a drawing target.
func (r *TerminalRenderer) SetTarget(name string, region screen.Region) {
	r.regions[name] = region
}

// RemoveTarget drops a drawing target.
func (r *TerminalRenderer) RemoveTarget(name string) {
	delete(r.regions, name)
	delete(r.cache, name)
}

// Render draws cfg into the target's region.
func (r *TerminalRenderer) Render(cfg Config, target string) error {
	region, ok := r.regions[target]
	if !ok || region.Empty() {
		return fmt.Errorf("%w: %s", ErrNoTarget, target)
	}
	drawn := r.cache[target]
	if drawn == nil || !drawn.fits(region) || !reflect.DeepEqual(drawn.cfg, cfg) {
		if err := cfg.Validate(); err != nil {
			delete(r.cache, target)
			return err
		}
		drawn = &drawnChart{cfg: cfg, cells: screen.NewFrame(region.H, region.W)}
		draw(screen.Region{Frame: drawn.cells, W: region.W, H: region.H}, cfg)
		r.cache[target] = drawn
	}
	region.Paste(drawn.cells)
	return nil
}

func (d *drawnChart) fits(region screen.Region) bool {
	w, h := d.cells.Size()
	return w == region.W && h == region.H
}

func draw(region screen.Region, cfg Config) {
	region.Fill()
	if cfg.Options.Legend.Display {
		used := drawLegend(region, cfg)
		region = screen.Region{Frame: region.Frame, X: region.X, Y: region.Y + used, W: region.W, H: region.H - used}
	}
	if region.Empty() {
		return
	}
	switch cfg.Type {
	case Line:
		drawLine(region, cfg)
	case Pie:
		drawPie(region, cfg)
	case Bar:
		drawBar(region, cfg)
	}
}

type legendEntry struct {
	label string
	color gfx.Color
}

func legendEntries(cfg Config) []legendEntry {
	var entries []legendEntry
	if cfg.Type == Pie {
		ds := cfg.Data.Datasets[0]
		for i, label := range cfg.Data.Labels {
			entries = append(entries, legendEntry{label, gfx.Blend(gfx.Black, ds.pointColor(i))})
		}
		return entries
	}
	for _, ds := range cfg.Data.Datasets {
		c := ds.lineColor()
		if cfg.Type == Bar {
			c = ds.pointColor(0)
		}
		entries = append(entries, legendEntry{ds.Label, gfx.Blend(gfx.Black, c)})
	}
	return entries
}

// drawLegend lays the entries out in rows and returns the rows used.
func drawLegend(region screen.Region, cfg Config) int {
	text := textColor(cfg.Options.Legend.Color)
	x, y := 0, 0
	for _, e := range legendEntries(cfg) {
		w := 2 + runewidth.StringWidth(e.label)
		if x > 0 && x+w > region.W {
			x, y = 0, y+1
		}
		if y >= region.H {
			break
		}
		region.Set(x, y, "■", e.color)
		region.Put(x+2, y, e.label, text)
		x += w + 2
	}
	return y + 1
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func drawLine(region screen.Region, cfg Config) {
	tick := textColor(cfg.Options.TickColor)
	labels := cfg.Data.Labels
	var all []float64
	for _, ds := range cfg.Data.Datasets {
		all = append(all, ds.Data...)
	}
	lo, hi := bounds(all)
	axis := max(len(formatTick(lo)), len(formatTick(hi))) + 1
	plot := screen.Region{Frame: region.Frame, X: region.X + axis, Y: region.Y, W: region.W - axis, H: region.H - 1}
	if plot.Empty() {
		return
	}
	region.Put(0, 0, formatTick(hi), tick)
	region.Put(0, plot.H-1, formatTick(lo), tick)
	for i, label := range labels {
		col := 0
		if len(labels) > 1 {
			col = i * (plot.W - runewidth.StringWidth(label)) / (len(labels) - 1)
		}
		region.Put(axis+col, plot.H, label, tick)
	}

	for _, ds := range cfg.Data.Datasets {
		b := newBraille(plot.W, plot.H)
		dw, dh := b.dots()
		px := func(i int) int {
			if len(ds.Data) < 2 {
				return 0
			}
			return i * (dw - 1) / (len(ds.Data) - 1)
		}
		py := func(v float64) int {
			return int(math.Round(float64(dh-1) * (hi - v) / (hi - lo)))
		}
		for i := 1; i < len(ds.Data); i++ {
			b.line(px(i-1), py(ds.Data[i-1]), px(i), py(ds.Data[i]))
		}
		if len(ds.Data) == 1 {
			b.set(0, py(ds.Data[0]))
		}
		if ds.Fill {
			fill := ds.pointColor(0)
			fill.A = math.Max(fill.A, minFillAlpha)
			fc := gfx.Blend(gfx.Black, fill)
			for col := 0; col < plot.W; col++ {
				top := lineRowAt(ds.Data, px, py, col*2)
				for row := top/4 + 1; row < plot.H; row++ {
					plot.Set(col, row, "░", fc)
				}
			}
		}
		lc := gfx.Blend(gfx.Black, ds.lineColor())
		for row := 0; row < plot.H; row++ {
			for col := 0; col < plot.W; col++ {
				if g := b.glyph(col, row); g != "" {
					plot.Set(col, row, g, lc)
				}
			}
		}
	}
}

// lineRowAt interpolates the dot row of the polyline at dot column x.
func lineRowAt(data []float64, px func(int) int, py func(float64) int, x int) int {
	for i := 1; i < len(data); i++ {
		x0, x1 := px(i-1), px(i)
		if x > x1 && i < len(data)-1 {
			continue
		}
		if x1 == x0 {
			return py(data[i])
		}
		t := math.Min(1, math.Max(0, float64(x-x0)/float64(x1-x0)))
		y0, y1 := float64(py(data[i-1])), float64(py(data[i]))
		return int(math.Round(y0 + t*(y1-y0)))
	}
	return py(data[0])
}

func drawPie(region screen.Region, cfg Config) {
	ds := cfg.Data.Datasets[0]
	var total float64
	for _, v := range ds.Data {
		total += math.Max(v, 0)
	}
	if total == 0 {
		return
	}
	// Cells are twice as tall as wide, so x distances are halved.
	radius := math.Min(float64(region.H)/2, float64(region.W)/4)
	cx, cy := float64(region.W)/2, float64(region.H)/2
	for y := 0; y < region.H; y++ {
		for x := 0; x < region.W; x++ {
			dx := (float64(x) + 0.5 - cx) / 2
			dy := float64(y) + 0.5 - cy
			if math.Hypot(dx, dy) > radius {
				continue
			}
			// Clockwise from twelve o'clock.
			angle := math.Atan2(dx, -dy)
			if angle < 0 {
				angle += 2 * math.Pi
			}
			region.Set(x, y, "█", gfx.Blend(gfx.Black, ds.pointColor(sliceAt(ds.Data, total, angle/(2*math.Pi)))))
		}
	}
}

// sliceAt returns the index of the slice covering fraction f of the circle.
func sliceAt(data []float64, total, f float64) int {
	var acc float64
	for i, v := range data {
		acc += math.Max(v, 0) / total
		if f < acc {
			return i
		}
	}
	return len(data) - 1
}

func drawBar(region screen.Region, cfg Config) {
	tick := textColor(cfg.Options.TickColor)
	ds := cfg.Data.Datasets[0]
	labels := cfg.Data.Labels
	plotH := region.H - 1
	if plotH <= 0 {
		return
	}
	var top float64
	for _, v := range ds.Data {
		top = math.Max(top, v)
	}
	if top == 0 {
		top = 1
	}
	slot := region.W / len(labels)
	if slot == 0 {
		return
	}
	barW := max(1, slot*2/3)
	for i, v := range ds.Data {
		x0 := i*slot + (slot-barW)/2
		eighths := int(math.Round(math.Max(v, 0) / top * float64(plotH*8)))
		c := gfx.Blend(gfx.Black, ds.pointColor(i))
		for row := plotH - 1; row >= 0 && eighths > 0; row-- {
			g := barEighths[min(eighths, 8)]
			for x := x0; x < x0+barW; x++ {
				region.Set(x, row, g, c)
			}
			eighths -= 8
		}
		label := runewidth.Truncate(labels[i], slot, "")
		region.Put(i*slot+(slot-runewidth.StringWidth(label))/2, plotH, label, tick)
	}
}
