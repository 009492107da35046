package dashboard

import (
	"fmt"
	"maps"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	"go.uber.org/zap"

	"punk_dash/internal/chart"
	"punk_dash/internal/gfx"
	"punk_dash/internal/poller"
	"punk_dash/internal/rain"
	"punk_dash/internal/screen"
)

const (
	headerTitle = "ECONOMIC TERMINAL // PUNK_DASH"

	cardWidth   = 26
	cardHeight  = 3
	headerRows  = 3
	minChartRow = 6

	blinkPeriod = 500 * time.Millisecond
	blinkCount  = 2
	glitchRate  = 0.15

	springFrequency = 6.0
	springDamping   = 1.0
)

var warningColor = gfx.Color{R: 255, G: 204}

// ViewOptions configures a View.
type ViewOptions struct {
	Theme    gfx.Theme
	Palette  rain.Palette
	Random   rain.Rand
	FPS      int
	Bindings []chart.Binding
	// NextPoll reports when the next scheduled poll is due. Optional.
	NextPoll func() time.Time
	Logger   *zap.Logger
}

type panel struct {
	id    string
	title string
	chart bool

	x, y, w, h int

	glow, velocity float64
	focusedAt      time.Time
}

// View lays out the Document and the charts as panels and draws them over
// whatever the frame already holds. Like the Document it belongs to the loop
// goroutine.
type View struct {
	doc      *Document
	charts   *chart.TerminalRenderer
	bindings []chart.Binding
	panels   []*panel
	focus    int
	spring   harmonica.Spring
	boxes    boxes
	failed   map[string]error

	theme    gfx.Theme
	palette  rain.Palette
	random   rain.Rand
	nextPoll func() time.Time
	logger   *zap.Logger
}

// NewView builds a view over doc.
func NewView(doc *Document, opts ViewOptions) *View {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Bindings == nil {
		opts.Bindings = chart.DefaultBindings()
	}
	v := &View{
		doc:      doc,
		charts:   chart.NewTerminalRenderer(),
		bindings: opts.Bindings,
		focus:    -1,
		spring:   harmonica.NewSpring(harmonica.FPS(opts.FPS), springFrequency, springDamping),
		boxes:    boxes{},
		theme:    opts.Theme,
		palette:  opts.Palette,
		random:   opts.Random,
		nextPoll: opts.NextPoll,
		logger:   opts.Logger,
	}
	for _, e := range doc.Elements() {
		v.panels = append(v.panels, &panel{id: e.ID, title: e.Label})
	}
	for _, b := range v.bindings {
		v.panels = append(v.panels, &panel{id: b.Target, title: b.Title, chart: true})
	}
	return v
}

// Document returns the document the view draws.
func (v *View) Document() *Document {
	return v.doc
}

// Bindings returns the charts currently bound.
func (v *View) Bindings() []chart.Binding {
	return v.bindings
}

// OnData applies a payload to the document and rebinds the sector chart when
// the payload carries sectors.
func (v *View) OnData(p poller.Payload) {
	v.doc.OnData(p)
	if b, ok := chart.SectorsFromPayload(p); ok {
		v.bindings = chart.Replace(v.bindings, b)
	}
}

// SetTheme recolors the dashboard chrome.
func (v *View) SetTheme(t gfx.Theme) {
	v.theme = t
}

// SetPalette replaces the glyphs used by the focus glitch.
func (v *View) SetPalette(p rain.Palette) {
	v.palette = p
}

// HandleKey applies focus keys. It reports whether the key was used.
func (v *View) HandleKey(k screen.Key, now time.Time) bool {
	n := len(v.panels)
	if n == 0 {
		return false
	}
	switch k {
	case screen.KeyNext:
		v.setFocus((v.focus+1)%n, now)
	case screen.KeyPrev:
		if v.focus < 0 {
			v.setFocus(n-1, now)
		} else {
			v.setFocus((v.focus-1+n)%n, now)
		}
	case screen.KeyEscape:
		v.focus = -1
	default:
		return false
	}
	return true
}

// Focused returns the id of the focused panel.
func (v *View) Focused() (string, bool) {
	if v.focus < 0 {
		return "", false
	}
	return v.panels[v.focus].id, true
}

func (v *View) setFocus(i int, now time.Time) {
	v.focus = i
	v.panels[i].focusedAt = now
}

// Draw advances the animations to now and composes every panel onto frame.
func (v *View) Draw(frame *screen.Frame, now time.Time) {
	v.doc.Advance(now)
	width, height := frame.Size()
	attribution := v.doc.Attribution()
	footerRows := max(len(attribution.Lines)+2, 3)
	v.layout(width, height, footerRows)

	v.drawHeader(screen.Region{Frame: frame, W: width, H: headerRows}, now)
	for i, p := range v.panels {
		target := 0.0
		if i == v.focus {
			target = 1
		}
		p.glow, p.velocity = v.spring.Update(p.glow, p.velocity, target)
		region := screen.Region{Frame: frame, X: p.x, Y: p.y, W: p.w, H: p.h}
		if p.chart {
			v.drawChartPanel(region, p, i == v.focus)
		} else {
			v.drawCard(region, p, i == v.focus, now)
		}
	}
	v.bindCharts()
	v.drawFooter(screen.Region{Frame: frame, Y: height - footerRows, W: width, H: footerRows}, attribution)
}

func (v *View) layout(width, height, footerRows int) {
	var cards, charts []*panel
	for _, p := range v.panels {
		if p.chart {
			charts = append(charts, p)
		} else {
			cards = append(cards, p)
		}
	}
	cols := max(1, width/cardWidth)
	cw := width / cols
	for i, p := range cards {
		p.x, p.y = (i%cols)*cw, headerRows+(i/cols)*cardHeight
		p.w, p.h = cw, cardHeight
	}
	top := headerRows + (len(cards)+cols-1)/cols*cardHeight
	rows := height - top - footerRows
	if rows < minChartRow || len(charts) == 0 {
		for _, p := range charts {
			p.w, p.h = 0, 0
		}
		return
	}
	chw := width / len(charts)
	for i, p := range charts {
		p.x, p.y, p.w, p.h = i*chw, top, chw, rows
		if i == len(charts)-1 {
			p.w = width - p.x
		}
	}
}

// borderColor brightens a resting half-intensity border toward the head tint
// as the panel's glow rises.
func (v *View) borderColor(p *panel) gfx.Color {
	rest := gfx.Dim(v.theme.Base, 0.5)
	return gfx.Mix(gfx.Brighten(rest, 1+p.glow), v.theme.Head(), p.glow)
}

func (v *View) drawHeader(r screen.Region, now time.Time) {
	if r.H < headerRows {
		return
	}
	v.boxes.draw(r, "", gfx.Dim(v.theme.Base, 0.6), v.theme.Base)
	inner := r.Inset(1)
	used := inner.Put(1, 0, headerTitle, v.theme.Head())
	if ts := v.doc.LastUpdate(); ts != "" {
		inner.Put(used+3, 0, "LAST UPDATE "+ts, v.theme.Base)
	}
	if v.nextPoll != nil {
		remaining := max(v.nextPoll().Sub(now), 0).Round(time.Second)
		countdown := fmt.Sprintf("NEXT SYNC %02d:%02d", int(remaining.Minutes()), int(remaining.Seconds())%60)
		inner.Put(inner.W-len(countdown)-1, 0, countdown, v.theme.Base)
	}
}

func (v *View) drawCard(r screen.Region, p *panel, focused bool, now time.Time) {
	if r.Empty() {
		return
	}
	v.boxes.draw(r, v.title(p, focused), v.borderColor(p), v.theme.Base)
	e, ok := v.doc.Element(p.id)
	if !ok {
		return
	}
	c := v.theme.Head()
	if focused {
		c = gfx.Dim(c, blinkOpacity(now.Sub(p.focusedAt)))
	}
	inner := r.Inset(1)
	inner.Put(1, 0, e.Text, c)
}

func (v *View) drawChartPanel(r screen.Region, p *panel, focused bool) {
	if r.Empty() {
		v.charts.RemoveTarget(p.id)
		return
	}
	v.boxes.draw(r, v.title(p, focused), v.borderColor(p), v.theme.Base)
	v.charts.SetTarget(p.id, r.Inset(1))
}

func (v *View) bindCharts() {
	failed := chart.BindAll(v.charts, v.bindings, nil)
	if maps.EqualFunc(failed, v.failed, func(a, b error) bool { return a.Error() == b.Error() }) {
		return
	}
	for target, err := range failed {
		v.logger.Warn("chart not rendered", zap.String("target", target), zap.Error(err))
	}
	v.failed = failed
}

func (v *View) drawFooter(r screen.Region, a Attribution) {
	if r.Empty() || r.Y < headerRows {
		return
	}
	v.boxes.draw(r, a.Title, gfx.Dim(v.theme.Base, 0.6), v.theme.Base)
	inner := r.Inset(1)
	for i, line := range a.Lines {
		c := v.theme.Base
		if line.Fallback {
			c = warningColor
		}
		inner.Put(1, i, line.Text, c)
	}
}

// title returns the panel title, glitched while focused.
func (v *View) title(p *panel, focused bool) string {
	if !focused || v.random == nil || len(v.palette.Special) == 0 {
		return p.title
	}
	out := []rune(p.title)
	for i, r := range out {
		if r != ' ' && v.random.Float64() < glitchRate {
			out[i] = v.palette.Special[v.random.Intn(len(v.palette.Special))]
		}
	}
	return string(out)
}

// blinkOpacity fades a value to 0.3 and back once per period, twice.
func blinkOpacity(elapsed time.Duration) float64 {
	if elapsed < 0 || elapsed >= blinkPeriod*blinkCount {
		return 1
	}
	phase := float64(elapsed%blinkPeriod) / float64(blinkPeriod)
	return 1 - 0.7*(1-math.Abs(2*phase-1))
}
