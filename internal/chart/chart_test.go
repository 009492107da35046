package chart

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punk_dash/internal/gfx"
	"punk_dash/internal/poller"
	"punk_dash/internal/screen"
)

func TestDefaultBindings(t *testing.T) {
	bindings := DefaultBindings()
	require.Len(t, bindings, 3)

	targets := []string{bindings[0].Target, bindings[1].Target, bindings[2].Target}
	assert.Equal(t, []string{TargetGDP, TargetSector, TargetTrade}, targets)

	gdp := bindings[0].Config
	want := Data{
		Labels: []string{"2018", "2019", "2020", "2021", "2022", "2023"},
		Datasets: []Dataset{{
			Label:           "GDP Growth (%)",
			Data:            []float64{4.2, 3.8, 2.5, 3.1, 4.0, 3.5},
			BorderColor:     "#00ff00",
			BackgroundColor: []string{"rgba(0, 255, 0, 0.1)"},
			Fill:            true,
			Tension:         0.3,
		}},
	}
	if diff := cmp.Diff(want, gdp.Data); diff != "" {
		t.Errorf("gdp data mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Line, gdp.Type)
	assert.True(t, gdp.Options.Legend.Display)

	pie := bindings[1].Config
	assert.Equal(t, Pie, pie.Type)
	assert.Equal(t, []string{"Agriculture", "Manufacturing", "Services", "Technology", "Finance"}, pie.Data.Labels)
	assert.Equal(t, []float64{25, 20, 15, 10, 30}, pie.Data.Datasets[0].Data)
	assert.Equal(t, []string{"#00ff00", "#00ccff", "#ffcc00", "#ff6600", "#cc00cc"}, pie.Data.Datasets[0].BackgroundColor)

	bar := bindings[2].Config
	assert.Equal(t, Bar, bar.Type)
	assert.Equal(t, "USD (Billion)", bar.Data.Datasets[0].Label)
	assert.Equal(t, []float64{450, 400, 50}, bar.Data.Datasets[0].Data)
	assert.False(t, bar.Options.Legend.Display)

	for _, b := range bindings {
		assert.NoError(t, b.Config.Validate(), b.Target)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown type", Config{Type: "radar"}},
		{"no datasets", Config{Type: Bar, Data: Data{Labels: []string{"a"}}}},
		{"empty dataset", Config{Type: Bar, Data: Data{Labels: []string{"a"}, Datasets: []Dataset{{Label: "x"}}}}},
		{"length mismatch", Config{Type: Line, Data: Data{Labels: []string{"a", "b"}, Datasets: []Dataset{{Data: []float64{1}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestSectorsFromPayload(t *testing.T) {
	p := poller.NewPayload(`{"sectors": {"services": 45.2, "agriculture": 12.3, "note": "n/a"}}`)
	b, ok := SectorsFromPayload(p)
	require.True(t, ok)
	assert.Equal(t, TargetSector, b.Target)
	assert.Equal(t, []string{"agriculture", "services"}, b.Config.Data.Labels)
	assert.Equal(t, []float64{12.3, 45.2}, b.Config.Data.Datasets[0].Data)

	_, ok = SectorsFromPayload(poller.NewPayload(`{}`))
	assert.False(t, ok)
}

func TestReplace(t *testing.T) {
	bindings := DefaultBindings()
	updated := Replace(bindings, SectorBinding([]string{"a"}, []float64{1}))
	assert.Equal(t, []string{"a"}, updated[1].Config.Data.Labels)
	assert.Len(t, bindings[1].Config.Data.Labels, 5, "input left untouched")
}

type failingRenderer struct {
	missing  string
	rendered []string
}

func (r *failingRenderer) Render(cfg Config, target string) error {
	if target == r.missing {
		return ErrNoTarget
	}
	r.rendered = append(r.rendered, target)
	return nil
}

func TestBindAllIsolatesFailures(t *testing.T) {
	r := &failingRenderer{missing: TargetSector}
	failed := BindAll(r, DefaultBindings(), nil)

	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[TargetSector], ErrNoTarget)
	assert.Equal(t, []string{TargetGDP, TargetTrade}, r.rendered)
}

func TestBindAllNoFailures(t *testing.T) {
	assert.Nil(t, BindAll(&failingRenderer{}, DefaultBindings(), nil))
}

func litColors(f *screen.Frame) map[gfx.Color]int {
	w, h := f.Size()
	seen := map[gfx.Color]int{}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			if _, c, lit := f.At(row, col); lit && c != gfx.Black {
				seen[c]++
			}
		}
	}
	return seen
}

func TestTerminalRendererMissingTarget(t *testing.T) {
	r := NewTerminalRenderer()
	err := r.Render(DefaultBindings()[0].Config, TargetGDP)
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestTerminalRendererDrawsEveryChart(t *testing.T) {
	frame := screen.NewFrame(60, 80)
	r := NewTerminalRenderer()
	r.SetTarget(TargetGDP, screen.Region{Frame: frame, X: 0, Y: 0, W: 40, H: 20})
	r.SetTarget(TargetSector, screen.Region{Frame: frame, X: 40, Y: 0, W: 40, H: 20})
	r.SetTarget(TargetTrade, screen.Region{Frame: frame, X: 0, Y: 20, W: 40, H: 20})

	assert.Nil(t, BindAll(r, DefaultBindings(), nil))

	sector := screen.NewFrame(20, 40)
	sr := NewTerminalRenderer()
	sr.SetTarget(TargetSector, screen.Region{Frame: sector, W: 40, H: 20})
	require.NoError(t, sr.Render(DefaultBindings()[1].Config, TargetSector))
	colors := litColors(sector)
	for _, hex := range []string{"#00ff00", "#00ccff", "#ffcc00", "#ff6600", "#cc00cc"} {
		assert.Positive(t, colors[gfx.MustParse(hex).Color], hex)
	}

	assert.Contains(t, frame.Row(39), "Exports")
	assert.Contains(t, frame.Row(0), "GDP Growth (%)")
}

func TestTerminalRendererRemoveTarget(t *testing.T) {
	r := NewTerminalRenderer()
	r.SetTarget(TargetTrade, screen.Region{Frame: screen.NewFrame(10, 10), W: 10, H: 10})
	r.RemoveTarget(TargetTrade)
	assert.ErrorIs(t, r.Render(DefaultBindings()[2].Config, TargetTrade), ErrNoTarget)
}

func TestTerminalRendererReusesDrawnChart(t *testing.T) {
	frame := screen.NewFrame(20, 50)
	r := NewTerminalRenderer()
	r.SetTarget(TargetTrade, screen.Region{Frame: frame, X: 5, Y: 2, W: 40, H: 16})
	cfg := DefaultBindings()[2].Config

	require.NoError(t, r.Render(cfg, TargetTrade))
	first := r.cache[TargetTrade].cells
	want := frame.Row(17)
	require.Contains(t, want, "Exports")

	frame.Clear()
	require.NoError(t, r.Render(cfg, TargetTrade))
	assert.Same(t, first, r.cache[TargetTrade].cells, "unchanged chart is not redrawn")
	assert.Equal(t, want, frame.Row(17), "cleared frame gets the chart back")

	cfg.Data.Labels = []string{"Out", "In", "Net"}
	require.NoError(t, r.Render(cfg, TargetTrade))
	assert.NotSame(t, first, r.cache[TargetTrade].cells)
	assert.Contains(t, frame.Row(17), "Out")

	redrawn := r.cache[TargetTrade].cells
	r.SetTarget(TargetTrade, screen.Region{Frame: frame, X: 5, Y: 2, W: 30, H: 16})
	require.NoError(t, r.Render(cfg, TargetTrade))
	assert.NotSame(t, redrawn, r.cache[TargetTrade].cells, "a resized target is redrawn")

	cfg.Data.Labels = nil
	assert.ErrorIs(t, r.Render(cfg, TargetTrade), ErrInvalidConfig)
	assert.NotContains(t, r.cache, TargetTrade)
}

func TestBrailleLine(t *testing.T) {
	b := newBraille(2, 1)
	b.line(0, 0, 3, 3)
	assert.Equal(t, "⠑", b.glyph(0, 0))
	assert.Equal(t, "⢄", b.glyph(1, 0))

	empty := newBraille(1, 1)
	assert.Equal(t, "", empty.glyph(0, 0))
}

func TestSliceAt(t *testing.T) {
	data := []float64{25, 20, 15, 10, 30}
	assert.Equal(t, 0, sliceAt(data, 100, 0))
	assert.Equal(t, 1, sliceAt(data, 100, 0.30))
	assert.Equal(t, 4, sliceAt(data, 100, 0.99))
}

func TestPNGRendererWritesFiles(t *testing.T) {
	dir := t.TempDir()
	r := NewPNGRenderer(dir)
	assert.Nil(t, BindAll(r, DefaultBindings(), nil))

	for _, target := range []string{TargetGDP, TargetSector, TargetTrade} {
		data, err := os.ReadFile(filepath.Join(dir, target+".png"))
		require.NoError(t, err, target)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), target)
	}
}

func TestPNGRendererMissingDir(t *testing.T) {
	r := NewPNGRenderer(filepath.Join(t.TempDir(), "absent"))
	err := r.Render(DefaultBindings()[0].Config, TargetGDP)
	assert.True(t, errors.Is(err, ErrNoTarget))
}
