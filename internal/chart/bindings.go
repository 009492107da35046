package chart

import (
	"go.uber.org/zap"

	"punk_dash/internal/poller"
)

// Target names of the three dashboard charts.
const (
	TargetGDP    = "gdpChart"
	TargetSector = "sectorChart"
	TargetTrade  = "tradeChart"
)

const tickColor = "#0f0"

// Binding pairs a configuration with the name of the surface it draws on.
type Binding struct {
	Target string
	Title  string
	Config Config
}

// Renderer draws a configuration onto the named target.
type Renderer interface {
	Render(cfg Config, target string) error
}

// DefaultBindings returns the GDP growth line, the sector pie and the trade bar.
func DefaultBindings() []Binding {
	return []Binding{
		{
			Target: TargetGDP,
			Title:  "GDP GROWTH",
			Config: Config{
				Type: Line,
				Data: Data{
					Labels: []string{"2018", "2019", "2020", "2021", "2022", "2023"},
					Datasets: []Dataset{{
						Label:           "GDP Growth (%)",
						Data:            []float64{4.2, 3.8, 2.5, 3.1, 4.0, 3.5},
						BorderColor:     "#00ff00",
						BackgroundColor: []string{"rgba(0, 255, 0, 0.1)"},
						Fill:            true,
						Tension:         0.3,
					}},
				},
				Options: Options{Legend: Legend{Display: true, Color: tickColor}, TickColor: tickColor},
			},
		},
		SectorBinding(
			[]string{"Agriculture", "Manufacturing", "Services", "Technology", "Finance"},
			[]float64{25, 20, 15, 10, 30},
		),
		{
			Target: TargetTrade,
			Title:  "TRADE BALANCE",
			Config: Config{
				Type: Bar,
				Data: Data{
					Labels: []string{"Exports", "Imports", "Balance"},
					Datasets: []Dataset{{
						Label:           "USD (Billion)",
						Data:            []float64{450, 400, 50},
						BackgroundColor: []string{"#00ff00", "#ff0000", "#ffff00"},
					}},
				},
				Options: Options{Legend: Legend{Display: false}, TickColor: tickColor},
			},
		},
	}
}

// SectorBinding builds the sector contribution pie.
func SectorBinding(labels []string, values []float64) Binding {
	return Binding{
		Target: TargetSector,
		Title:  "SECTOR CONTRIBUTION",
		Config: Config{
			Type: Pie,
			Data: Data{
				Labels: labels,
				Datasets: []Dataset{{
					Label:           "Sector Contribution (%)",
					Data:            values,
					BackgroundColor: []string{"#00ff00", "#00ccff", "#ffcc00", "#ff6600", "#cc00cc"},
				}},
			},
			Options: Options{Legend: Legend{Display: true, Color: tickColor}},
		},
	}
}

// SectorsFromPayload rebuilds the pie from the payload's sectors mapping.
func SectorsFromPayload(p poller.Payload) (Binding, bool) {
	names, values := p.Sectors()
	if len(names) == 0 {
		return Binding{}, false
	}
	return SectorBinding(names, values), true
}

// Replace swaps the binding with the same target, keeping order.
func Replace(bindings []Binding, b Binding) []Binding {
	out := make([]Binding, len(bindings))
	copy(out, bindings)
	for i := range out {
		if out[i].Target == b.Target {
			out[i] = b
		}
	}
	return out
}

// BindAll renders every binding. A failing chart does not stop its siblings;
// failures are logged and returned by target.
func BindAll(r Renderer, bindings []Binding, logger *zap.Logger) map[string]error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var failed map[string]error
	for _, b := range bindings {
		if err := r.Render(b.Config, b.Target); err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[b.Target] = err
			logger.Debug("chart not rendered", zap.String("target", b.Target), zap.Error(err))
		}
	}
	return failed
}
