// Package dashboard holds the economic dashboard's display state and draws it
// as terminal panels over the rain.
package dashboard

import (
	"math"
	"strconv"
	"time"

	"punk_dash/internal/poller"
)

// FallbackWarning replaces the attribution when the server serves substitute data.
const FallbackWarning = "⚠️ WARNING: fallback data in use (APIs unavailable)"

const (
	sourcesTitle       = "Data sources:"
	sourcesUnspecified = "Sources unspecified"
)

// Element is one addressable value display.
type Element struct {
	ID    string
	Label string
	Text  string

	counter *countUp
}

// Counting reports whether a count-up animation is still running.
func (e *Element) Counting() bool {
	return e.counter != nil
}

// AttributionLine is one entry of the attribution area.
type AttributionLine struct {
	Key      string
	Text     string
	Fallback bool
}

// Attribution lists the upstream sources of the displayed figures.
type Attribution struct {
	Title string
	Lines []AttributionLine
}

// Document is the dashboard's display state. It is owned by the loop
// goroutine and is not safe for concurrent use.
type Document struct {
	fields      []Field
	elements    map[string]*Element
	order       []string
	attribution Attribution
	lastUpdate  string
	format      Formatter
}

// NewDocument creates one element per field showing its formatted seed.
func NewDocument(fields []Field, format Formatter) *Document {
	d := &Document{
		fields:   fields,
		elements: make(map[string]*Element, len(fields)),
		format:   format,
	}
	for _, f := range fields {
		d.elements[f.ID] = &Element{ID: f.ID, Label: f.Label, Text: format.Format(f.Seed, f.Format)}
		d.order = append(d.order, f.ID)
	}
	return d
}

// Element looks up a display element by id.
func (d *Document) Element(id string) (*Element, bool) {
	e, ok := d.elements[id]
	return e, ok
}

// Elements returns the elements in field order.
func (d *Document) Elements() []*Element {
	out := make([]*Element, 0, len(d.order))
	for _, id := range d.order {
		if e, ok := d.elements[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Remove deletes an element. Later writes to it are skipped.
func (d *Document) Remove(id string) {
	delete(d.elements, id)
}

// Attribution returns the current attribution area.
func (d *Document) Attribution() Attribution {
	return d.attribution
}

// LastUpdate returns the upstream update time of the last payload, if any.
func (d *Document) LastUpdate() string {
	return d.lastUpdate
}

// Seed starts a count-up on every element from its field's seed value.
func (d *Document) Seed(now time.Time) {
	for _, f := range d.fields {
		if e, ok := d.elements[f.ID]; ok {
			e.counter = &countUp{target: f.Seed, final: e.Text, start: now}
			e.Text = "0"
		}
	}
}

// Advance steps running count-ups to now.
func (d *Document) Advance(now time.Time) {
	for _, e := range d.elements {
		if e.counter == nil {
			continue
		}
		text, done := e.counter.at(now)
		e.Text = text
		if done {
			e.counter = nil
		}
	}
}

// OnData applies a payload. The attribution is rebuilt from it, and each
// numeric field present in both the payload and the document is overwritten.
func (d *Document) OnData(p poller.Payload) {
	d.attribution = attributionOf(p)
	if ts, ok := p.LastUpdate(); ok {
		d.lastUpdate = ts
	}
	for _, f := range d.fields {
		e, ok := d.elements[f.ID]
		if !ok {
			continue
		}
		v, ok := p.Number(f.Path)
		if !ok {
			continue
		}
		e.counter = nil
		e.Text = d.format.Format(v, f.Format)
	}
}

func attributionOf(p poller.Payload) Attribution {
	if p.IsFallback() {
		return Attribution{Lines: []AttributionLine{{Key: "fallback", Text: FallbackWarning, Fallback: true}}}
	}
	a := Attribution{Title: sourcesTitle}
	sources, ok := p.Sources()
	if !ok {
		a.Lines = []AttributionLine{{Key: "unknown", Text: sourcesUnspecified}}
		return a
	}
	for _, s := range sources {
		a.Lines = append(a.Lines, AttributionLine{Key: s.Key, Text: s.Key + ": " + s.Description})
	}
	return a
}

const (
	countDuration = 1500 * time.Millisecond
	countRate     = 30
	countInterval = time.Second / countRate
	countSteps    = int(countDuration * countRate / time.Second)
)

// countUp animates an element from zero to target, then shows final.
type countUp struct {
	target float64
	final  string
	start  time.Time
}

func (c *countUp) at(now time.Time) (string, bool) {
	steps := max(int(now.Sub(c.start)/countInterval), 0)
	if steps >= countSteps {
		return c.final, true
	}
	current := c.target * float64(steps) / float64(countSteps)
	if steps > 0 && current >= c.target {
		return c.final, true
	}
	return strconv.FormatFloat(math.Floor(current), 'f', 0, 64), false
}
