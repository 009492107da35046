package poller

import (
	"sort"

	"github.com/tidwall/gjson"
)

// Payload is the economic data object returned by the endpoint. Its schema
// is not enforced; readers only check whether optional fields are present.
type Payload struct {
	raw string
}

// Source is one entry of the payload's data_sources mapping.
type Source struct {
	Key         string
	Description string
}

// NewPayload wraps a raw JSON object.
func NewPayload(raw string) Payload {
	return Payload{raw: raw}
}

// Raw returns the JSON text of the payload.
func (p Payload) Raw() string {
	return p.raw
}

// Get looks up a gjson path.
func (p Payload) Get(path string) gjson.Result {
	return gjson.Get(p.raw, path)
}

// IsFallback reports whether the upstream APIs were unavailable and
// substitute values are being served.
func (p Payload) IsFallback() bool {
	return p.Get("is_fallback_data").Bool()
}

// Sources returns the data_sources entries. ok is false when the mapping is
// absent or not an object.
func (p Payload) Sources() (sources []Source, ok bool) {
	res := p.Get("data_sources")
	if !res.IsObject() {
		return nil, false
	}
	res.ForEach(func(key, value gjson.Result) bool {
		sources = append(sources, Source{Key: key.String(), Description: value.String()})
		return true
	})
	return sources, true
}

// Number returns the numeric field at path, if present.
func (p Payload) Number(path string) (float64, bool) {
	res := p.Get(path)
	if res.Type != gjson.Number {
		return 0, false
	}
	return res.Float(), true
}

// LastUpdate returns the upstream timestamp string, if present.
func (p Payload) LastUpdate() (string, bool) {
	res := p.Get("last_update")
	if res.Type != gjson.String || res.Str == "" {
		return "", false
	}
	return res.Str, true
}

// Sectors returns the numeric entries of the sectors mapping sorted by name.
func (p Payload) Sectors() (names []string, values []float64) {
	res := p.Get("sectors")
	if !res.IsObject() {
		return nil, nil
	}
	byName := map[string]float64{}
	res.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Number {
			byName[key.String()] = value.Float()
		}
		return true
	})
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		values = append(values, byName[name])
	}
	return names, values
}
