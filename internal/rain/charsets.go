package rain

import (
	"errors"
	"sort"
	"strings"
)

// DefaultCharSet keeps the palette's own katakana.
const DefaultCharSet = "katakana"

// CharSets are alternatives for the palette's primary set.
var CharSets = map[string][]rune{
	"matrix":   []rune("λｱｲｳｴｵｶｷｸｹｺｻｼｽｾｿﾀﾁﾂﾃﾄﾅﾆﾇﾈﾉﾊﾋﾌﾍﾎﾏﾐﾑﾒﾓﾔﾕﾖﾗﾘﾙﾚﾛﾜﾝ"),
	"kanji":    []rune("書道日本漢字文化侍忍者武士刀剣"),
	"greek":    []rune("αβγδεζηθικλμνξοπρστυφχψωΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡΣΤΥΦΧΨΩ"),
	"cyrillic": []rune("абвгдежзийклмнопрстуфхцчшщъыьэюяАБВГДЕЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯ"),
	"binary":   []rune("01"),
	"hex":      []rune("0123456789ABCDEF"),
	"symbols":  []rune("!@#$%^&*()_+-=[]{}|;':\",./<>?"),
	"arrows":   []rune("←↑→↓↖↗↘↙⇐⇑⇒⇓"),
	"math":     []rune("∀∁∂∃∄∅∆∇∈∉∊∋∌∍∎∏∐∑−∓∔∕∖∗∘∙√∛∜∝∞∟∠∡∢∣∤∥∦∧∨∩∪"),
	"braille":  []rune("⠁⠂⠃⠄⠅⠆⠇⠈⠉⠊⠋⠌⠍⠎⠏⠐⠑⠒⠓⠔⠕⠖⠗⠘⠙⠚⠛⠜⠝⠞⠟"),
	"dna":      []rune("ATCG"),
	"ascii":    []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"),
	"minimal":  []rune(".*+"),
}

// ErrEmptyCharSet is returned for an empty character set.
var ErrEmptyCharSet = errors.New("character set cannot be empty")

// ResolveCharSet returns a named set, or the name's own runes as a custom set.
// DefaultCharSet resolves to nil, meaning the palette is left as is.
func ResolveCharSet(name string) ([]rune, error) {
	if name == "" {
		return nil, ErrEmptyCharSet
	}
	if strings.EqualFold(name, DefaultCharSet) {
		return nil, nil
	}
	if set, ok := CharSets[strings.ToLower(name)]; ok {
		return set, nil
	}
	return []rune(name), nil
}

// CharSetNames lists the named sets, DefaultCharSet first.
func CharSetNames() []string {
	names := make([]string, 0, len(CharSets))
	for name := range CharSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{DefaultCharSet}, names...)
}

// WithPrimary returns a copy of p drawing set in place of katakana.
func (p Palette) WithPrimary(set []rune) Palette {
	if len(set) > 0 {
		p.Katakana = set
	}
	return p
}
