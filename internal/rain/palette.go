package rain

// Draw thresholds: a single uniform roll picks the set.
const (
	katakanaShare = 0.70
	digitShare    = 0.90
)

// GlyphSet identifies one of the palette's character sets.
type GlyphSet int

const (
	SetUnknown GlyphSet = iota
	SetKatakana
	SetLatin
	SetDigits
	SetSpecial
)

func (s GlyphSet) String() string {
	switch s {
	case SetKatakana:
		return "katakana"
	case SetLatin:
		return "latin"
	case SetDigits:
		return "digits"
	case SetSpecial:
		return "special"
	}
	return "unknown"
}

// Palette groups the glyph sets the rain draws from.
type Palette struct {
	Katakana []rune
	Latin    []rune
	Digits   []rune
	// Special is not used by DrawGlyph; the dashboard borrows it for glitches.
	Special []rune
}

// DefaultPalette returns the katakana, latin, digit and punctuation sets.
func DefaultPalette() Palette {
	return Palette{
		Katakana: []rune("アァカサタナハマヤャラワガザダバパイィキシチニヒミリヰギジヂビピウゥクスツヌフムユュルグズブヅプエェケセテネヘメレヱゲゼデベペオォコソトノホモヨョロヲゴゾドボポヴッン"),
		Latin:    []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ"),
		Digits:   []rune("0123456789"),
		Special:  []rune("!@#$%^&*()_+-=[]{}|;:,.<>/?"),
	}
}

// DrawGlyph returns one glyph: katakana with probability 0.7, a digit with
// 0.2 and a latin letter with 0.1.
func (p Palette) DrawGlyph(r Rand) rune {
	roll := r.Float64()
	switch {
	case roll < katakanaShare:
		return pick(p.Katakana, r)
	case roll < digitShare:
		return pick(p.Digits, r)
	default:
		return pick(p.Latin, r)
	}
}

// SetOf reports which set a glyph belongs to.
func (p Palette) SetOf(g rune) GlyphSet {
	for _, s := range []struct {
		set   GlyphSet
		runes []rune
	}{
		{SetKatakana, p.Katakana},
		{SetLatin, p.Latin},
		{SetDigits, p.Digits},
		{SetSpecial, p.Special},
	} {
		for _, r := range s.runes {
			if r == g {
				return s.set
			}
		}
	}
	return SetUnknown
}

func pick(set []rune, r Rand) rune {
	if len(set) == 0 {
		return ' '
	}
	return set[r.Intn(len(set))]
}
