package reaction

import "strings"

// Mode selects the persona and prompt templates used for a reaction.
type Mode string

// Supported modes.
const (
	ModeGeneral   Mode = "general"
	ModeCorporate Mode = "corporate"
	ModeHoroscope Mode = "horoscope"
	ModePolitical Mode = "political"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeGeneral, ModeCorporate, ModeHoroscope, ModePolitical}

// ParseMode maps a raw selector to a Mode. Anything unrecognized, including
// the empty string, resolves to ModeGeneral.
func ParseMode(raw string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModeCorporate, ModeHoroscope, ModePolitical:
		return m
	default:
		return ModeGeneral
	}
}

func (m Mode) String() string {
	return string(m)
}

// UsesTones reports whether the mode's persona is parameterized by tones.
func (m Mode) UsesTones() bool {
	return ParseMode(string(m)) == ModeGeneral
}
