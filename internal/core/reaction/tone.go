package reaction

// Axis names one of the tone sliders.
type Axis string

// Tone axes.
const (
	AxisSarcasm   Axis = "sarcasm"
	AxisNihilism  Axis = "nihilism"
	AxisAbsurdity Axis = "absurdity"
)

// Tone level bounds and bucket edges.
const (
	MinToneLevel     = 1
	MaxToneLevel     = 10
	DefaultToneLevel = 5

	mildCeiling     = 3
	moderateCeiling = 7
)

// Tones holds the general-mode slider positions.
type Tones struct {
	Sarcasm   int `json:"sarcasm"`
	Nihilism  int `json:"nihilism"`
	Absurdity int `json:"absurdity"`
}

// DefaultTones returns the mid-point position on every axis.
func DefaultTones() Tones {
	return Tones{Sarcasm: DefaultToneLevel, Nihilism: DefaultToneLevel, Absurdity: DefaultToneLevel}
}

// Normalize fills unset axes with the default level and clamps the rest.
func (t Tones) Normalize() Tones {
	return Tones{
		Sarcasm:   normalizeLevel(t.Sarcasm),
		Nihilism:  normalizeLevel(t.Nihilism),
		Absurdity: normalizeLevel(t.Absurdity),
	}
}

func normalizeLevel(level int) int {
	if level == 0 {
		return DefaultToneLevel
	}

	return ClampToneLevel(level)
}

// ClampToneLevel forces a level into [MinToneLevel, MaxToneLevel].
func ClampToneLevel(level int) int {
	switch {
	case level < MinToneLevel:
		return MinToneLevel
	case level > MaxToneLevel:
		return MaxToneLevel
	default:
		return level
	}
}

// toneVocabulary holds the mild, moderate and extreme descriptor per axis.
var toneVocabulary = map[Axis][3]string{
	AxisSarcasm:   {"lightly wry", "openly sarcastic", "scathingly, relentlessly sarcastic"},
	AxisNihilism:  {"mildly unimpressed", "weary and jaded", "utterly convinced nothing matters"},
	AxisAbsurdity: {"grounded", "a little surreal", "completely unhinged and absurd"},
}

// DescribeTone maps a slider level to the descriptor for its bucket:
// 1-3 mild, 4-7 moderate, 8-10 extreme. Out-of-range levels are clamped.
func DescribeTone(level int, axis Axis) string {
	vocab, ok := toneVocabulary[axis]
	if !ok {
		vocab = toneVocabulary[AxisSarcasm]
	}

	level = ClampToneLevel(level)

	switch {
	case level <= mildCeiling:
		return vocab[0]
	case level <= moderateCeiling:
		return vocab[1]
	default:
		return vocab[2]
	}
}
