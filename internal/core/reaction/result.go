package reaction

import "math"

// Score bounds for the Shrugg-o-Meter.
const (
	MinScore = 1
	MaxScore = 10
)

// FallbackReaction is returned when the provider answered but its output
// could not be used.
const FallbackReaction = "Sorry, ShruggBot is speechless. A rare occurrence. ¯\\_(ツ)_/¯"

// Request is one reaction request.
type Request struct {
	Text  string `json:"text"`
	Mode  Mode   `json:"mode"`
	Tones Tones  `json:"tones"`
}

// Result is a reaction and its Shrugg-o-Meter score.
type Result struct {
	Reaction string `json:"reaction"`
	Score    int    `json:"score"`

	// Fallback marks a canned result. It never reaches the wire.
	Fallback bool `json:"-"`
}

// ClampScore forces a score into [MinScore, MaxScore].
func ClampScore(score int) int {
	switch {
	case score < MinScore:
		return MinScore
	case score > MaxScore:
		return MaxScore
	default:
		return score
	}
}

// roundScore rounds a provider score to the nearest integer and clamps it.
func roundScore(score float64) int {
	if math.IsNaN(score) {
		return MinScore
	}

	return int(math.Round(math.Max(MinScore, math.Min(MaxScore, score))))
}
