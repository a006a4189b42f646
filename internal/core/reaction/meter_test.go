package reaction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeterForBands(t *testing.T) {
	tests := []struct {
		score     int
		technique string
	}{
		{score: -2, technique: "Dismissive Understatement"},
		{score: 3, technique: "Dismissive Understatement"},
		{score: 4, technique: "Feigned Ignorance"},
		{score: 6, technique: "Feigned Ignorance"},
		{score: 7, technique: "Absurdist Comparison"},
		{score: 8, technique: "Absurdist Comparison"},
		{score: 9, technique: "Hyperbolic Resignation"},
		{score: 50, technique: "Hyperbolic Resignation"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.technique, MeterFor(tt.score).Technique, "score %d", tt.score)
	}
}

func TestFormatShare(t *testing.T) {
	got := FormatShare("Mondays", Result{Reaction: "Groundbreaking.", Score: 9})

	assert.True(t, strings.HasPrefix(got, "🧠 ShruggBot Response to:\n\"Mondays\"\n\n"))
	assert.Contains(t, got, "• Reaction: Groundbreaking.\n")
	assert.Contains(t, got, "• Shrugg-o-Meter: 9/10\n")
	assert.Contains(t, got, "• Recommended Action: Print and frame as a monument to human folly.\n")
	assert.Contains(t, got, "• Snark Analysis: Hyperbolic Resignation - ")
	assert.True(t, strings.HasSuffix(got, "— Sent from the ¯\\_(ツ)_/¯ Party"))
}

func TestFormatShareEmptyReaction(t *testing.T) {
	got := FormatShare("x", Result{Score: 0})

	assert.Contains(t, got, "• Reaction: ShruggBot is speechless. A rare occurrence.\n")
	assert.Contains(t, got, "• Shrugg-o-Meter: 1/10\n")
}
