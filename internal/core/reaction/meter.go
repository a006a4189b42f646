package reaction

import (
	"fmt"
	"strings"
)

// Meter is the commentary attached to a score band.
type Meter struct {
	RecommendedAction string
	Technique         string
	Analysis          string
}

// Score band ceilings.
const (
	lowBandCeiling    = 3
	mediumBandCeiling = 6
	highBandCeiling   = 8
)

// MeterFor returns the commentary for a score. Scores are clamped first.
func MeterFor(score int) Meter {
	switch score = ClampScore(score); {
	case score <= lowBandCeiling:
		return Meter{
			RecommendedAction: "Ignore. Not worth the pixels.",
			Technique:         "Dismissive Understatement",
			Analysis:          "Minimizes the subject's importance to convey maximum apathy. A classic.",
		}
	case score <= mediumBandCeiling:
		return Meter{
			RecommendedAction: "Acknowledge with a single, weary sigh.",
			Technique:         "Feigned Ignorance",
			Analysis:          "Pretends to misunderstand the basic premise to highlight its inherent absurdity.",
		}
	case score <= highBandCeiling:
		return Meter{
			RecommendedAction: "Forward to group chat for communal despair.",
			Technique:         "Absurdist Comparison",
			Analysis:          "Equates the topic with something unrelated and mundane to reveal its hollow core.",
		}
	default:
		return Meter{
			RecommendedAction: "Print and frame as a monument to human folly.",
			Technique:         "Hyperbolic Resignation",
			Analysis:          "Accepts the worst possible outcome with such enthusiasm that it becomes a critique of the situation itself.",
		}
	}
}

// FormatShare renders the shareable text block for a reaction.
func FormatShare(original string, result Result) string {
	reaction := strings.TrimSpace(result.Reaction)
	if reaction == "" {
		reaction = "ShruggBot is speechless. A rare occurrence."
	}

	meter := MeterFor(result.Score)

	var sb strings.Builder

	fmt.Fprintf(&sb, "🧠 ShruggBot Response to:\n\"%s\"\n\n", original)
	fmt.Fprintf(&sb, "• Reaction: %s\n", reaction)
	fmt.Fprintf(&sb, "• Shrugg-o-Meter: %d/10\n", ClampScore(result.Score))
	fmt.Fprintf(&sb, "• Recommended Action: %s\n", meter.RecommendedAction)
	fmt.Fprintf(&sb, "• Snark Analysis: %s - %s\n", meter.Technique, meter.Analysis)
	sb.WriteString("— Sent from the ¯\\_(ツ)_/¯ Party")

	return sb.String()
}
