package reaction

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/lueurxax/shruggbot/internal/platform/observability"
)

// NoTitleSentinel replaces a URL whose page title could not be resolved.
const NoTitleSentinel = "A mysterious webpage that could not even be bothered to have a title"

// Title resolution outcomes.
const (
	titleOutcomeResolved = "resolved"
	titleOutcomeFailed   = "failed"
)

// TitleResolver fetches the title of the document behind a URL.
type TitleResolver interface {
	ResolveTitle(ctx context.Context, rawURL string) (string, error)
}

// Preprocessor normalizes input text before prompt construction.
type Preprocessor struct {
	titles   TitleResolver
	maxRunes int
	logger   *zerolog.Logger
}

// NewPreprocessor creates a preprocessor. A nil resolver makes every URL
// resolve to NoTitleSentinel; maxRunes <= 0 disables truncation.
func NewPreprocessor(titles TitleResolver, maxRunes int, logger *zerolog.Logger) *Preprocessor {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Preprocessor{titles: titles, maxRunes: maxRunes, logger: logger}
}

// Preprocess returns the text to embed in the user prompt. In general mode
// an absolute http(s) URL is replaced with its page title. It never fails.
func (p *Preprocessor) Preprocess(ctx context.Context, text string, mode Mode) string {
	text = p.normalize(text)

	if ParseMode(string(mode)) != ModeGeneral || !IsURL(text) {
		return text
	}

	return p.resolveTitle(ctx, text)
}

func (p *Preprocessor) resolveTitle(ctx context.Context, rawURL string) string {
	if p.titles == nil {
		observability.TitleResolutions.WithLabelValues(titleOutcomeFailed).Inc()

		return NoTitleSentinel
	}

	title, err := p.titles.ResolveTitle(ctx, rawURL)
	title = p.normalize(title)

	if err != nil || title == "" {
		observability.TitleResolutions.WithLabelValues(titleOutcomeFailed).Inc()
		p.logger.Debug().Err(err).Str("url", rawURL).Msg("could not resolve page title")

		return NoTitleSentinel
	}

	observability.TitleResolutions.WithLabelValues(titleOutcomeResolved).Inc()

	return title
}

func (p *Preprocessor) normalize(text string) string {
	text = strings.TrimSpace(norm.NFC.String(text))

	if p.maxRunes <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= p.maxRunes {
		return text
	}

	return strings.TrimSpace(string(runes[:p.maxRunes]))
}

// IsURL reports whether text is a single absolute http or https URL with a host.
func IsURL(text string) bool {
	if text == "" || strings.ContainsAny(text, " \t\n") {
		return false
	}

	u, err := url.Parse(text)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(u.Scheme)

	return (scheme == "http" || scheme == "https") && u.Host != ""
}
