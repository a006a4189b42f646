package links

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"

	apperrors "github.com/lueurxax/shruggbot/internal/core/errors"
)

const maxTitleRunes = 300

// Fetcher downloads a document.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Document, error)
}

// TitleResolver looks up the title of a web page or feed.
type TitleResolver struct {
	fetcher Fetcher
	cache   *expirable.LRU[string, string]
	logger  *zerolog.Logger
}

// NewTitleResolver creates a resolver. Resolved titles are cached for ttl;
// cacheSize <= 0 disables the cache.
func NewTitleResolver(fetcher Fetcher, cacheSize int, ttl time.Duration, logger *zerolog.Logger) *TitleResolver {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	r := &TitleResolver{fetcher: fetcher, logger: logger}

	if cacheSize > 0 {
		r.cache = expirable.NewLRU[string, string](cacheSize, nil, ttl)
	}

	return r
}

// ResolveTitle returns the feed or page title at rawURL. A document
// without a title yields apperrors.ErrNoTitle.
func (r *TitleResolver) ResolveTitle(ctx context.Context, rawURL string) (string, error) {
	if r.cache != nil {
		if title, ok := r.cache.Get(rawURL); ok {
			return title, nil
		}
	}

	doc, err := r.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	title, err := ExtractTitle(doc)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		r.cache.Add(rawURL, title)
	}

	r.logger.Debug().Str("url", rawURL).Str("title", title).Msg("resolved page title")

	return title, nil
}

// ExtractTitle decodes the document to UTF-8 and returns its feed title or
// its first HTML <title>.
func ExtractTitle(doc *Document) (string, error) {
	utf8Reader, err := charset.NewReader(bytes.NewReader(doc.Body), doc.ContentType)
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}

	body, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	if gofeed.DetectFeedType(bytes.NewReader(body)) != gofeed.FeedTypeUnknown {
		if title := feedTitle(body); title != "" {
			return title, nil
		}
	}

	html, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	title := cleanTitle(html.Find("head title").First().Text())
	if title == "" {
		title = cleanTitle(html.Find("title").First().Text())
	}

	if title == "" {
		return "", apperrors.ErrNoTitle
	}

	return title, nil
}

func feedTitle(body []byte) string {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	return cleanTitle(feed.Title)
}

// cleanTitle collapses whitespace and caps the length.
func cleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxTitleRunes {
		s = strings.TrimSpace(string(runes[:maxTitleRunes]))
	}

	return s
}
