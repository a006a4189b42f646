package links

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

var (
	// ErrTooManyRedirects indicates too many HTTP redirects.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrHTTPStatusNotOK indicates an HTTP response with a non-200 status code.
	ErrHTTPStatusNotOK = errors.New("HTTP status not OK")

	// ErrUnsupportedContentType indicates a response that cannot carry a title.
	ErrUnsupportedContentType = errors.New("unsupported content type")
)

const (
	defaultFetchTimeout = 10 * time.Second
	globalLimiterBurst  = 5
	maxRedirects        = 5
	maxBodySizeMB       = 5
	maxBodySizeBytes    = maxBodySizeMB * 1024 * 1024
	hostLimiterRate     = 1
	hostLimiterBurst    = 2
	maxTrackedHosts     = 1024
	dialTimeout         = 5 * time.Second
	dialKeepAlive       = 30 * time.Second

	userAgent    = "ShruggBot/1.0 (+link preview)"
	acceptHeader = "text/html,application/xhtml+xml,application/rss+xml,application/atom+xml;q=0.9,*/*;q=0.5"
)

// Document is a fetched response body with the headers needed to decode it.
type Document struct {
	URL         string
	ContentType string
	Body        []byte
}

// WebFetcher performs rate-limited GET requests for link previews.
// Loopback, link-local and private destinations are refused unless
// AllowPrivateNetworks is set.
type WebFetcher struct {
	client        *http.Client
	globalLimiter *rate.Limiter
	hostLimiters  *lru.Cache[string, *rate.Limiter]
	urlOptions    URLValidationOptions
	mu            sync.Mutex
}

// FetcherOption customizes a WebFetcher.
type FetcherOption func(*WebFetcher)

// AllowPrivateNetworks lets the fetcher reach local and private addresses.
func AllowPrivateNetworks() FetcherOption {
	return func(f *WebFetcher) {
		f.urlOptions.AllowPrivateNetworks = true
	}
}

// NewWebFetcher creates a fetcher allowing rps requests per second overall
// and one per second per host. Only the most recently seen hosts keep
// their limiter.
func NewWebFetcher(rps float64, timeout time.Duration, opts ...FetcherOption) *WebFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	// lru.New only fails on a non-positive size.
	hosts, _ := lru.New[string, *rate.Limiter](maxTrackedHosts)

	f := &WebFetcher{
		globalLimiter: rate.NewLimiter(rate.Limit(rps), globalLimiterBurst),
		hostLimiters:  hosts,
	}

	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout:       timeout,
		Transport:     f.transport(),
		CheckRedirect: f.checkRedirect,
	}

	return f
}

// transport dials through dialControl unless private networks are allowed.
// Proxies are not used, so the checked address is the one connected to.
func (f *WebFetcher) transport() *http.Transport {
	base, _ := http.DefaultTransport.(*http.Transport)
	t := base.Clone()

	if f.urlOptions.AllowPrivateNetworks {
		return t
	}

	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: dialKeepAlive,
		Control:   dialControl,
	}

	t.Proxy = nil
	t.DialContext = dialer.DialContext

	return t
}

func (f *WebFetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return ErrTooManyRedirects
	}

	if _, err := ValidateOutboundURL(req.URL.String(), f.urlOptions); err != nil {
		return fmt.Errorf("redirect: %w", err)
	}

	return nil
}

// Fetch downloads at most 5MB of the markup or feed at rawURL.
func (f *WebFetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	if _, err := ValidateOutboundURL(rawURL, f.urlOptions); err != nil {
		return nil, err
	}

	if err := f.wait(ctx, hostOf(rawURL)); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatusNotOK, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextual(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Document{
		URL:         resp.Request.URL.String(),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (f *WebFetcher) wait(ctx context.Context, host string) error {
	if err := f.globalLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("global rate limiter wait: %w", err)
	}

	if err := f.hostLimiter(host).Wait(ctx); err != nil {
		return fmt.Errorf("host rate limiter wait: %w", err)
	}

	return nil
}

func (f *WebFetcher) hostLimiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limiter, ok := f.hostLimiters.Get(host); ok {
		return limiter
	}

	limiter := rate.NewLimiter(hostLimiterRate, hostLimiterBurst)
	f.hostLimiters.Add(host, limiter)

	return limiter
}

// isTextual accepts markup, feeds and plain text. A missing header is
// accepted and left to the parser.
func isTextual(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case strings.HasSuffix(mediaType, "+xml"), mediaType == "application/xml":
		return true
	default:
		return false
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Host)
}
