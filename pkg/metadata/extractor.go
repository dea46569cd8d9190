// Package metadata scrapes preview data (title, description, image) from
// web pages.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

// UserAgent looks like a crawler so that servers hand out pre-rendered
// meta tags instead of blocking the request.
const UserAgent = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"

const (
	DefaultTimeout = 8 * time.Second
	maxBodyBytes   = 10 * 1024 * 1024
)

// Doer is the part of *http.Client the extractor needs
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Option func(*Extractor)

func WithClient(c Doer) Option {
	return func(e *Extractor) { e.client = c }
}

func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

// Extractor fetches a page and derives its Metadata. It holds no mutable
// state and is safe for concurrent use.
type Extractor struct {
	client  Doer
	timeout time.Duration
	log     logger.Logger
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract is the soft extraction: only a *ParseError is returned, every
// other failure yields the host-name fallback.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (domain.Metadata, error) {
	return Extract(ctx, e, rawURL, e.log)
}

// Fetch is the strict pipeline. Failures wrap ErrUnreachable or
// ErrMalformedDocument; an unparseable URL yields *ParseError.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (domain.Metadata, error) {
	u, err := ParseTarget(rawURL)
	if err != nil {
		return domain.Metadata{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	res, err := e.client.Do(req)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer res.Body.Close()

	e.log.Debug("metadata response",
		logger.String("url", rawURL),
		logger.Int("status", res.StatusCode),
		logger.Duration("duration", time.Since(start)))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return domain.Metadata{}, fmt.Errorf("%w: status %d", ErrUnreachable, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	return FromDocument(doc, u), nil
}

// FromDocument applies the field fallbacks to an already parsed page.
// page is the URL that was requested, used for the host-name title and
// for resolving relative image references.
func FromDocument(doc *goquery.Document, page *url.URL) domain.Metadata {
	title := firstNonEmpty(
		metaContent(doc, "property", "og:title"),
		strings.TrimSpace(doc.Find("title").First().Text()),
		page.Hostname(),
	)
	desc := firstNonEmpty(
		metaContent(doc, "property", "og:description"),
		metaContent(doc, "name", "description"),
	)
	image := firstNonEmpty(
		metaContent(doc, "property", "og:image"),
		metaContent(doc, "name", "twitter:image"),
	)

	return domain.Metadata{
		Title:           title,
		Description:     desc,
		PreviewImageURL: absoluteImage(image, page),
	}
}

// Fallback is the result used whenever the page cannot be fetched or parsed
func Fallback(page *url.URL) domain.Metadata {
	return domain.Metadata{Title: page.Hostname()}
}

// Extract runs f and converts every failure except *ParseError into the
// host-name fallback. It is safe to call speculatively on user input.
func Extract(ctx context.Context, f ports.MetadataFetcher, rawURL string, log logger.Logger) (domain.Metadata, error) {
	u, err := ParseTarget(rawURL)
	if err != nil {
		return domain.Metadata{}, err
	}

	m, err := f.Fetch(ctx, rawURL)
	if err == nil {
		return m, nil
	}
	if IsParseError(err) {
		return domain.Metadata{}, err
	}

	if log != nil {
		log.Warn("metadata extraction degraded to fallback",
			logger.String("url", rawURL),
			logger.Bool("unreachable", errors.Is(err, ErrUnreachable)),
			logger.Error(err))
	}
	return Fallback(u), nil
}

// ParseTarget accepts any URL the host-name fallback can be built from.
// Failures are always *ParseError.
func ParseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, &ParseError{URL: rawURL, Err: err}
	}
	if u.Hostname() == "" {
		return nil, &ParseError{URL: rawURL, Err: errors.New("missing host")}
	}
	return u, nil
}

// metaContent reads the content of the first <meta attr=key>. Open Graph
// keys live in property, plain and twitter keys in name.
func metaContent(doc *goquery.Document, attr, key string) string {
	sel := fmt.Sprintf(`meta[%s=%q]`, attr, key)
	return strings.TrimSpace(doc.Find(sel).First().AttrOr("content", ""))
}

func absoluteImage(ref string, page *url.URL) string {
	if ref == "" || hasHTTPScheme(ref) {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return page.Scheme + ":" + ref
	}
	sep := "/"
	if strings.HasPrefix(ref, "/") {
		sep = ""
	}
	return page.Scheme + "://" + page.Host + sep + ref
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
