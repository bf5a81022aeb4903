package preview

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/influencer-insight-go/internal/constants"
	"github.com/kapu/influencer-insight-go/pkg/errors"
	"go.uber.org/zap"
)

const (
	userAgent    = "Mozilla/5.0 (compatible; InfluencerInsightBot/1.0)"
	maxBodyBytes = 2 << 20
)

// Metadata is the OpenGraph summary of a profile page.
type Metadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type Scraper struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewScraper(timeout time.Duration, logger *zap.Logger) *Scraper {
	if timeout <= 0 {
		timeout = constants.Timeouts.Preview
	}
	return NewScraperWithClient(&http.Client{Timeout: timeout}, logger)
}

func NewScraperWithClient(client *http.Client, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{httpClient: client, logger: logger}
}

// Fetch downloads the profile page and reads its OpenGraph tags.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*Metadata, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewServiceError(
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode), "preview", "fetch", resp.StatusCode, nil)
	}
	if !isHTML(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("unexpected content type: %q", resp.Header.Get("Content-Type"))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	meta := &Metadata{
		Title:       firstMeta(doc, "og:title", "twitter:title"),
		Description: firstMeta(doc, "og:description", "twitter:description", "description"),
		Image:       resolve(target, firstMeta(doc, "og:image", "og:image:url", "twitter:image")),
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	s.logger.Debug("Profile preview fetched",
		zap.String("url", target.String()),
		zap.Bool("has_image", meta.Image != ""),
	)
	return meta, nil
}

func normalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid URL: missing host")
	}
	return u, nil
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// firstMeta returns the content of the first non-empty <meta> matching any
// of the names, checked in order against both property and name attributes.
func firstMeta(doc *goquery.Document, names ...string) string {
	for _, name := range names {
		var value string
		doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			key, ok := sel.Attr("property")
			if !ok || key == "" {
				key, _ = sel.Attr("name")
			}
			if !strings.EqualFold(strings.TrimSpace(key), name) {
				return true
			}
			content, _ := sel.Attr("content")
			value = strings.TrimSpace(content)
			return value == ""
		})
		if value != "" {
			return value
		}
	}
	return ""
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
