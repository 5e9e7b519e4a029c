package feed

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// ErrInvalidURL is returned for article URLs that are not absolute http(s).
var ErrInvalidURL = errors.New("article url must be an absolute http or https URL")

const maxPageSize = 5 << 20

type ContentExtractor struct {
	httpClient *http.Client
	userAgent  string
}

// NewContentExtractor returns an extractor that only fetches pages from
// publicly routable hosts.
func NewContentExtractor(timeout time.Duration, userAgent string) *ContentExtractor {
	return &ContentExtractor{
		httpClient: newPublicHTTPClient(timeout),
		userAgent:  userAgent,
	}
}

// Extract downloads the article page and returns its readable content.
func (e *ContentExtractor) Extract(ctx context.Context, rawURL string) (Extracted, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return Extracted{}, ErrInvalidURL
	}

	data, err := e.fetchArticleContent(ctx, pageURL.String())
	if err != nil {
		return Extracted{}, err
	}

	return e.Run(data, pageURL)
}

func (e *ContentExtractor) fetchArticleContent(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrInvalidURL) {
			return nil, ErrInvalidURL
		}
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// Run extracts the readable article from an HTML page. Open Graph tags fill
// in whatever readability leaves empty.
func (e *ContentExtractor) Run(data []byte, pageURL *url.URL) (Extracted, error) {
	if len(data) == 0 {
		return Extracted{}, fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return Extracted{}, fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return Extracted{}, fmt.Errorf("no content extracted from HTML data")
	}

	result := Extracted{
		Title:    article.Title,
		Content:  article.Content,
		Excerpt:  article.Excerpt,
		Image:    article.Image,
		SiteName: article.SiteName,
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		slog.Debug("Failed to parse Open Graph tags", "error", err)
	} else {
		result.Title = cmp.Or(result.Title, metaContent(doc, "og:title"), strings.TrimSpace(doc.Find("title").First().Text()))
		result.Excerpt = cmp.Or(result.Excerpt, metaContent(doc, "og:description"), metaContent(doc, "description"))
		result.Image = cmp.Or(result.Image, metaContent(doc, "og:image"))
		result.SiteName = cmp.Or(result.SiteName, metaContent(doc, "og:site_name"))
	}

	if result.SiteName == "" && pageURL != nil {
		result.SiteName = strings.TrimPrefix(pageURL.Hostname(), "www.")
	}

	slog.Debug("Content extracted successfully",
		"title", result.Title,
		"content_length", len(result.Content))

	return result, nil
}

func metaContent(doc *goquery.Document, name string) string {
	selector := fmt.Sprintf(`meta[property="%s"], meta[name="%s"]`, name, name)
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
