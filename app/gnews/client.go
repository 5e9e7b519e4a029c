package gnews

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://gnews.io/api/v4"
	DefaultMax     = 10
	MaxLimit       = 100
)

type Client struct {
	apiKey     string
	baseURL    string
	language   string
	userAgent  string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithLanguage(language string) Option {
	return func(c *Client) {
		if language != "" {
			c.language = language
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		language:   "en",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch runs the provider operation selected by q.
func (c *Client) Fetch(ctx context.Context, q Query) ([]Article, error) {
	if q.SearchTerm != "" {
		return c.Search(ctx, q.SearchTerm, q.Max)
	}
	return c.TopHeadlines(ctx, q.Category, q.Country, q.Max)
}

func (c *Client) TopHeadlines(ctx context.Context, category, country string, max int) ([]Article, error) {
	params := c.baseParams(max)
	if category != "" {
		params.Set("category", strings.ToLower(category))
	}
	if country != "" {
		params.Set("country", country)
	}

	return c.get(ctx, "top-headlines", params)
}

func (c *Client) Search(ctx context.Context, term string, max int) ([]Article, error) {
	params := c.baseParams(max)
	params.Set("q", term)

	return c.get(ctx, "search", params)
}

func (c *Client) baseParams(max int) url.Values {
	if max <= 0 {
		max = DefaultMax
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("max", strconv.Itoa(max))
	params.Set("lang", c.language)
	return params
}

func (c *Client) get(ctx context.Context, op string, params url.Values) ([]Article, error) {
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, op, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	slog.Debug("Provider request completed", "op", op, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode}
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if body.Articles == nil {
		body.Articles = []Article{}
	}

	return body.Articles, nil
}
