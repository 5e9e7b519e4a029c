package gnews

import "fmt"

// Article is a raw article as returned by the provider. Field names match the
// provider's JSON and are relayed unchanged by the proxy.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      Source `json:"source"`
}

type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Response struct {
	TotalArticles int       `json:"totalArticles"`
	Articles      []Article `json:"articles"`
}

// Query selects the provider operation: a non-empty SearchTerm uses search,
// anything else uses top-headlines.
type Query struct {
	Category   string
	Country    string
	SearchTerm string
	Max        int
}

// UpstreamError describes a failed provider call.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gnews %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("gnews %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
