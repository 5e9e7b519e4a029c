package news

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit     = 10
	DefaultCategory  = "General"
	PlaceholderImage = "/placeholder.svg?height=400&width=600"
	BreakingCount    = 3
)

// Query is the caller's intent for one request cycle. A non-empty SearchTerm
// selects provider search; otherwise Category and Country filter headlines.
type Query struct {
	Category   string
	Country    string
	SearchTerm string
	Limit      int
}

func (q Query) normalized() Query {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	return q
}

// Values encodes the query the way the proxy endpoint expects it.
func (q Query) Values() url.Values {
	q = q.normalized()
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Country != "" {
		params.Set("country", q.Country)
	}
	if q.SearchTerm != "" {
		params.Set("q", q.SearchTerm)
	}
	params.Set("max", strconv.Itoa(q.Limit))
	return params
}

// Article is the display model. ID is the 1-based position in the response and
// is not stable across fetches.
type Article struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	Source      string `json:"source"`
	Time        string `json:"time"`
	Image       string `json:"image"`
	URL         string `json:"url"`
	Breaking    bool   `json:"breaking"`
}

// State is a snapshot of the fetcher as observed by presentation code.
type State struct {
	Query   Query
	News    []Article
	Loading bool
	Error   string
	Seq     uint64
}
