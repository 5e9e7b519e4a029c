package feed

import (
	"github.com/lysyi3m/news-desk/app/gnews"
)

// Section is a named query preset backing one screen of the reader app.
type Section struct {
	Name     string `yaml:"-" json:"name"`
	Title    string `yaml:"title" json:"title"`
	Query    string `yaml:"query" json:"query,omitempty"`
	Category string `yaml:"category" json:"category,omitempty"`
	Country  string `yaml:"country" json:"country,omitempty"`
	Max      int    `yaml:"max" json:"max"`
}

func (s Section) GNewsQuery() gnews.Query {
	return gnews.Query{
		Category:   s.Category,
		Country:    s.Country,
		SearchTerm: s.Query,
		Max:        s.Max,
	}
}

// Channel describes the RSS channel wrapping a proxied result.
type Channel struct {
	Title       string
	Link        string
	Description string
	SelfPath    string
	Category    string
}

// Extracted is the readable form of an article page.
type Extracted struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Excerpt  string `json:"excerpt"`
	Image    string `json:"image"`
	SiteName string `json:"site_name"`
}
