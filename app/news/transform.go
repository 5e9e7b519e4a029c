package news

import (
	"cmp"
	"time"

	"github.com/lysyi3m/news-desk/app/gnews"
)

// Transform maps provider articles to display articles in response order.
func Transform(raw []gnews.Article, category string, now time.Time) []Article {
	articles := make([]Article, 0, len(raw))
	for i, a := range raw {
		articles = append(articles, Article{
			ID:          i + 1,
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			Category:    cmp.Or(category, DefaultCategory),
			Source:      a.Source.Name,
			Time:        FormatPublished(a.PublishedAt, now),
			Image:       cmp.Or(a.Image, PlaceholderImage),
			URL:         a.URL,
			Breaking:    i < BreakingCount,
		})
	}
	return articles
}

// Breaking returns the articles flagged as breaking.
func Breaking(articles []Article) []Article {
	breaking := []Article{}
	for _, a := range articles {
		if a.Breaking {
			breaking = append(breaking, a)
		}
	}
	return breaking
}
