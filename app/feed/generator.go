package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/news-desk/app/cfg"
	"github.com/lysyi3m/news-desk/app/gnews"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders the proxied provider result as an RSS 2.0 document, keeping the
// provider order.
func (g *Generator) Run(channel Channel, articles []gnews.Article) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", cmp.Or(channel.Title, "News Desk"), 4)

	baseURL := cfg.Get().BaseUrl
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", cfg.Get().Port)
	}
	g.writeElement(&buf, "link", cmp.Or(channel.Link, baseURL), 4)
	g.writeElement(&buf, "description", cmp.Or(channel.Description, "Latest headlines from GNews"), 4)

	selfLink := baseURL + cmp.Or(channel.SelfPath, "/api/news.rss")
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := time.Now().In(time.Local)
	if len(articles) > 0 {
		if published, ok := parseTime(articles[0].PublishedAt); ok {
			lastBuildDate = published
		}
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("News-Desk/%s", cfg.Get().Version), 4)
	g.writeElement(&buf, "language", cfg.Get().Language, 4)

	for _, article := range articles {
		g.writeItem(&buf, article, channel.Category)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, article gnews.Article, category string) {
	buf.WriteString("    <item>\n")

	if article.URL != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(article.URL)))
		xml.EscapeText(buf, []byte(article.URL))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", article.Title, 6)
	g.writeElement(buf, "link", article.URL, 6)
	g.writeElement(buf, "description", cmp.Or(article.Description, "No description available"), 6)

	if article.Content != "" && article.Content != article.Description {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(article.Content, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	if published, ok := parseTime(article.PublishedAt); ok {
		g.writeElement(buf, "pubDate", published.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "category", category, 6)

	if article.Source.Name != "" {
		buf.WriteString("      <source")
		if article.Source.URL != "" {
			buf.WriteString(fmt.Sprintf(" url=\"%s\"", html.EscapeString(article.Source.URL)))
		}
		buf.WriteString(">")
		xml.EscapeText(buf, []byte(article.Source.Name))
		buf.WriteString("</source>\n")
	}

	// Provider images carry no length or type, so JPEG with unknown length is assumed
	if article.Image != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"image/jpeg\" />\n",
			html.EscapeString(article.Image)))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func parseTime(value string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
