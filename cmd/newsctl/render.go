package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lysyi3m/news-desk/app/news"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	breakingStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	sourceStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	metaStyle     = lipgloss.NewStyle().Foreground(colorDim)
	bodyStyle     = lipgloss.NewStyle().PaddingLeft(4).Width(100)
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(colorAccent).MarginBottom(1)
)

func render(articles []news.Article) string {
	if len(articles) == 0 {
		return metaStyle.Render("No articles found") + "\n"
	}

	var b strings.Builder
	for _, a := range articles {
		line := fmt.Sprintf("%2d. %s", a.ID, titleStyle.Render(a.Title))
		if a.Breaking {
			line += " " + breakingStyle.Render("BREAKING")
		}
		b.WriteString(line)
		b.WriteString("\n")

		meta := sourceStyle.Render(a.Source) + metaStyle.Render(" · "+a.Category+" · "+a.Time)
		b.WriteString(bodyStyle.Render(meta))
		b.WriteString("\n")

		if a.Description != "" {
			b.WriteString(bodyStyle.Render(a.Description))
			b.WriteString("\n")
		}
		if a.URL != "" {
			b.WriteString(bodyStyle.Render(metaStyle.Render(a.URL)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderSection(s section) string {
	return headingStyle.Render(strings.ToUpper(s.Category)) + "\n" + render(s.Articles)
}
