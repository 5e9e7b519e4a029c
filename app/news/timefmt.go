package news

import (
	"time"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const localeDateLayout = "1/2/2006"

var agoUnits = []string{"second", "minute", "hour", "day"}

var agoCatalog = func() *catalog.Builder {
	b := catalog.NewBuilder()
	for _, unit := range agoUnits {
		b.Set(language.English, agoKey(unit),
			plural.Selectf(1, "%d",
				"one", "%d "+unit+" ago",
				"other", "%d "+unit+"s ago",
			))
	}
	return b
}()

func agoKey(unit string) string {
	return "%d " + unit + "s ago"
}

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parsePublished(published string) (time.Time, bool) {
	for _, layout := range publishedLayouts {
		loc := time.Local
		if layout == "2006-01-02" {
			loc = time.UTC
		}
		if t, err := time.ParseInLocation(layout, published, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatPublished renders an ISO-8601 timestamp relative to now. Anything older
// than a week is rendered as a M/D/YYYY date in the local timezone. Unparsable
// input is returned unchanged and future timestamps read as "0 seconds ago".
func FormatPublished(published string, now time.Time) string {
	t, ok := parsePublished(published)
	if !ok {
		return published
	}

	seconds := int(now.Sub(t) / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	p := message.NewPrinter(language.English, message.Catalog(agoCatalog))

	if seconds < 60 {
		return p.Sprintf(agoKey("second"), seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return p.Sprintf(agoKey("minute"), minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return p.Sprintf(agoKey("hour"), hours)
	}

	days := hours / 24
	if days < 7 {
		return p.Sprintf(agoKey("day"), days)
	}

	return t.In(time.Local).Format(localeDateLayout)
}
