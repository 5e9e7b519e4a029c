package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/lysyi3m/news-desk/app/news"
	"github.com/lysyi3m/news-desk/app/storage"
)

type options struct {
	Server   string `long:"server" env:"NEWS_SERVER" default:"http://localhost:8080" description:"News Desk server URL"`
	Category string `long:"category" short:"c" description:"Headline category (e.g. business, technology)"`
	Country  string `long:"country" description:"Two-letter country code"`
	Query    string `long:"query" short:"q" description:"Search term; overrides category and country"`
	Max      int    `long:"max" short:"n" default:"10" description:"Number of articles to request"`
	Timeout  int    `long:"timeout" default:"30" description:"Request timeout in seconds"`
	Breaking bool   `long:"breaking" description:"Only print breaking articles"`
	JSON     bool   `long:"json" description:"Print display articles as JSON"`
	Device   string `long:"device" short:"d" env:"NEWS_DEVICE" description:"Device id; prints every category it follows when no category or query is given"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	client := &http.Client{Timeout: time.Duration(opts.Timeout) * time.Second}

	// Without a device a single query is made and its articles printed as is.
	categories := []string{opts.Category}
	if opts.Device != "" && opts.Category == "" && opts.Query == "" {
		prefs, err := fetchPreferences(ctx, client, opts.Server, opts.Device)
		if err != nil {
			return err
		}
		categories = prefs.SelectedCategories()
		if len(categories) == 0 {
			return fmt.Errorf("device %s follows no categories", opts.Device)
		}
	}

	fetcher := news.NewFetcher(opts.Server, news.WithHTTPClient(client))
	defer fetcher.Close()

	sections := make([]section, 0, len(categories))
	for _, category := range categories {
		fetcher.Configure(ctx, news.Query{
			Category:   category,
			Country:    opts.Country,
			SearchTerm: opts.Query,
			Limit:      opts.Max,
		})

		state, err := fetcher.Wait(ctx)
		if err != nil {
			return err
		}
		if state.Error != "" {
			return errors.New(state.Error)
		}

		articles := state.News
		if opts.Breaking {
			articles = news.Breaking(articles)
		}
		sections = append(sections, section{Category: category, Articles: articles})
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if len(sections) == 1 && opts.Device == "" {
			return enc.Encode(sections[0].Articles)
		}
		return enc.Encode(sections)
	}

	if len(sections) == 1 && opts.Device == "" {
		fmt.Fprint(out, render(sections[0].Articles))
		return nil
	}
	for _, s := range sections {
		fmt.Fprint(out, renderSection(s))
	}
	return nil
}

type section struct {
	Category string         `json:"category"`
	Articles []news.Article `json:"articles"`
}

// fetchPreferences reads the news preferences the server keeps for a device.
func fetchPreferences(ctx context.Context, client *http.Client, server, device string) (storage.NewsPreferences, error) {
	endpoint := strings.TrimRight(server, "/") + "/api/devices/" + url.PathEscape(device) + "/preferences"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return storage.NewsPreferences{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return storage.NewsPreferences{}, fmt.Errorf("failed to fetch preferences: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return storage.NewsPreferences{}, fmt.Errorf("Failed to fetch preferences: %d", resp.StatusCode)
	}

	var prefs storage.NewsPreferences
	if err := json.NewDecoder(resp.Body).Decode(&prefs); err != nil {
		return storage.NewsPreferences{}, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return prefs, nil
}
