package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lysyi3m/news-desk/app/gnews"
)

func writeArticles(w http.ResponseWriter, titles ...string) {
	articles := make([]gnews.Article, 0, len(titles))
	for _, title := range titles {
		articles = append(articles, gnews.Article{
			Title:       title,
			PublishedAt: "2026-10-14T11:59:30Z",
			Source:      gnews.Source{Name: "Example"},
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"articles": articles})
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
}

func waitState(t *testing.T, f *Fetcher) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	state, err := f.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	return state
}

func TestFetcherSuccess(t *testing.T) {
	var gotQuery atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/news" {
			t.Errorf("Expected path /api/news, got %s", r.URL.Path)
		}
		gotQuery.Store(r.URL.RawQuery)
		writeArticles(w, "one", "two", "three", "four")
	}))
	defer server.Close()

	f := NewFetcher(server.URL+"/", WithClock(fixedClock))
	defer f.Close()

	if !f.Configure(context.Background(), Query{Category: "Business", Country: "in"}) {
		t.Fatal("Expected first Configure to trigger a cycle")
	}

	state := waitState(t, f)

	if state.Loading {
		t.Error("Expected loading to be false after completion")
	}
	if state.Error != "" {
		t.Errorf("Expected no error, got %q", state.Error)
	}
	if len(state.News) != 4 {
		t.Fatalf("Expected 4 articles, got %d", len(state.News))
	}
	if state.News[0].ID != 1 || state.News[3].ID != 4 {
		t.Errorf("Expected sequential ids, got %d..%d", state.News[0].ID, state.News[3].ID)
	}
	if !state.News[2].Breaking || state.News[3].Breaking {
		t.Error("Expected the first three articles to be breaking")
	}
	if state.News[0].Time != "30 seconds ago" {
		t.Errorf("Expected '30 seconds ago', got %q", state.News[0].Time)
	}
	if state.News[0].Category != "Business" {
		t.Errorf("Expected category 'Business', got %q", state.News[0].Category)
	}

	raw, _ := gotQuery.Load().(string)
	for _, part := range []string{"category=Business", "country=in", "max=10"} {
		if !strings.Contains(raw, part) {
			t.Errorf("Expected query %q to contain %q", raw, part)
		}
	}
}

func TestFetcherFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to fetch news"}`))
	}))
	defer server.Close()

	f := NewFetcher(server.URL, WithClock(fixedClock))
	defer f.Close()

	f.Configure(context.Background(), Query{})
	state := waitState(t, f)

	if state.Loading {
		t.Error("Expected loading to be false")
	}
	if state.Error != "Failed to fetch news: 500" {
		t.Errorf("Expected status error, got %q", state.Error)
	}
	if state.News == nil || len(state.News) != 0 {
		t.Errorf("Expected empty news, got %v", state.News)
	}
}

func TestFetcherFailureClearsPreviousNews(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeArticles(w, "one")
	}))
	defer server.Close()

	f := NewFetcher(server.URL, WithClock(fixedClock))
	defer f.Close()

	f.Configure(context.Background(), Query{Category: "World"})
	if state := waitState(t, f); len(state.News) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(state.News))
	}

	fail.Store(true)
	f.Refresh(context.Background())
	state := waitState(t, f)

	if len(state.News) != 0 {
		t.Errorf("Expected news to be reset, got %d articles", len(state.News))
	}
	if state.Error == "" {
		t.Error("Expected error to be set")
	}
}

func TestFetcherUnchangedQueryIsNoop(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeArticles(w)
	}))
	defer server.Close()

	f := NewFetcher(server.URL)
	defer f.Close()

	q := Query{Category: "Sports", Limit: 10}
	f.Configure(context.Background(), q)
	waitState(t, f)

	if f.Configure(context.Background(), q) {
		t.Error("Expected unchanged query not to trigger")
	}
	if f.Configure(context.Background(), Query{Category: "Sports"}) {
		t.Error("Expected default limit to equal explicit limit 10")
	}
	if !f.Configure(context.Background(), Query{Category: "Sports", Limit: 11}) {
		t.Error("Expected limit change to trigger")
	}
	waitState(t, f)

	if got := requests.Load(); got != 2 {
		t.Errorf("Expected 2 requests, got %d", got)
	}
}

func TestFetcherLatestQueryWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("category") {
		case "first":
			close(started)
			<-release
			writeArticles(w, "stale one", "stale two")
		default:
			writeArticles(w, "fresh")
		}
	}))
	defer server.Close()

	f := NewFetcher(server.URL, WithClock(fixedClock))

	f.Configure(context.Background(), Query{Category: "first"})
	<-started

	if !f.State().Loading {
		t.Error("Expected loading while the first request is in flight")
	}

	f.Configure(context.Background(), Query{Category: "second"})
	state := waitState(t, f)

	if state.Query.Category != "second" {
		t.Errorf("Expected latest query 'second', got %q", state.Query.Category)
	}
	if len(state.News) != 1 || state.News[0].Title != "fresh" {
		t.Fatalf("Expected the second response, got %v", state.News)
	}

	close(release)
	f.Close()

	state = f.State()
	if len(state.News) != 1 || state.News[0].Title != "fresh" {
		t.Errorf("Expected the late first response to be discarded, got %v", state.News)
	}
	if state.Loading {
		t.Error("Expected loading to be false")
	}
	if state.Seq != 2 {
		t.Errorf("Expected seq 2, got %d", state.Seq)
	}
}

func TestFetcherCancelledContextDoesNotCancelRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		writeArticles(w, "one")
	}))
	defer server.Close()

	f := NewFetcher(server.URL)
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	f.Configure(ctx, Query{})
	cancel()

	state := waitState(t, f)
	if state.Error != "" {
		t.Errorf("Expected request to complete, got error %q", state.Error)
	}
	if len(state.News) != 1 {
		t.Errorf("Expected 1 article, got %d", len(state.News))
	}
}

func TestFetcherSubscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeArticles(w, "one")
	}))
	defer server.Close()

	f := NewFetcher(server.URL)
	updates, unsubscribe := f.Subscribe()
	defer unsubscribe()

	f.Configure(context.Background(), Query{})

	var states []State
	timeout := time.After(5 * time.Second)
	for len(states) < 2 {
		select {
		case s := <-updates:
			states = append(states, s)
		case <-timeout:
			t.Fatalf("Timed out waiting for updates, got %d", len(states))
		}
	}

	if !states[0].Loading {
		t.Error("Expected first update to report loading")
	}
	if states[1].Loading || len(states[1].News) != 1 {
		t.Errorf("Expected final update with 1 article, got %+v", states[1])
	}

	f.Close()
	if _, ok := <-updates; ok {
		t.Error("Expected channel to be closed after Close")
	}
	if f.Configure(context.Background(), Query{Category: "World"}) {
		t.Error("Expected Configure after Close to be ignored")
	}
}

func TestFetcherWaitWithoutCycles(t *testing.T) {
	f := NewFetcher("http://localhost")
	defer f.Close()

	state := waitState(t, f)
	if state.Loading || state.News == nil {
		t.Errorf("Expected idle empty state, got %+v", state)
	}
	if f.Refresh(context.Background()) {
		t.Error("Expected Refresh without a query to be ignored")
	}
}
