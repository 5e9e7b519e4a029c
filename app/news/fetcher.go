package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lysyi3m/news-desk/app/gnews"
)

const subscriberBuffer = 16

// Fetcher issues one request cycle against the proxy endpoint per query change
// and keeps the display state of the latest cycle. Every cycle is numbered;
// results of a cycle that is no longer the latest are dropped, so the state
// always converges to the last issued query whatever the arrival order.
// Superseded requests are not cancelled.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time

	mu          sync.Mutex
	query       Query
	configured  bool
	closed      bool
	seq         uint64
	state       State
	settled     chan struct{}
	subscribers map[chan State]struct{}
	cycles      sync.WaitGroup
}

type FetcherOption func(*Fetcher)

func WithHTTPClient(httpClient *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if httpClient != nil {
			f.httpClient = httpClient
		}
	}
}

func WithClock(now func() time.Time) FetcherOption {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFetcher creates a fetcher for the proxy served at baseURL
// (e.g. http://localhost:8080).
func NewFetcher(baseURL string, opts ...FetcherOption) *Fetcher {
	settled := make(chan struct{})
	close(settled)

	f := &Fetcher{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  http.DefaultClient,
		now:         time.Now,
		settled:     settled,
		subscribers: make(map[chan State]struct{}),
		state:       State{News: []Article{}},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Configure starts a new request cycle when q differs from the current query.
// It returns false when the query is unchanged or the fetcher is closed.
func (f *Fetcher) Configure(ctx context.Context, q Query) bool {
	q = q.normalized()

	f.mu.Lock()
	if f.closed || (f.configured && f.query == q) {
		f.mu.Unlock()
		return false
	}
	f.query = q
	f.configured = true
	seq := f.issueLocked()
	f.mu.Unlock()

	go f.runCycle(ctx, seq, q)
	return true
}

// Refresh re-issues the current query.
func (f *Fetcher) Refresh(ctx context.Context) bool {
	f.mu.Lock()
	if f.closed || !f.configured {
		f.mu.Unlock()
		return false
	}
	q := f.query
	seq := f.issueLocked()
	f.mu.Unlock()

	go f.runCycle(ctx, seq, q)
	return true
}

func (f *Fetcher) issueLocked() uint64 {
	f.seq++
	f.cycles.Add(1)

	if !f.state.Loading {
		f.settled = make(chan struct{})
	}
	f.state.Loading = true
	f.state.Error = ""
	f.state.Query = f.query
	f.state.Seq = f.seq
	f.publishLocked()

	return f.seq
}

func (f *Fetcher) runCycle(ctx context.Context, seq uint64, q Query) {
	defer f.cycles.Done()

	raw, err := f.fetch(context.WithoutCancel(ctx), q)

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.seq {
		slog.Debug("Discarding superseded news response", "seq", seq, "latest", f.seq)
		return
	}

	if err != nil {
		slog.Error("Error fetching news", "seq", seq, "error", err)
		f.state.Error = err.Error()
		f.state.News = []Article{}
	} else {
		f.state.Error = ""
		f.state.News = Transform(raw, q.Category, f.now())
	}
	f.state.Loading = false
	close(f.settled)
	f.publishLocked()
}

func (f *Fetcher) fetch(ctx context.Context, q Query) ([]gnews.Article, error) {
	endpoint := fmt.Sprintf("%s/api/news?%s", f.baseURL, q.Values().Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Failed to fetch news: %d", resp.StatusCode)
	}

	var body struct {
		Articles []gnews.Article `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}

	return body.Articles, nil
}

// State returns a snapshot of the current state.
func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Wait blocks until the latest issued cycle has been applied.
func (f *Fetcher) Wait(ctx context.Context) (State, error) {
	f.mu.Lock()
	settled := f.settled
	f.mu.Unlock()

	select {
	case <-settled:
		return f.State(), nil
	case <-ctx.Done():
		return f.State(), ctx.Err()
	}
}

// Subscribe returns a channel receiving a snapshot after every state change.
// Snapshots are dropped for subscribers that fall behind.
func (f *Fetcher) Subscribe() (<-chan State, func()) {
	ch := make(chan State, subscriberBuffer)

	f.mu.Lock()
	if f.closed {
		close(ch)
		f.mu.Unlock()
		return ch, func() {}
	}
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if _, ok := f.subscribers[ch]; ok {
				delete(f.subscribers, ch)
				close(ch)
			}
		})
	}
}

// Close stops accepting queries, waits for every in-flight cycle, including
// superseded ones, and closes subscriber channels.
func (f *Fetcher) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()

	f.cycles.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		delete(f.subscribers, ch)
		close(ch)
	}
}

func (f *Fetcher) publishLocked() {
	snapshot := f.snapshotLocked()
	for ch := range f.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (f *Fetcher) snapshotLocked() State {
	s := f.state
	s.News = append([]Article(nil), f.state.News...)
	if s.News == nil {
		s.News = []Article{}
	}
	return s
}
