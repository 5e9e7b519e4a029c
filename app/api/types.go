package api

import (
	"context"

	"github.com/lysyi3m/news-desk/app/feed"
	"github.com/lysyi3m/news-desk/app/gnews"
	"github.com/lysyi3m/news-desk/app/market"
)

type NewsProvider interface {
	Fetch(ctx context.Context, q gnews.Query) ([]gnews.Article, error)
}

type GeneratorInterface interface {
	Run(channel feed.Channel, articles []gnews.Article) (string, error)
}

type ExtractorInterface interface {
	Extract(ctx context.Context, rawURL string) (feed.Extracted, error)
}

type MarketInterface interface {
	Stocks() []market.Quote
	Indices() []market.Quote
	Cryptos() []market.Quote
	Chart(symbol, timeframe string) market.Chart
}

var (
	_ NewsProvider       = (*gnews.Client)(nil)
	_ GeneratorInterface = (*feed.Generator)(nil)
	_ ExtractorInterface = (*feed.ContentExtractor)(nil)
	_ MarketInterface    = (*market.Generator)(nil)
)

type newsResponse struct {
	Articles []gnews.Article `json:"articles"`
}

type errorResponse struct {
	Error string `json:"error"`
}
