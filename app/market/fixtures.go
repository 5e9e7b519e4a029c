package market

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
)

var stocks = []instrument{
	{symbol: "RELIANCE", name: "Reliance Industries", base: 2943.75, jitter: 50, changeSpan: 4, pctSpan: 2, favorite: true},
	{symbol: "TCS", name: "Tata Consultancy Services", base: 3845.21, jitter: 40, changeSpan: 4, pctSpan: 2, favorite: true},
	{symbol: "HDFCBANK", name: "HDFC Bank", base: 1642.87, jitter: 30, changeSpan: 4, pctSpan: 2, favorite: true},
	{symbol: "INFY", name: "Infosys", base: 1478.75, jitter: 25, changeSpan: 4, pctSpan: 2, favorite: true},
	{symbol: "ICICIBANK", name: "ICICI Bank", base: 1072.82, jitter: 20, changeSpan: 4, pctSpan: 2},
	{symbol: "HINDUNILVR", name: "Hindustan Unilever", base: 2481.86, jitter: 35, changeSpan: 4, pctSpan: 2},
}

var indices = []instrument{
	{symbol: "^NSEI", name: "Nifty 50", base: 22055.2, jitter: 80, changeSpan: 50, pctSpan: 1},
	{symbol: "^BSESN", name: "Sensex", base: 72500.3, jitter: 150, changeSpan: 50, pctSpan: 1},
	{symbol: "^CNXBANK", name: "Nifty Bank", base: 48428.82, jitter: 100, changeSpan: 50, pctSpan: 1},
	{symbol: "^CNXIT", name: "Nifty IT", base: 34204.34, jitter: 90, changeSpan: 50, pctSpan: 1},
	{symbol: "^CNXAUTO", name: "Nifty Auto", base: 21239.98, jitter: 70, changeSpan: 50, pctSpan: 1},
	{symbol: "^CNXPHARMA", name: "Nifty Pharma", base: 18147.03, jitter: 60, changeSpan: 50, pctSpan: 1},
}

var cryptos = []instrument{
	{symbol: "BTC", name: "Bitcoin", icon: "₿", base: 62483.75, jitter: 1000, changeSpan: 200, pctSpan: 8, favorite: true},
	{symbol: "ETH", name: "Ethereum", icon: "Ξ", base: 3045.21, jitter: 100, changeSpan: 200, pctSpan: 8, favorite: true},
	{symbol: "SOL", name: "Solana", icon: "◎", base: 142.87, jitter: 10, changeSpan: 200, pctSpan: 8},
	{symbol: "ADA", name: "Cardano", icon: "₳", base: 0.45, jitter: 0.05, changeSpan: 200, pctSpan: 8},
	{symbol: "DOT", name: "Polkadot", icon: "●", base: 6.78, jitter: 0.5, changeSpan: 200, pctSpan: 8},
	{symbol: "DOGE", name: "Dogecoin", icon: "Ð", base: 0.15, jitter: 0.02, changeSpan: 200, pctSpan: 8},
}

// Timeframes lists the chart ranges in display order.
var Timeframes = []string{"1D", "1W", "1M", "3M", "1Y", "All"}

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Generator produces randomized market fixtures. It is safe for concurrent
// use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rnd: rnd}
}

func (g *Generator) Stocks() []Quote {
	return g.quotes(stocks)
}

func (g *Generator) Indices() []Quote {
	return g.quotes(indices)
}

func (g *Generator) Cryptos() []Quote {
	return g.quotes(cryptos)
}

// Points returns the number of chart points for a timeframe. Unknown
// timeframes use the 1D resolution.
func Points(timeframe string) int {
	switch timeframe {
	case "1W":
		return 7
	case "1M":
		return 30
	case "3M":
		return 90
	case "1Y":
		return 12
	case "All":
		return 60
	default:
		return 24
	}
}

// Chart builds a random walk with a half-sine trend for symbol. Unknown
// timeframes are served as 1D.
func (g *Generator) Chart(symbol, timeframe string) Chart {
	if !slices.Contains(Timeframes, timeframe) {
		timeframe = "1D"
	}
	points := Points(timeframe)

	g.mu.Lock()
	defer g.mu.Unlock()

	value := 100 + g.rnd.Float64()*100
	spread := value * 0.2

	series := make([]Point, 0, points)
	for i := 0; i < points; i++ {
		trend := math.Sin(float64(i)/float64(points)*math.Pi) * spread * 0.5
		noise := g.rnd.Float64()*spread*2 - spread
		value = value + trend + noise

		series = append(series, Point{
			Time:  label(timeframe, i),
			Value: round2(value),
		})
	}

	return Chart{
		Symbol:    strings.ToUpper(symbol),
		Timeframe: timeframe,
		Points:    series,
	}
}

func (g *Generator) quotes(list []instrument) []Quote {
	g.mu.Lock()
	defer g.mu.Unlock()

	quotes := make([]Quote, 0, len(list))
	for _, in := range list {
		quotes = append(quotes, Quote{
			Symbol:        in.symbol,
			Name:          in.name,
			Icon:          in.icon,
			IsFavorite:    in.favorite,
			Price:         in.base + g.spread(in.jitter),
			Change:        round2(g.spread(in.changeSpan)),
			ChangePercent: round2(g.spread(in.pctSpan)),
		})
	}
	return quotes
}

// spread returns a uniform value in [-width/2, width/2).
func (g *Generator) spread(width float64) float64 {
	return g.rnd.Float64()*width - width/2
}

func label(timeframe string, i int) string {
	switch timeframe {
	case "1D":
		return fmt.Sprintf("%d:00", i)
	case "1W":
		return weekdays[i%len(weekdays)]
	case "1M", "3M":
		return fmt.Sprintf("Day %d", i+1)
	default:
		return fmt.Sprintf("Month %d", i+1)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
