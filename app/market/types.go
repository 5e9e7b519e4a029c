package market

// Quote is one row of a watchlist or index ticker.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Icon          string  `json:"icon,omitempty"`
	IsFavorite    bool    `json:"isFavorite"`
}

type Point struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

type Chart struct {
	Symbol    string  `json:"symbol"`
	Timeframe string  `json:"timeframe"`
	Points    []Point `json:"points"`
}

// instrument is a base price with the jitter applied around it and the spread
// of the generated change values.
type instrument struct {
	symbol     string
	name       string
	icon       string
	base       float64
	jitter     float64
	changeSpan float64
	pctSpan    float64
	favorite   bool
}
