package history

import "time"

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// PricePoint is a single observed price for a route.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// RouteHistory is the rolling per-route price log plus statistics
// derived on read.
type RouteHistory struct {
	Route        string       `json:"route"`
	Origin       string       `json:"origin"`
	Destination  string       `json:"destination"`
	History      []PricePoint `json:"history"`
	LowestPrice  float64      `json:"lowestPrice"`
	HighestPrice float64      `json:"highestPrice"`
	AveragePrice float64      `json:"averagePrice"`
	Trend        Trend        `json:"trend"`
}

// ChartData is the flattened series the price-history chart consumes.
type ChartData struct {
	Labels  []string  `json:"labels"`
	Prices  []float64 `json:"prices"`
	Average float64   `json:"average"`
}
