package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"travelmateAPI/internal/history"
	"travelmateAPI/internal/storage"
)

// maxHistoryDays is the retention window for price observations.
const maxHistoryDays = 90

// trendWindow is the number of recent points compared against the
// preceding window of the same size; routes with fewer than twice this
// many points have no trend signal and read as stable.
const trendWindow = 7

// HistoryService keeps a rolling per-route price log and derives
// lowest/highest/average and a coarse trend on read.
type HistoryService struct {
	store storage.Store
	mu    sync.Mutex
	now   func() time.Time
}

func NewHistoryService(store storage.Store) *HistoryService {
	return &HistoryService{store: store, now: time.Now}
}

// AddPricePoint appends an observation, prunes points older than the
// retention window, re-sorts ascending by time, and persists.
func (s *HistoryService) AddPricePoint(ctx context.Context, origin, destination string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rh := s.loadHistory(ctx, origin, destination)
	now := s.now()
	rh.History = append(rh.History, history.PricePoint{Date: now, Price: price})

	cutoff := now.AddDate(0, 0, -maxHistoryDays)
	kept := rh.History[:0]
	for _, p := range rh.History {
		if p.Date.After(cutoff) {
			kept = append(kept, p)
		}
	}
	rh.History = kept

	sort.Slice(rh.History, func(i, j int) bool {
		return rh.History[i].Date.Before(rh.History[j].Date)
	})

	data, err := json.Marshal(rh)
	if err != nil {
		log.Printf("Failed to serialize price history for %s: %v", rh.Route, err)
		return
	}
	if err := s.store.Set(ctx, historyKey(origin, destination), data); err != nil {
		log.Printf("Failed to save price history for %s: %v", rh.Route, err)
	}
}

// GetRouteHistory returns the stored log with statistics recomputed on
// read. A route with no observations yields zeroed stats and a stable
// trend.
func (s *HistoryService) GetRouteHistory(ctx context.Context, origin, destination string) history.RouteHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	rh := s.loadHistory(ctx, origin, destination)
	calculateStats(&rh)
	return rh
}

// GetPricePrediction estimates a price for the target date as the
// average over observations sharing its day of week. It reports false
// with fewer than 2*trendWindow observations; with no same-weekday
// points it falls back to the overall average.
func (s *HistoryService) GetPricePrediction(ctx context.Context, origin, destination string, targetDate time.Time) (float64, bool) {
	rh := s.GetRouteHistory(ctx, origin, destination)
	if len(rh.History) < 2*trendWindow {
		return 0, false
	}

	targetDay := targetDate.Weekday()
	var sum float64
	var count int
	for _, p := range rh.History {
		if p.Date.Weekday() == targetDay {
			sum += p.Price
			count++
		}
	}
	if count == 0 {
		return rh.AveragePrice, true
	}
	return sum / float64(count), true
}

// GetChartData flattens a route's history into labeled series.
func (s *HistoryService) GetChartData(ctx context.Context, origin, destination string) history.ChartData {
	rh := s.GetRouteHistory(ctx, origin, destination)
	cd := history.ChartData{
		Labels:  make([]string, 0, len(rh.History)),
		Prices:  make([]float64, 0, len(rh.History)),
		Average: rh.AveragePrice,
	}
	for _, p := range rh.History {
		cd.Labels = append(cd.Labels, p.Date.Format("Jan 2"))
		cd.Prices = append(cd.Prices, p.Price)
	}
	return cd
}

// GetAllRoutes lists every route key with stored history.
func (s *HistoryService) GetAllRoutes(ctx context.Context) []string {
	keys, err := s.store.Keys(ctx, storage.KeyHistoryPrefix)
	if err != nil {
		log.Printf("Failed to list history routes: %v", err)
		return nil
	}
	routes := make([]string, 0, len(keys))
	for _, k := range keys {
		routes = append(routes, strings.TrimPrefix(k, storage.KeyHistoryPrefix))
	}
	return routes
}

// ClearRouteHistory drops all stored observations for a route.
func (s *HistoryService) ClearRouteHistory(ctx context.Context, origin, destination string) {
	if err := s.store.Delete(ctx, historyKey(origin, destination)); err != nil {
		log.Printf("Failed to clear price history for %s-%s: %v", origin, destination, err)
	}
}

func (s *HistoryService) loadHistory(ctx context.Context, origin, destination string) history.RouteHistory {
	rh := history.RouteHistory{
		Route:       origin + "-" + destination,
		Origin:      origin,
		Destination: destination,
		History:     []history.PricePoint{},
		Trend:       history.TrendStable,
	}

	data, err := s.store.Get(ctx, historyKey(origin, destination))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Failed to load price history for %s: %v", rh.Route, err)
		}
		return rh
	}
	if err := json.Unmarshal(data, &rh); err != nil {
		log.Printf("Failed to parse price history for %s: %v", rh.Route, err)
	}
	if rh.History == nil {
		rh.History = []history.PricePoint{}
	}
	return rh
}

func calculateStats(rh *history.RouteHistory) {
	rh.Trend = history.TrendStable
	if len(rh.History) == 0 {
		rh.LowestPrice, rh.HighestPrice, rh.AveragePrice = 0, 0, 0
		return
	}

	lowest := rh.History[0].Price
	highest := rh.History[0].Price
	var sum float64
	for _, p := range rh.History {
		if p.Price < lowest {
			lowest = p.Price
		}
		if p.Price > highest {
			highest = p.Price
		}
		sum += p.Price
	}
	rh.LowestPrice = lowest
	rh.HighestPrice = highest
	rh.AveragePrice = sum / float64(len(rh.History))

	if len(rh.History) >= 2*trendWindow {
		n := len(rh.History)
		recentAvg := meanPrice(rh.History[n-trendWindow:])
		previousAvg := meanPrice(rh.History[n-2*trendWindow : n-trendWindow])

		switch {
		case recentAvg > previousAvg*1.05:
			rh.Trend = history.TrendUp
		case recentAvg < previousAvg*0.95:
			rh.Trend = history.TrendDown
		}
	}
}

func meanPrice(points []history.PricePoint) float64 {
	var sum float64
	for _, p := range points {
		sum += p.Price
	}
	return sum / float64(len(points))
}

func historyKey(origin, destination string) string {
	return storage.KeyHistoryPrefix + origin + "-" + destination
}
