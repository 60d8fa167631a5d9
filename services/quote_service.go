package services

import (
	"context"
	"log"
	"sync"
	"time"

	"travelmateAPI/internal/pricing"
	"travelmateAPI/internal/provider"
)

const (
	// quoteBatchSize bounds how many routes hit the provider at once.
	quoteBatchSize = 6
	// quoteBatchDelay spaces provider rounds to respect its rate limits.
	quoteBatchDelay = 100 * time.Millisecond
)

type cachedPrice struct {
	price float64
	at    time.Time
}

// QuoteService answers batched price lookups for the /api/prices
// endpoint, backed by the flight-offer provider and a TTL cache keyed
// by route plus departure date. Routes the provider cannot price map
// to nil entries; substituting fallbacks is the client's concern.
type QuoteService struct {
	provider provider.Provider
	ttl      time.Duration

	mu    sync.Mutex
	cache map[string]cachedPrice
	now   func() time.Time
}

func NewQuoteService(p provider.Provider, ttl time.Duration) *QuoteService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &QuoteService{
		provider: p,
		ttl:      ttl,
		cache:    make(map[string]cachedPrice),
		now:      time.Now,
	}
}

// GetPrices resolves a batch of wire-format routes ("O|D" or "O|D|date")
// into a route-key → price map. Lookups run in parallel within each
// batch of quoteBatchSize, with a short delay between batches.
func (s *QuoteService) GetPrices(ctx context.Context, wireRoutes []string) map[string]*float64 {
	prices := make(map[string]*float64, len(wireRoutes))

	for start := 0; start < len(wireRoutes); start += quoteBatchSize {
		end := start + quoteBatchSize
		if end > len(wireRoutes) {
			end = len(wireRoutes)
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, wire := range wireRoutes[start:end] {
			route, date := pricing.ParseWireRoute(wire)
			if date == "" {
				date = s.defaultDate()
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				price, ok := s.priceForRoute(ctx, route, date)
				mu.Lock()
				defer mu.Unlock()
				if ok {
					p := price
					prices[route.Key()] = &p
				} else {
					prices[route.Key()] = nil
				}
			}()
		}
		wg.Wait()

		if end < len(wireRoutes) {
			time.Sleep(quoteBatchDelay)
		}
	}

	return prices
}

// CacheSize reports the number of cached route prices (health endpoint).
func (s *QuoteService) CacheSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// StartCacheSweeper evicts expired entries on the TTL period until the
// context is cancelled.
func (s *QuoteService) StartCacheSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *QuoteService) priceForRoute(ctx context.Context, route pricing.Route, date string) (float64, bool) {
	cacheKey := route.Key() + "-" + date

	s.mu.Lock()
	cached, ok := s.cache[cacheKey]
	fresh := ok && s.now().Sub(cached.at) < s.ttl
	s.mu.Unlock()
	if fresh {
		return cached.price, true
	}

	price, err := s.provider.FetchPrice(ctx, route.Origin, route.Destination, date)
	if err != nil {
		log.Printf("Error fetching price for %s: %v", route.Key(), err)
		return 0, false
	}

	s.mu.Lock()
	s.cache[cacheKey] = cachedPrice{price: price, at: s.now()}
	s.mu.Unlock()
	return price, true
}

func (s *QuoteService) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, entry := range s.cache {
		if now.Sub(entry.at) > s.ttl {
			delete(s.cache, key)
		}
	}
}

// defaultDate is 7 days out, matching what the clients assume when a
// route carries no departure date.
func (s *QuoteService) defaultDate() string {
	return s.now().AddDate(0, 0, 7).Format("2006-01-02")
}
