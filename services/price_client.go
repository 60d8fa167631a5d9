package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"travelmateAPI/internal/pricing"
	"travelmateAPI/internal/ratelimit"
)

// PriceClient wraps the remote pricing endpoint. Every request goes
// through the rate limiter, and any failure (network, HTTP status, or
// a null price for a requested route) degrades to a synthetic
// fallback quote so callers are never blocked by an unreachable
// pricing backend.
type PriceClient struct {
	baseURL string
	http    *http.Client
	limiter *ratelimit.Limiter
}

func NewPriceClient(baseURL string, limiter *ratelimit.Limiter) *PriceClient {
	return &PriceClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

// CheckPrice looks up a single route. The returned quote is marked
// Fallback when the backend had no price for it.
func (c *PriceClient) CheckPrice(ctx context.Context, origin, destination string) (pricing.Quote, error) {
	route := pricing.Route{Origin: origin, Destination: destination}

	var quote pricing.Quote
	err := c.limiter.Execute(ctx, func(ctx context.Context) error {
		prices, err := c.fetchPrices(ctx, []string{route.WireFormat()})
		if err != nil {
			log.Printf("Price check failed for %s: %v", route.Key(), err)
			quote = fallbackQuote()
			return nil
		}
		quote = quoteFor(prices, route.Key())
		return nil
	})
	if err != nil {
		return pricing.Quote{}, err
	}
	return quote, nil
}

// CheckPrices looks up a batch of routes in one request, deduplicating
// by route key first. Every requested key is present in the result;
// keys the backend could not price get independent fallback quotes.
func (c *PriceClient) CheckPrices(ctx context.Context, routes []pricing.Route) (map[string]pricing.Quote, error) {
	unique := dedupeRoutes(routes)
	if len(unique) == 0 {
		return map[string]pricing.Quote{}, nil
	}

	wire := make([]string, 0, len(unique))
	for _, r := range unique {
		wire = append(wire, r.WireFormat())
	}

	quotes := make(map[string]pricing.Quote, len(unique))
	err := c.limiter.Execute(ctx, func(ctx context.Context) error {
		prices, err := c.fetchPrices(ctx, wire)
		if err != nil {
			log.Printf("Batch price check failed: %v", err)
			for _, r := range unique {
				quotes[r.Key()] = fallbackQuote()
			}
			return nil
		}
		for _, r := range unique {
			quotes[r.Key()] = quoteFor(prices, r.Key())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

func (c *PriceClient) fetchPrices(ctx context.Context, wireRoutes []string) (map[string]*float64, error) {
	body, err := json.Marshal(pricing.PriceRequest{Routes: wireRoutes})
	if err != nil {
		return nil, fmt.Errorf("marshal price request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/prices", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price request failed: status %d", resp.StatusCode)
	}

	var payload pricing.PriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}
	return payload.Prices, nil
}

func quoteFor(prices map[string]*float64, key string) pricing.Quote {
	if p, ok := prices[key]; ok && p != nil {
		return pricing.Quote{Price: *p}
	}
	return fallbackQuote()
}

// fallbackQuote fabricates a price in [200, 700).
func fallbackQuote() pricing.Quote {
	return pricing.Quote{Price: float64(200 + rand.Intn(500)), Fallback: true}
}

func dedupeRoutes(routes []pricing.Route) []pricing.Route {
	seen := make(map[string]bool, len(routes))
	unique := make([]pricing.Route, 0, len(routes))
	for _, r := range routes {
		if seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		unique = append(unique, r)
	}
	return unique
}
