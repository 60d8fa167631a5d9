package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelmateAPI/internal/provider"
)

type fakeProvider struct {
	mu    sync.Mutex
	price float64
	err   error
	calls []string
}

func (f *fakeProvider) FetchPrice(ctx context.Context, origin, destination, date string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, origin+"-"+destination+"@"+date)
	if f.err != nil {
		return 0, f.err
	}
	return f.price, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestGetPricesResolvesRoutes(t *testing.T) {
	p := &fakeProvider{price: 412.5}
	svc := NewQuoteService(p, time.Hour)

	prices := svc.GetPrices(context.Background(), []string{"JFK|LHR|2026-09-10"})
	require.Contains(t, prices, "JFK-LHR")
	require.NotNil(t, prices["JFK-LHR"])
	assert.Equal(t, 412.5, *prices["JFK-LHR"])
}

func TestGetPricesNilForUnpriceableRoute(t *testing.T) {
	p := &fakeProvider{err: provider.ErrNoOffer}
	svc := NewQuoteService(p, time.Hour)

	prices := svc.GetPrices(context.Background(), []string{"JFK|LHR|2026-09-10"})
	require.Contains(t, prices, "JFK-LHR")
	assert.Nil(t, prices["JFK-LHR"])
	assert.Zero(t, svc.CacheSize(), "failed lookups are not cached")
}

func TestGetPricesUsesCacheWithinTTL(t *testing.T) {
	p := &fakeProvider{price: 300}
	svc := NewQuoteService(p, time.Hour)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	wire := []string{"JFK|LHR|2026-09-10"}
	svc.GetPrices(context.Background(), wire)
	svc.GetPrices(context.Background(), wire)
	assert.Equal(t, 1, p.callCount())
	assert.Equal(t, 1, svc.CacheSize())

	// Past TTL the next lookup goes back to the provider
	svc.now = func() time.Time { return base.Add(61 * time.Minute) }
	svc.GetPrices(context.Background(), wire)
	assert.Equal(t, 2, p.callCount())
}

func TestGetPricesCacheKeyIncludesDate(t *testing.T) {
	p := &fakeProvider{price: 300}
	svc := NewQuoteService(p, time.Hour)

	svc.GetPrices(context.Background(), []string{"JFK|LHR|2026-09-10"})
	svc.GetPrices(context.Background(), []string{"JFK|LHR|2026-09-11"})
	assert.Equal(t, 2, p.callCount())
}

func TestGetPricesDefaultDate(t *testing.T) {
	p := &fakeProvider{price: 300}
	svc := NewQuoteService(p, time.Hour)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	svc.GetPrices(context.Background(), []string{"JFK|LHR"})
	require.Len(t, p.calls, 1)
	assert.Equal(t, "JFK-LHR@2026-08-08", p.calls[0])
}

func TestSweepEvictsExpiredEntries(t *testing.T) {
	p := &fakeProvider{price: 300}
	svc := NewQuoteService(p, time.Hour)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	svc.GetPrices(context.Background(), []string{"JFK|LHR|2026-09-10"})
	require.Equal(t, 1, svc.CacheSize())

	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	svc.sweep()
	assert.Zero(t, svc.CacheSize())
}
