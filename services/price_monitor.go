package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"travelmateAPI/internal/alert"
	"travelmateAPI/internal/pricing"
)

// PriceChecker is the slice of the price client the monitor needs.
type PriceChecker interface {
	CheckPrice(ctx context.Context, origin, destination string) (pricing.Quote, error)
	CheckPrices(ctx context.Context, routes []pricing.Route) (map[string]pricing.Quote, error)
}

// PriceMonitor orchestrates periodic batch price checks over
// caller-supplied alerts. It holds no persistent state of its own.
type PriceMonitor struct {
	client   PriceChecker
	interval time.Duration

	mu       sync.Mutex
	cron     *cron.Cron
	checking atomic.Bool
}

func NewPriceMonitor(client PriceChecker, interval time.Duration) *PriceMonitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &PriceMonitor{client: client, interval: interval}
}

// StartMonitoring runs an immediate check, then repeats on the
// configured period until StopMonitoring. Calling it again first
// cancels the prior schedule, so restarts are idempotent.
func (m *PriceMonitor) StartMonitoring(getAlerts func() []alert.PriceAlert, onUpdate func([]alert.PriceCheckResult)) {
	m.StopMonitoring()

	m.mu.Lock()
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", m.interval), func() {
		m.CheckAllPrices(context.Background(), getAlerts, onUpdate)
	}); err != nil {
		m.mu.Unlock()
		log.Printf("Failed to schedule price checks: %v", err)
		return
	}
	c.Start()
	m.cron = c
	m.mu.Unlock()

	go m.CheckAllPrices(context.Background(), getAlerts, onUpdate)
	log.Printf("Price monitoring started (every %s)", m.interval)
}

// StopMonitoring cancels the periodic schedule. It is safe to call
// when monitoring is not running.
func (m *PriceMonitor) StopMonitoring() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cron != nil {
		m.cron.Stop()
		m.cron = nil
	}
}

// CheckAllPrices fetches prices for the deduplicated route set across
// all alerts and delivers every result in a single onUpdate call. An
// invocation arriving while a batch is already in flight is dropped.
func (m *PriceMonitor) CheckAllPrices(ctx context.Context, getAlerts func() []alert.PriceAlert, onUpdate func([]alert.PriceCheckResult)) {
	if !m.checking.CompareAndSwap(false, true) {
		return
	}
	defer m.checking.Store(false)

	alerts := getAlerts()
	if len(alerts) == 0 {
		return
	}

	routes := make([]pricing.Route, 0, len(alerts))
	for _, a := range alerts {
		routes = append(routes, pricing.Route{Origin: a.Origin, Destination: a.Destination})
	}

	quotes, err := m.client.CheckPrices(ctx, routes)
	if err != nil {
		log.Printf("Price monitoring error: %v", err)
		return
	}

	results := make([]alert.PriceCheckResult, 0, len(alerts))
	for _, a := range alerts {
		key := pricing.Route{Origin: a.Origin, Destination: a.Destination}.Key()
		newPrice := a.CurrentPrice
		if q, ok := quotes[key]; ok && q.Price > 0 {
			newPrice = q.Price
		}
		results = append(results, alert.PriceCheckResult{
			AlertID:   a.ID,
			OldPrice:  a.CurrentPrice,
			NewPrice:  newPrice,
			Triggered: newPrice <= a.TargetPrice,
		})
	}

	onUpdate(results)
}

// CheckSingleAlert performs a user-initiated check for one alert,
// bypassing batching. It never fails: on error the prior price is
// echoed back with Triggered false.
func (m *PriceMonitor) CheckSingleAlert(ctx context.Context, a alert.PriceAlert) alert.PriceCheckResult {
	quote, err := m.client.CheckPrice(ctx, a.Origin, a.Destination)
	if err != nil {
		return alert.PriceCheckResult{
			AlertID:   a.ID,
			OldPrice:  a.CurrentPrice,
			NewPrice:  a.CurrentPrice,
			Triggered: false,
			Error:     "Failed to check price",
		}
	}
	return alert.PriceCheckResult{
		AlertID:   a.ID,
		OldPrice:  a.CurrentPrice,
		NewPrice:  quote.Price,
		Triggered: quote.Price <= a.TargetPrice,
	}
}

// NextCheckTime reports when the next periodic check is due. It is
// zero while monitoring is stopped.
func (m *PriceMonitor) NextCheckTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cron == nil {
		return time.Time{}
	}
	if entries := m.cron.Entries(); len(entries) > 0 {
		return entries[0].Next
	}
	return time.Time{}
}
