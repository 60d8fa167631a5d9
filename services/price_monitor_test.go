package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelmateAPI/internal/alert"
	"travelmateAPI/internal/pricing"
)

type stubChecker struct {
	mu         sync.Mutex
	quotes     map[string]pricing.Quote
	batchErr   error
	singleErr  error
	batchCalls int
	block      chan struct{}
}

func (s *stubChecker) CheckPrice(ctx context.Context, origin, destination string) (pricing.Quote, error) {
	if s.singleErr != nil {
		return pricing.Quote{}, s.singleErr
	}
	key := pricing.Route{Origin: origin, Destination: destination}.Key()
	return s.quotes[key], nil
}

func (s *stubChecker) CheckPrices(ctx context.Context, routes []pricing.Route) (map[string]pricing.Quote, error) {
	s.mu.Lock()
	s.batchCalls++
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if s.batchErr != nil {
		return nil, s.batchErr
	}

	out := make(map[string]pricing.Quote, len(routes))
	for _, r := range routes {
		if q, ok := s.quotes[r.Key()]; ok {
			out[r.Key()] = q
		}
	}
	return out, nil
}

func (s *stubChecker) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchCalls
}

func TestCheckAllPricesDeliversOneBatch(t *testing.T) {
	checker := &stubChecker{quotes: map[string]pricing.Quote{
		"JFK-LHR": {Price: 250},
		"SFO-NRT": {Price: 800},
	}}
	m := NewPriceMonitor(checker, time.Hour)

	alerts := []alert.PriceAlert{
		{ID: "a1", Origin: "JFK", Destination: "LHR", TargetPrice: 300, CurrentPrice: 400},
		{ID: "a2", Origin: "SFO", Destination: "NRT", TargetPrice: 700, CurrentPrice: 750},
		{ID: "a3", Origin: "JFK", Destination: "LHR", TargetPrice: 200, CurrentPrice: 260},
	}

	var got []alert.PriceCheckResult
	m.CheckAllPrices(context.Background(),
		func() []alert.PriceAlert { return alerts },
		func(results []alert.PriceCheckResult) { got = results },
	)

	require.Len(t, got, 3)
	assert.Equal(t, 1, checker.calls())

	// a1: 250 <= 300 triggers
	assert.Equal(t, 250.0, got[0].NewPrice)
	assert.Equal(t, 400.0, got[0].OldPrice)
	assert.True(t, got[0].Triggered)

	// a2: 800 > 700 does not
	assert.Equal(t, 800.0, got[1].NewPrice)
	assert.False(t, got[1].Triggered)

	// a3 shares a1's route but has a tighter target
	assert.Equal(t, 250.0, got[2].NewPrice)
	assert.False(t, got[2].Triggered)
}

func TestCheckAllPricesKeepsCurrentPriceWhenRouteUnpriced(t *testing.T) {
	checker := &stubChecker{quotes: map[string]pricing.Quote{}}
	m := NewPriceMonitor(checker, time.Hour)

	alerts := []alert.PriceAlert{
		{ID: "a1", Origin: "JFK", Destination: "LHR", TargetPrice: 300, CurrentPrice: 280},
	}

	var got []alert.PriceCheckResult
	m.CheckAllPrices(context.Background(),
		func() []alert.PriceAlert { return alerts },
		func(results []alert.PriceCheckResult) { got = results },
	)

	require.Len(t, got, 1)
	assert.Equal(t, 280.0, got[0].NewPrice)
	assert.True(t, got[0].Triggered, "existing price still compared against target")
}

func TestCheckAllPricesNoAlerts(t *testing.T) {
	checker := &stubChecker{}
	m := NewPriceMonitor(checker, time.Hour)

	called := false
	m.CheckAllPrices(context.Background(),
		func() []alert.PriceAlert { return nil },
		func(results []alert.PriceCheckResult) { called = true },
	)

	assert.False(t, called)
	assert.Equal(t, 0, checker.calls())
}

func TestCheckAllPricesSkipsWhileInFlight(t *testing.T) {
	block := make(chan struct{})
	checker := &stubChecker{
		quotes: map[string]pricing.Quote{"JFK-LHR": {Price: 250}},
		block:  block,
	}
	m := NewPriceMonitor(checker, time.Hour)

	alerts := []alert.PriceAlert{{ID: "a1", Origin: "JFK", Destination: "LHR", TargetPrice: 300}}
	getAlerts := func() []alert.PriceAlert { return alerts }

	done := make(chan struct{})
	go func() {
		m.CheckAllPrices(context.Background(), getAlerts, func([]alert.PriceCheckResult) {})
		close(done)
	}()

	// Wait for the first batch to be in flight
	require.Eventually(t, func() bool { return checker.calls() == 1 }, time.Second, time.Millisecond)

	// Second invocation is dropped while the first holds the guard
	m.CheckAllPrices(context.Background(), getAlerts, func([]alert.PriceCheckResult) {
		t.Error("overlapping check should not deliver results")
	})

	close(block)
	<-done
	assert.Equal(t, 1, checker.calls())
}

func TestCheckAllPricesBatchError(t *testing.T) {
	checker := &stubChecker{batchErr: errors.New("network down")}
	m := NewPriceMonitor(checker, time.Hour)

	m.CheckAllPrices(context.Background(),
		func() []alert.PriceAlert {
			return []alert.PriceAlert{{ID: "a1", Origin: "JFK", Destination: "LHR"}}
		},
		func(results []alert.PriceCheckResult) {
			t.Error("onUpdate should not be called on batch failure")
		},
	)
}

func TestCheckSingleAlert(t *testing.T) {
	checker := &stubChecker{quotes: map[string]pricing.Quote{"JFK-LHR": {Price: 199}}}
	m := NewPriceMonitor(checker, time.Hour)

	a := alert.PriceAlert{ID: "a1", Origin: "JFK", Destination: "LHR", TargetPrice: 200, CurrentPrice: 320}
	result := m.CheckSingleAlert(context.Background(), a)

	assert.Equal(t, "a1", result.AlertID)
	assert.Equal(t, 320.0, result.OldPrice)
	assert.Equal(t, 199.0, result.NewPrice)
	assert.True(t, result.Triggered)
	assert.Empty(t, result.Error)
}

func TestCheckSingleAlertFailureEchoesOldPrice(t *testing.T) {
	checker := &stubChecker{singleErr: errors.New("timeout")}
	m := NewPriceMonitor(checker, time.Hour)

	a := alert.PriceAlert{ID: "a1", Origin: "JFK", Destination: "LHR", TargetPrice: 500, CurrentPrice: 320}
	result := m.CheckSingleAlert(context.Background(), a)

	assert.Equal(t, 320.0, result.OldPrice)
	assert.Equal(t, 320.0, result.NewPrice)
	assert.False(t, result.Triggered)
	assert.Equal(t, "Failed to check price", result.Error)
}

func TestStartMonitoringRestartKeepsSingleSchedule(t *testing.T) {
	checker := &stubChecker{quotes: map[string]pricing.Quote{"JFK-LHR": {Price: 250}}}
	m := NewPriceMonitor(checker, time.Hour)
	getAlerts := func() []alert.PriceAlert {
		return []alert.PriceAlert{{ID: "a1", Origin: "JFK", Destination: "LHR", TargetPrice: 300, CurrentPrice: 400}}
	}
	onUpdate := func([]alert.PriceCheckResult) {}

	m.StartMonitoring(getAlerts, onUpdate)
	defer m.StopMonitoring()
	m.StartMonitoring(getAlerts, onUpdate)

	// Both starts fire an immediate check.
	require.Eventually(t, func() bool { return checker.calls() >= 2 }, time.Second, 10*time.Millisecond)

	m.mu.Lock()
	require.NotNil(t, m.cron)
	assert.Len(t, m.cron.Entries(), 1)
	m.mu.Unlock()

	next := m.NextCheckTime()
	require.False(t, next.IsZero())
	assert.WithinDuration(t, time.Now().Add(time.Hour), next, time.Minute)
}

func TestStopMonitoringHaltsChecks(t *testing.T) {
	checker := &stubChecker{quotes: map[string]pricing.Quote{"JFK-LHR": {Price: 250}}}
	m := NewPriceMonitor(checker, 20*time.Millisecond)
	getAlerts := func() []alert.PriceAlert {
		return []alert.PriceAlert{{ID: "a1", Origin: "JFK", Destination: "LHR", TargetPrice: 300, CurrentPrice: 400}}
	}

	m.StartMonitoring(getAlerts, func([]alert.PriceCheckResult) {})
	require.Eventually(t, func() bool { return checker.calls() >= 3 }, time.Second, 5*time.Millisecond)
	require.False(t, m.NextCheckTime().IsZero())

	m.StopMonitoring()
	time.Sleep(40 * time.Millisecond) // let any in-flight check drain
	n := checker.calls()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, n, checker.calls())
	assert.True(t, m.NextCheckTime().IsZero())
}
