package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelmateAPI/internal/alert"
	"travelmateAPI/internal/pricing"
	"travelmateAPI/internal/storage"
)

type alertFixture struct {
	svc          *AlertService
	achievements *AchievementService
	history      *HistoryService
	checker      *stubChecker
}

func newAlertFixture(t *testing.T, quotes map[string]pricing.Quote) *alertFixture {
	t.Helper()
	store := storage.NewMemoryStore()
	persistence := NewPersistenceService(store)
	achievements := NewAchievementService(store)
	history := NewHistoryService(store)
	checker := &stubChecker{quotes: quotes}
	monitor := NewPriceMonitor(checker, time.Hour)

	return &alertFixture{
		svc:          NewAlertService(persistence, achievements, history, monitor, nil),
		achievements: achievements,
		history:      history,
		checker:      checker,
	}
}

func TestCreateAlertValidation(t *testing.T) {
	f := newAlertFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateAlert(ctx, &alert.CreateAlertRequest{Destination: "LHR", TargetPrice: 300})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CreateAlert(ctx, &alert.CreateAlertRequest{Origin: "JFK", Destination: "LHR"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateAlertProbesPriceAndPersists(t *testing.T) {
	f := newAlertFixture(t, map[string]pricing.Quote{"JFK-LHR": {Price: 350}})
	ctx := context.Background()

	created, err := f.svc.CreateAlert(ctx, &alert.CreateAlertRequest{
		Origin: "JFK", Destination: "LHR", TargetPrice: 300,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 350.0, created.CurrentPrice)
	assert.False(t, created.Triggered)

	stored := f.svc.GetAlerts(ctx)
	require.Len(t, stored, 1)

	// Creation seeds the price history and the alert count stat
	rh := f.history.GetRouteHistory(ctx, "JFK", "LHR")
	require.Len(t, rh.History, 1)
	assert.Equal(t, 1, f.achievements.GetStats(ctx).AlertsCreated)
}

func TestCreateAlertTriggeredImmediately(t *testing.T) {
	f := newAlertFixture(t, map[string]pricing.Quote{"JFK-LHR": {Price: 250}})

	created, err := f.svc.CreateAlert(context.Background(), &alert.CreateAlertRequest{
		Origin: "JFK", Destination: "LHR", TargetPrice: 300,
	})
	require.NoError(t, err)
	assert.True(t, created.Triggered)
}

func TestCheckAlertNotFound(t *testing.T) {
	f := newAlertFixture(t, nil)
	_, err := f.svc.CheckAlert(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestCheckAlertUpdatesStoredAlert(t *testing.T) {
	f := newAlertFixture(t, map[string]pricing.Quote{"JFK-LHR": {Price: 400}})
	ctx := context.Background()

	created, err := f.svc.CreateAlert(ctx, &alert.CreateAlertRequest{
		Origin: "JFK", Destination: "LHR", TargetPrice: 300,
	})
	require.NoError(t, err)

	// The price falls below target before the next manual check
	f.checker.quotes["JFK-LHR"] = pricing.Quote{Price: 280}

	result, err := f.svc.CheckAlert(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 280.0, result.NewPrice)
	assert.True(t, result.Triggered)

	stored := f.svc.GetAlerts(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, 280.0, stored[0].CurrentPrice)
	assert.True(t, stored[0].Triggered)
}

func TestFreshTriggerRecordsSavings(t *testing.T) {
	f := newAlertFixture(t, map[string]pricing.Quote{"JFK-LHR": {Price: 400}})
	ctx := context.Background()

	created, err := f.svc.CreateAlert(ctx, &alert.CreateAlertRequest{
		Origin: "JFK", Destination: "LHR", TargetPrice: 300,
	})
	require.NoError(t, err)

	f.checker.quotes["JFK-LHR"] = pricing.Quote{Price: 250}
	_, err = f.svc.CheckAlert(ctx, created.ID)
	require.NoError(t, err)

	st := f.achievements.GetStats(ctx)
	assert.Equal(t, 50.0, st.TotalSaved)
	assert.Equal(t, 1, st.PriceDropsCaught)
	assert.Equal(t, 1, st.PerfectDeals)

	// A repeat check at the same price is not a fresh trigger
	_, err = f.svc.CheckAlert(ctx, created.ID)
	require.NoError(t, err)
	st = f.achievements.GetStats(ctx)
	assert.Equal(t, 50.0, st.TotalSaved)
	assert.Equal(t, 1, st.PriceDropsCaught)
}

func TestHalfPriceDropUnlocksPerfectTiming(t *testing.T) {
	f := newAlertFixture(t, map[string]pricing.Quote{"JFK-LHR": {Price: 600}})
	ctx := context.Background()

	created, err := f.svc.CreateAlert(ctx, &alert.CreateAlertRequest{
		Origin: "JFK", Destination: "LHR", TargetPrice: 350,
	})
	require.NoError(t, err)

	f.checker.quotes["JFK-LHR"] = pricing.Quote{Price: 300}
	_, err = f.svc.CheckAlert(ctx, created.ID)
	require.NoError(t, err)

	got := findAchievement(t, f.achievements.GetAchievements(ctx), "perfect_timing")
	assert.True(t, got.Unlocked)
}

func TestDeleteAlert(t *testing.T) {
	f := newAlertFixture(t, map[string]pricing.Quote{"JFK-LHR": {Price: 400}})
	ctx := context.Background()

	created, err := f.svc.CreateAlert(ctx, &alert.CreateAlertRequest{
		Origin: "JFK", Destination: "LHR", TargetPrice: 300,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAlert(ctx, created.ID))
	assert.Empty(t, f.svc.GetAlerts(ctx))

	assert.ErrorIs(t, f.svc.DeleteAlert(ctx, created.ID), ErrAlertNotFound)
}

func TestApplyCheckResultsSkipsErrorsAndUnknownIDs(t *testing.T) {
	f := newAlertFixture(t, map[string]pricing.Quote{"JFK-LHR": {Price: 400}})
	ctx := context.Background()

	created, err := f.svc.CreateAlert(ctx, &alert.CreateAlertRequest{
		Origin: "JFK", Destination: "LHR", TargetPrice: 300,
	})
	require.NoError(t, err)

	f.svc.ApplyCheckResults(ctx, []alert.PriceCheckResult{
		{AlertID: created.ID, OldPrice: 400, NewPrice: 0, Error: "Failed to check price"},
		{AlertID: "ghost", OldPrice: 100, NewPrice: 90, Triggered: true},
	})

	stored := f.svc.GetAlerts(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, 400.0, stored[0].CurrentPrice, "errored result leaves the alert untouched")
}
