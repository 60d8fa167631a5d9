package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelmateAPI/internal/alert"
	"travelmateAPI/internal/storage"
	"travelmateAPI/internal/trip"
	"travelmateAPI/internal/user"
)

func TestLoadDefaultsWhenEmpty(t *testing.T) {
	svc := NewPersistenceService(storage.NewMemoryStore())
	ctx := context.Background()

	assert.Empty(t, svc.LoadTrips(ctx))
	assert.Empty(t, svc.LoadAlerts(ctx))
	assert.Nil(t, svc.LoadUser(ctx))
	assert.Nil(t, svc.GetLastSync(ctx))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	svc := NewPersistenceService(storage.NewMemoryStore())
	ctx := context.Background()

	alerts := []alert.PriceAlert{{
		ID:           "a1",
		Origin:       "JFK",
		Destination:  "LHR",
		TargetPrice:  300,
		CurrentPrice: 350,
		LastChecked:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}}
	svc.SaveAlerts(ctx, alerts)

	got := svc.LoadAlerts(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
	assert.True(t, got[0].LastChecked.Equal(alerts[0].LastChecked))

	assert.NotNil(t, svc.GetLastSync(ctx), "saving touches last sync")
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := NewPersistenceService(storage.NewMemoryStore())

	src.SaveTrips(ctx, []trip.Trip{{ID: "t1", Name: "Tokyo", Destination: "NRT", Activities: []trip.Activity{}}})
	src.SaveAlerts(ctx, []alert.PriceAlert{{ID: "a1", Origin: "JFK", Destination: "LHR", TargetPrice: 300}})
	src.SaveUser(ctx, &user.User{ID: "u1", Name: "Alex", Email: "alex@example.com"})

	data, err := src.Export(ctx)
	require.NoError(t, err)

	dst := NewPersistenceService(storage.NewMemoryStore())
	require.NoError(t, dst.Import(ctx, data))

	trips := dst.LoadTrips(ctx)
	require.Len(t, trips, 1)
	assert.Equal(t, "Tokyo", trips[0].Name)

	alerts := dst.LoadAlerts(ctx)
	require.Len(t, alerts, 1)
	assert.Equal(t, "JFK", alerts[0].Origin)

	u := dst.LoadUser(ctx)
	require.NotNil(t, u)
	assert.Equal(t, "Alex", u.Name)
}

func TestImportRejectsGarbage(t *testing.T) {
	svc := NewPersistenceService(storage.NewMemoryStore())
	assert.Error(t, svc.Import(context.Background(), []byte("not json")))
}

func TestClearAll(t *testing.T) {
	svc := NewPersistenceService(storage.NewMemoryStore())
	ctx := context.Background()

	svc.SaveTrips(ctx, []trip.Trip{{ID: "t1", Name: "Tokyo"}})
	svc.SaveUser(ctx, &user.User{ID: "u1"})
	svc.ClearAll(ctx)

	assert.Empty(t, svc.LoadTrips(ctx))
	assert.Nil(t, svc.LoadUser(ctx))
	assert.Nil(t, svc.GetLastSync(ctx))
}
