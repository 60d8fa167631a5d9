package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"travelmateAPI/internal/alert"
	"travelmateAPI/internal/storage"
	"travelmateAPI/internal/trip"
	"travelmateAPI/internal/user"
)

// PersistenceService serializes each entity as a JSON blob under a
// fixed key. Storage failures degrade to safe defaults: reads fall
// back to empty collections and writes log and move on, so a broken
// store never surfaces to the caller as an error.
type PersistenceService struct {
	store storage.Store
}

func NewPersistenceService(store storage.Store) *PersistenceService {
	return &PersistenceService{store: store}
}

func (s *PersistenceService) SaveTrips(ctx context.Context, trips []trip.Trip) {
	s.save(ctx, storage.KeyTrips, trips)
}

func (s *PersistenceService) LoadTrips(ctx context.Context) []trip.Trip {
	trips := []trip.Trip{}
	s.load(ctx, storage.KeyTrips, &trips)
	return trips
}

func (s *PersistenceService) SaveAlerts(ctx context.Context, alerts []alert.PriceAlert) {
	s.save(ctx, storage.KeyAlerts, alerts)
}

func (s *PersistenceService) LoadAlerts(ctx context.Context) []alert.PriceAlert {
	alerts := []alert.PriceAlert{}
	s.load(ctx, storage.KeyAlerts, &alerts)
	return alerts
}

func (s *PersistenceService) SaveUser(ctx context.Context, u *user.User) {
	if u == nil {
		return
	}
	s.save(ctx, storage.KeyUser, u)
}

func (s *PersistenceService) LoadUser(ctx context.Context) *user.User {
	u := &user.User{}
	if !s.load(ctx, storage.KeyUser, u) {
		return nil
	}
	return u
}

func (s *PersistenceService) GetLastSync(ctx context.Context) *time.Time {
	var t time.Time
	if !s.load(ctx, storage.KeyLastSync, &t) {
		return nil
	}
	return &t
}

func (s *PersistenceService) ClearAll(ctx context.Context) {
	for _, key := range []string{
		storage.KeyTrips, storage.KeyAlerts, storage.KeyUser,
		storage.KeyAchievements, storage.KeyStats, storage.KeyLastSync,
	} {
		if err := s.store.Delete(ctx, key); err != nil {
			log.Printf("Failed to clear %s: %v", key, err)
		}
	}
}

// backup is the export file layout. Achievement state and stats are
// carried as raw blobs so the persistence layer stays agnostic of the
// achievement engine's storage shape.
type backup struct {
	Trips        []trip.Trip        `json:"trips"`
	Alerts       []alert.PriceAlert `json:"alerts"`
	User         *user.User         `json:"user,omitempty"`
	Achievements json.RawMessage    `json:"achievements,omitempty"`
	Stats        json.RawMessage    `json:"stats,omitempty"`
	ExportDate   time.Time          `json:"exportDate"`
	Version      string             `json:"version"`
}

// Export serializes all persisted state for backup.
func (s *PersistenceService) Export(ctx context.Context) ([]byte, error) {
	b := backup{
		Trips:      s.LoadTrips(ctx),
		Alerts:     s.LoadAlerts(ctx),
		User:       s.LoadUser(ctx),
		ExportDate: time.Now(),
		Version:    "1.0",
	}
	b.Achievements = s.loadRaw(ctx, storage.KeyAchievements)
	b.Stats = s.loadRaw(ctx, storage.KeyStats)

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}
	return data, nil
}

// Import restores a backup produced by Export.
func (s *PersistenceService) Import(ctx context.Context, data []byte) error {
	var b backup
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("parse backup: %w", err)
	}

	if b.Trips != nil {
		s.SaveTrips(ctx, b.Trips)
	}
	if b.Alerts != nil {
		s.SaveAlerts(ctx, b.Alerts)
	}
	if b.User != nil {
		s.SaveUser(ctx, b.User)
	}
	if len(b.Achievements) > 0 {
		if err := s.store.Set(ctx, storage.KeyAchievements, b.Achievements); err != nil {
			log.Printf("Failed to import achievements: %v", err)
		}
	}
	if len(b.Stats) > 0 {
		if err := s.store.Set(ctx, storage.KeyStats, b.Stats); err != nil {
			log.Printf("Failed to import stats: %v", err)
		}
	}
	return nil
}

func (s *PersistenceService) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to serialize %s: %v", key, err)
		return
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		log.Printf("Failed to save %s: %v", key, err)
		return
	}
	s.touchLastSync(ctx)
}

// load returns false when the key is absent or unreadable.
func (s *PersistenceService) load(ctx context.Context, key string, v any) bool {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Failed to load %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("Failed to parse %s: %v", key, err)
		return false
	}
	return true
}

func (s *PersistenceService) loadRaw(ctx context.Context, key string) json.RawMessage {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return nil
	}
	return data
}

func (s *PersistenceService) touchLastSync(ctx context.Context) {
	data, err := json.Marshal(time.Now())
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, storage.KeyLastSync, data); err != nil {
		log.Printf("Failed to update last sync: %v", err)
	}
}
