package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Fixed keys for each persisted entity. Per-route price history uses
// KeyHistoryPrefix + "ORIGIN-DEST".
const (
	KeyTrips         = "travelmate_trips"
	KeyAlerts        = "travelmate_alerts"
	KeyUser          = "travelmate_user"
	KeyAchievements  = "travelmate_achievements"
	KeyStats         = "travelmate_stats"
	KeyLastSync      = "travelmate_last_sync"
	KeyHistoryPrefix = "travelmate_price_history_"
)

// Store is a flat key-value store holding one JSON blob per entity.
// Implementations make no transaction or optimistic-concurrency
// guarantees; writers are last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
