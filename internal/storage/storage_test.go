package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, KeyUser, []byte(`{"id":"u1"}`)))
			got, err := store.Get(ctx, KeyUser)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":"u1"}`, string(got))

			// Overwrite
			require.NoError(t, store.Set(ctx, KeyUser, []byte(`{"id":"u2"}`)))
			got, err = store.Get(ctx, KeyUser)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":"u2"}`, string(got))

			require.NoError(t, store.Delete(ctx, KeyUser))
			_, err = store.Get(ctx, KeyUser)
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting an absent key is not an error
			assert.NoError(t, store.Delete(ctx, KeyUser))
		})
	}
}

func TestStoreKeysPrefix(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, KeyHistoryPrefix+"JFK-LHR", []byte(`{}`)))
			require.NoError(t, store.Set(ctx, KeyHistoryPrefix+"SFO-NRT", []byte(`{}`)))
			require.NoError(t, store.Set(ctx, KeyTrips, []byte(`[]`)))

			keys, err := store.Keys(ctx, KeyHistoryPrefix)
			require.NoError(t, err)
			assert.Equal(t, []string{
				KeyHistoryPrefix + "JFK-LHR",
				KeyHistoryPrefix + "SFO-NRT",
			}, keys)
		})
	}
}
