package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/inventory"
	"github.com/jit-rpg/engine/pkg/session"
)

func testSnapshot(name, mapID string) *session.Snapshot {
	p := actor.NewPlayer(name, nil)
	p.MapID = mapID
	p.Level = 3
	return &session.Snapshot{
		Player:     p,
		Flags:      map[string]bool{"met_chronos": true, "vault_door_open": false},
		Reputation: map[string]int{"dustbowl": 2},
		Inventory: []inventory.Entry{
			{ItemID: "stimpak", Count: 2},
			{ItemID: "pistol_10mm", Count: 1},
		},
	}
}

// storeUnderTest runs the same contract against both backends.
func storesUnderTest(t *testing.T) map[string]session.SaveStore {
	t.Helper()
	mr := miniredis.RunT(t)
	return map[string]session.SaveStore{
		"redis":  NewRedisStore(mr.Addr(), slog.New(slog.NewTextHandler(io.Discard, nil))),
		"memory": NewMemoryStore(),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Save(ctx, "slot1", testSnapshot("Ash", "wastes")))

			snap, err := store.Load(ctx, "slot1")
			require.NoError(t, err)
			require.NotNil(t, snap.Player)
			assert.Equal(t, "Ash", snap.Player.Name)
			assert.Equal(t, "wastes", snap.Player.MapID)
			assert.True(t, snap.Flags["met_chronos"])
			assert.False(t, snap.Flags["vault_door_open"])
			assert.Len(t, snap.Inventory, 2)

			// Overwrite the slot and check the new state wins.
			require.NoError(t, store.Save(ctx, "slot1", testSnapshot("Ash", "dustbowl")))
			snap, err = store.Load(ctx, "slot1")
			require.NoError(t, err)
			assert.Equal(t, "dustbowl", snap.Player.MapID)
		})
	}
}

func TestLoadMissingSlot(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load(context.Background(), "nope")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestList(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			metas, err := store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, metas)

			require.NoError(t, store.Save(ctx, "auto", testSnapshot("Ash", "vault42")))
			require.NoError(t, store.Save(ctx, "slot1", testSnapshot("Ash", "wastes")))

			metas, err = store.List(ctx)
			require.NoError(t, err)
			require.Len(t, metas, 2)

			slots := map[string]session.SaveMeta{}
			for _, m := range metas {
				slots[m.Slot] = m
			}
			assert.Equal(t, "vault42", slots["auto"].Location)
			assert.Equal(t, "wastes", slots["slot1"].Location)
			assert.Equal(t, "Ash", slots["slot1"].PlayerName)
			assert.Equal(t, 3, slots["slot1"].PlayerLevel)
			assert.False(t, slots["slot1"].SavedAt.IsZero())
		})
	}
}

func TestDelete(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Save(ctx, "slot1", testSnapshot("Ash", "wastes")))
			require.NoError(t, store.Delete(ctx, "slot1"))

			_, err := store.Load(ctx, "slot1")
			assert.ErrorIs(t, err, ErrNotFound)

			err = store.Delete(ctx, "slot1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoredSnapshotDoesNotAliasCaller(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	snap := testSnapshot("Ash", "wastes")
	require.NoError(t, store.Save(ctx, "slot1", snap))

	snap.Player.MapID = "mutated"
	snap.Flags["met_chronos"] = false

	loaded, err := store.Load(ctx, "slot1")
	require.NoError(t, err)
	assert.Equal(t, "wastes", loaded.Player.MapID)
	assert.True(t, loaded.Flags["met_chronos"])
}
