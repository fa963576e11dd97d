package session

import (
	"context"
	"time"

	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/inventory"
	"github.com/jit-rpg/engine/pkg/quest"
	"github.com/jit-rpg/engine/pkg/world"
)

// AutoSaveSlot is written on every map transition.
const AutoSaveSlot = "auto"

// Snapshot is the full serializable state of a run. Everything the
// engine cannot rebuild from the catalogs lives here.
type Snapshot struct {
	Player     *actor.Player              `json:"player"`
	Flags      map[string]bool            `json:"flags"`
	Reputation map[string]int             `json:"reputation,omitempty"`
	Quests     map[string]*quest.Instance `json:"quests"`
	Inventory  []inventory.Entry          `json:"inventory"`
	Entities   map[string][]*world.Entity `json:"entities"`
}

// SaveMeta describes one save slot for listing without loading the
// whole snapshot.
type SaveMeta struct {
	Slot        string    `json:"slot"`
	SavedAt     time.Time `json:"saved_at"`
	PlayerName  string    `json:"player_name"`
	PlayerLevel int       `json:"player_level"`
	Location    string    `json:"location"`
}

// SaveStore persists snapshots by slot name.
type SaveStore interface {
	Save(ctx context.Context, slot string, snap *Snapshot) error
	Load(ctx context.Context, slot string) (*Snapshot, error)
	List(ctx context.Context) ([]SaveMeta, error)
	Delete(ctx context.Context, slot string) error
}

// Snapshot captures the current run. Nested state is deep-copied so a
// held snapshot stays stable while play continues.
func (s *Session) Snapshot() *Snapshot {
	player := s.rules.Player()
	if player == nil {
		return nil
	}
	cp := *player
	return &Snapshot{
		Player:     &cp,
		Flags:      s.world.Flags(),
		Reputation: s.world.ReputationTable(),
		Quests:     s.tracker.Snapshot(),
		Inventory:  s.ledger.Entries(),
		Entities:   s.world.EntityStates(),
	}
}

// SaveGame writes the current run to a named slot. A store failure is
// reported as a warning message and leaves game state untouched.
func (s *Session) SaveGame(ctx context.Context, slot string) error {
	if s.store == nil {
		s.logger.Warn("save requested with no store configured")
		return nil
	}
	snap := s.Snapshot()
	if snap == nil {
		return nil
	}
	if err := s.store.Save(ctx, slot, snap); err != nil {
		s.logger.Error("save failed", "slot", slot, "error", err)
		s.bus.Publish(event.UIMessage, event.MsgWarning, "Save failed. The wasteland keeps no records.")
		return err
	}
	s.bus.Publish(event.GameSave, slot)
	if slot != AutoSaveSlot {
		s.bus.Publish(event.UIMessage, event.MsgSystem, "Game saved.")
	}
	return nil
}

// LoadGame restores a run from a slot. On success the session is left
// in playing mode on the snapshot's map; on failure nothing changes.
func (s *Session) LoadGame(ctx context.Context, slot string) error {
	if s.store == nil {
		s.logger.Warn("load requested with no store configured")
		return nil
	}
	snap, err := s.store.Load(ctx, slot)
	if err != nil {
		s.logger.Error("load failed", "slot", slot, "error", err)
		s.bus.Publish(event.UIMessage, event.MsgWarning, "Could not load that save.")
		return err
	}
	if snap == nil {
		s.bus.Publish(event.UIMessage, event.MsgWarning, "That save slot is empty.")
		return nil
	}
	s.Restore(snap)
	s.bus.Publish(event.GameLoad, slot)
	return nil
}

// Restore rebuilds session state from a snapshot.
func (s *Session) Restore(snap *Snapshot) {
	if snap == nil || snap.Player == nil {
		return
	}
	player := snap.Player
	s.rules.Bind(player)
	s.rules.Recalculate(player)

	s.tracker.Reset()
	s.tracker.LoadState(snap.Quests)

	s.ledger.Reset()
	s.ledger.LoadState(snap.Inventory)

	s.world.Reset()
	s.world.LoadFlags(snap.Flags)
	s.world.LoadReputation(snap.Reputation)
	s.world.LoadEntityStates(snap.Entities)

	// Re-enter the saved map. LoadMap resets the spawn position, so
	// the exact saved tile is restored after.
	pos := player.Position
	s.LoadMap(player.MapID, "start")
	player.Position = pos
	s.updateFOV()

	s.setMode(ModePlaying)
}

// AutoSave writes the auto slot, best effort.
func (s *Session) AutoSave() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.SaveGame(ctx, AutoSaveSlot)
}
