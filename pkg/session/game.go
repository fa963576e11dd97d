package session

import (
	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/grid"
	"github.com/jit-rpg/engine/pkg/world"
)

// Starting loadout and the quest a fresh run opens on.
const (
	startingMap   = "vault42"
	startingQuest = "wake_up_call"
)

var startingItems = []string{"vault_suit", "stimpak", "stimpak"}

// StartNewGame builds a fresh level-1 character, resets every
// subsystem, loads the starting map and kicks off the opening quest.
func (s *Session) StartNewGame(name string, attrs map[actor.Attribute]int) {
	player := actor.NewPlayer(name, attrs)
	s.rules.Bind(player)
	s.rules.Recalculate(player)
	player.HP = player.MaxHP
	player.AP = player.MaxAP

	s.ledger.Reset()
	for _, id := range startingItems {
		s.ledger.AddItem(id, 1)
	}

	s.tracker.Reset()
	s.world.Reset()

	s.LoadMap(startingMap, "start")
	s.tracker.StartQuest(startingQuest)

	s.bus.Publish(event.UIMessage, event.MsgSystem,
		"You slowly open your eyes. The cryo pod hisses, releasing 210 years of accumulated ice and regret.")
	s.bus.Publish(event.UIMessage, event.MsgSystem,
		`A tinny voice echoes through the vault: "Good morning! Or afternoon. Or whatever passes for time when civilization has ended."`)
	s.bus.Publish(event.UIMessage, event.MsgHumor,
		"CHRONOS, the vault AI, seems thrilled to have someone to talk to. You already want to go back to sleep.")

	s.setMode(ModePlaying)
	s.bus.Publish(event.GameStart)
}

// LoadMap swaps the current map and drops the player on the named
// spawn, falling back to "start" then (1,1).
func (s *Session) LoadMap(mapID, spawnPoint string) {
	m, ok := s.maps.Map(mapID)
	if !ok {
		s.logger.Error("map not found", "map_id", mapID)
		return
	}
	player := s.rules.Player()
	if player == nil {
		s.logger.Error("load map with no player bound", "map_id", mapID)
		return
	}

	player.MapID = mapID
	player.Position = m.Spawn(spawnPoint)

	s.world.SetMap(m)
	s.updateFOV()

	s.bus.Publish(event.MapLoaded, mapID)
	s.bus.Publish(event.UIMessage, event.MsgSystem, "Entered: "+m.Name)
}

// TryMovePlayer attempts a one-tile step. Bumping a hostile opens
// combat, bumping a friendly interacts, and stepping onto an exit
// tile triggers the map transition instead of the move. Returns
// whether the player actually moved.
func (s *Session) TryMovePlayer(dx, dy int) bool {
	if s.mode != ModePlaying {
		return false
	}
	player := s.rules.Player()
	m := s.world.CurrentMap()
	if player == nil || m == nil {
		return false
	}

	dest := grid.Point{X: player.Position.X + dx, Y: player.Position.Y + dy}
	if !m.InBounds(dest) || !m.IsWalkable(dest) {
		return false
	}

	if blocker := s.world.BlockingEntityAt(dest); blocker != nil {
		if blocker.Hostile {
			s.startCombatWith(blocker)
		} else {
			s.InteractWith(blocker)
		}
		return false
	}

	if exit, ok := m.ExitAt(dest); ok {
		spawn := exit.TargetSpawn
		if spawn == "" {
			spawn = "start"
		}
		s.bus.Publish(event.MapChange, exit.TargetMap, spawn)
		return false
	}

	player.Position = dest
	s.updateFOV()
	s.bus.Publish(event.PlayerMove, dest.X, dest.Y)
	return true
}

// InteractWith routes an entity interaction: dialog for talkers,
// looting for containers, pickup for ground items.
func (s *Session) InteractWith(ent *world.Entity) {
	if ent == nil || !ent.Alive {
		return
	}
	s.bus.Publish(event.EntityInteract, ent)

	switch {
	case ent.DialogID != "":
		s.dialog.StartDialog(ent.DialogID, ent.ID)
	case ent.Kind == world.KindContainer:
		s.openContainer(ent)
	case ent.Kind == world.KindItemPickup:
		s.pickupItem(ent)
	}
}

// InteractNearby checks the four cardinal neighbors for something to
// interact with.
func (s *Session) InteractNearby() {
	player := s.rules.Player()
	if player == nil || s.mode != ModePlaying {
		return
	}

	offsets := []grid.Point{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}
	for _, off := range offsets {
		at := grid.Point{X: player.Position.X + off.X, Y: player.Position.Y + off.Y}
		if ent := s.world.EntityAt(at); ent != nil {
			s.InteractWith(ent)
			return
		}
	}

	s.bus.Publish(event.UIMessage, event.MsgSystem,
		"Nothing interesting to interact with. Story of your life, really.")
}

// Examine describes whatever sits on a tile.
func (s *Session) Examine(p grid.Point) {
	m := s.world.CurrentMap()
	if m == nil || !m.InBounds(p) {
		return
	}
	if ent := s.world.EntityAt(p); ent != nil {
		desc := ent.Description
		if desc == "" {
			desc = "You see " + ent.Name + "."
		}
		s.bus.Publish(event.UIMessage, event.MsgSystem, desc)
		return
	}
	if m.IsWalkable(p) {
		s.bus.Publish(event.UIMessage, event.MsgSystem, "You see: open ground")
	} else {
		s.bus.Publish(event.UIMessage, event.MsgSystem, "You see: a wall")
	}
}

func (s *Session) openContainer(ent *world.Entity) {
	if len(ent.Items) > 0 {
		for _, id := range ent.Items {
			s.ledger.AddItem(id, 1)
		}
		ent.Items = nil
		s.bus.Publish(event.UIMessage, event.MsgLoot,
			"You search the "+ent.Name+" and find some items.")
	} else {
		s.bus.Publish(event.UIMessage, event.MsgSystem,
			"The "+ent.Name+" is empty. Someone beat you to it.")
	}
}

func (s *Session) pickupItem(ent *world.Entity) {
	if ent.ItemID == "" {
		return
	}
	s.ledger.AddItem(ent.ItemID, 1)
	ent.Alive = false
	s.world.RemoveEntity(ent)
}

func (s *Session) startCombatWith(ent *world.Entity) {
	s.combat.StartCombat(ent)
}
