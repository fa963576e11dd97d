package world

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/grid"
	"github.com/jit-rpg/engine/pkg/quest"
)

// Reputation tier thresholds. Anything between unfriendly and friendly
// is neutral.
const (
	RepHostileMax    = -50
	RepUnfriendlyMax = -20
	RepFriendlyMin   = 20
	RepAlliedMin     = 50

	// AllyKillPenalty is applied to each declared ally when an entity
	// is destroyed.
	AllyKillPenalty = -15
)

// ReputationTier names the standing a reputation score earns.
func ReputationTier(score int) string {
	switch {
	case score <= RepHostileMax:
		return "hostile"
	case score <= RepUnfriendlyMax:
		return "unfriendly"
	case score >= RepAlliedMin:
		return "allied"
	case score >= RepFriendlyMin:
		return "friendly"
	default:
		return "neutral"
	}
}

// State is the shared mutable world: story flags, per-NPC reputation,
// the active map and its live entity roster. Rosters for maps the
// player has left are kept so revisits see what was done there.
type State struct {
	catalog Catalog
	tracker *quest.Tracker
	bus     *event.Bus
	logger  *slog.Logger

	flags      map[string]bool
	reputation map[string]int

	current      *MapData
	entities     []*Entity
	entityStates map[string][]*Entity
}

// NewState builds an empty world and subscribes the quest-objective
// hooks on the bus.
func NewState(catalog Catalog, tracker *quest.Tracker, bus *event.Bus, logger *slog.Logger) *State {
	s := &State{
		catalog:      catalog,
		tracker:      tracker,
		bus:          bus,
		logger:       logger,
		flags:        make(map[string]bool),
		reputation:   make(map[string]int),
		entityStates: make(map[string][]*Entity),
	}
	s.bindQuestHooks()
	return s
}

// Reset clears flags, reputation and all entity state for a new game.
func (s *State) Reset() {
	s.flags = make(map[string]bool)
	s.reputation = make(map[string]int)
	s.current = nil
	s.entities = nil
	s.entityStates = make(map[string][]*Entity)
}

// SetFlag records a story flag and announces the change.
func (s *State) SetFlag(key string, value bool) {
	s.flags[key] = value
	s.bus.Publish(event.FlagSet, key, value)
}

// HasFlag reports whether a flag is set true.
func (s *State) HasFlag(key string) bool {
	return s.flags[key]
}

// GetFlag returns the stored value and whether the flag was ever set.
func (s *State) GetFlag(key string) (bool, bool) {
	v, ok := s.flags[key]
	return v, ok
}

// Reputation returns the current standing with an NPC. Unknown ids are
// neutral zero.
func (s *State) Reputation(npcID string) int {
	return s.reputation[npcID]
}

// ChangeReputation shifts standing by a delta and reports the shift.
func (s *State) ChangeReputation(npcID string, delta int) {
	s.reputation[npcID] += delta
	verb := "improved"
	if delta < 0 {
		verb = "worsened"
	}
	s.bus.Publish(event.UIMessage, event.MsgSystem,
		fmt.Sprintf("Your reputation with %s has %s.", npcID, verb))
}

// SetReputation pins standing to an absolute value.
func (s *State) SetReputation(npcID string, value int) {
	s.reputation[npcID] = value
}

// SetMap makes a decoded map current and materializes its entity
// roster, reusing the saved roster if the player has been here before.
func (s *State) SetMap(m *MapData) {
	s.current = m
	if saved, ok := s.entityStates[m.ID]; ok {
		s.entities = saved
		return
	}

	s.entities = nil
	for _, pl := range m.Placements {
		def, ok := s.catalog.Entity(pl.Entity)
		if !ok {
			s.logger.Warn("entity not found", "entity_id", pl.Entity, "map_id", m.ID)
			continue
		}
		s.entities = append(s.entities, &Entity{
			Definition: *def,
			InstanceID: fmt.Sprintf("%s_%s_%d_%d", m.ID, pl.Entity, pl.Position.X, pl.Position.Y),
			Position:   pl.Position,
			Alive:      true,
		})
	}
	s.entityStates[m.ID] = s.entities
}

// CurrentMap returns the active map, or nil before the first load.
func (s *State) CurrentMap() *MapData {
	return s.current
}

// Entities returns the live roster for the active map.
func (s *State) Entities() []*Entity {
	return s.entities
}

// EntityAt returns the living entity on a tile, if any.
func (s *State) EntityAt(p grid.Point) *Entity {
	for _, e := range s.entities {
		if e.Alive && e.Position == p {
			return e
		}
	}
	return nil
}

// BlockingEntityAt returns the living blocking entity on a tile, if any.
func (s *State) BlockingEntityAt(p grid.Point) *Entity {
	for _, e := range s.entities {
		if e.Alive && e.Blocking && e.Position == p {
			return e
		}
	}
	return nil
}

// RemoveEntity drops an entity from the roster entirely (consumed
// pickups). Destroyed enemies stay on the roster as not-alive until
// combat removes them.
func (s *State) RemoveEntity(target *Entity) {
	for i, e := range s.entities {
		if e == target {
			s.entities = append(s.entities[:i:i], s.entities[i+1:]...)
			break
		}
	}
	if s.current != nil {
		s.entityStates[s.current.ID] = s.entities
	}
}

// EntityStates returns the per-map rosters for persistence.
func (s *State) EntityStates() map[string][]*Entity {
	return s.entityStates
}

// LoadEntityStates replaces the per-map rosters from a save.
func (s *State) LoadEntityStates(states map[string][]*Entity) {
	if states == nil {
		states = make(map[string][]*Entity)
	}
	s.entityStates = states
}

// Flags returns a copy of the flag table for persistence.
func (s *State) Flags() map[string]bool {
	out := make(map[string]bool, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out
}

// LoadFlags replaces the flag table from a save.
func (s *State) LoadFlags(flags map[string]bool) {
	if flags == nil {
		flags = make(map[string]bool)
	}
	s.flags = flags
}

// ReputationTable returns a copy of all standings for persistence.
func (s *State) ReputationTable() map[string]int {
	out := make(map[string]int, len(s.reputation))
	for k, v := range s.reputation {
		out[k] = v
	}
	return out
}

// LoadReputation replaces all standings from a save.
func (s *State) LoadReputation(rep map[string]int) {
	if rep == nil {
		rep = make(map[string]int)
	}
	s.reputation = rep
}

// bindQuestHooks routes domain events into quest objectives: entering
// a map drives "go", interacting drives "talk", destruction drives
// "kill" (matched by target prefix so radroach_1 counts for radroach),
// and item pickup drives "fetch". Destroying an entity with declared
// allies also costs reputation with each of them.
func (s *State) bindQuestHooks() {
	s.bus.Subscribe(event.MapLoaded, func(args ...any) {
		mapID, ok := args[0].(string)
		if !ok {
			return
		}
		s.eachActiveObjective(func(questID string, obj quest.ObjectiveProgress) {
			if obj.Kind == quest.ObjectiveGo && obj.Target == mapID {
				s.tracker.UpdateObjective(questID, quest.ObjectiveGo, mapID, 1)
			}
		})
	})

	s.bus.Subscribe(event.EntityInteract, func(args ...any) {
		ent, ok := args[0].(*Entity)
		if !ok {
			return
		}
		s.eachActiveObjective(func(questID string, obj quest.ObjectiveProgress) {
			if obj.Kind == quest.ObjectiveTalk && obj.Target == ent.ID {
				s.tracker.UpdateObjective(questID, quest.ObjectiveTalk, ent.ID, 1)
			}
		})
	})

	s.bus.Subscribe(event.EntityDestroy, func(args ...any) {
		ent, ok := args[0].(*Entity)
		if !ok {
			return
		}
		s.eachActiveObjective(func(questID string, obj quest.ObjectiveProgress) {
			if obj.Kind == quest.ObjectiveKill && strings.HasPrefix(ent.ID, obj.Target) {
				s.tracker.UpdateObjective(questID, quest.ObjectiveKill, obj.Target, 1)
			}
		})

		for _, allyID := range ent.Allies {
			s.ChangeReputation(allyID, AllyKillPenalty)
		}
	})

	s.bus.Subscribe(event.ItemAdd, func(args ...any) {
		itemID, ok := args[0].(string)
		if !ok {
			return
		}
		s.eachActiveObjective(func(questID string, obj quest.ObjectiveProgress) {
			if obj.Kind == quest.ObjectiveFetch && obj.Target == itemID {
				s.tracker.UpdateObjective(questID, quest.ObjectiveFetch, itemID, 1)
			}
		})
	})
}

// eachActiveObjective visits a snapshot of active quest objectives, so
// handlers that complete a quest mid-walk do not invalidate iteration.
func (s *State) eachActiveObjective(fn func(questID string, obj quest.ObjectiveProgress)) {
	for _, entry := range s.tracker.ActiveQuests() {
		for _, obj := range entry.Instance.Objectives {
			fn(entry.ID, obj)
		}
	}
}
