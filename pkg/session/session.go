// Package session wires the whole engine together: it owns the event
// bus and every subsystem, routes all effects and conditions through a
// single dispatcher, and exposes the inbound surface the presentation
// layer calls.
package session

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/combat"
	"github.com/jit-rpg/engine/pkg/dialog"
	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/grid"
	"github.com/jit-rpg/engine/pkg/inventory"
	"github.com/jit-rpg/engine/pkg/item"
	"github.com/jit-rpg/engine/pkg/quest"
	"github.com/jit-rpg/engine/pkg/rules"
	"github.com/jit-rpg/engine/pkg/world"
)

// Mode is the coarse session state. Dialog and combat are mutually
// exclusive with free movement; input routing keys off this.
type Mode string

const (
	ModeMenu     Mode = "menu"
	ModePlaying  Mode = "playing"
	ModeDialog   Mode = "dialog"
	ModeCombat   Mode = "combat"
	ModeGameOver Mode = "game_over"
)

// MapProvider hands the engine decoded maps. How maps are authored,
// encoded or cached is the provider's business.
type MapProvider interface {
	Map(id string) (*world.MapData, bool)
}

// Pathfinder plans a walk across the current map. An empty path means
// unreachable.
type Pathfinder interface {
	FindPath(m *world.MapData, from, to grid.Point) []grid.Point
}

// FieldOfView computes the visible tile set around an origin.
type FieldOfView interface {
	Visible(m *world.MapData, origin grid.Point, radius int) map[grid.Point]bool
}

// FOVRadius is how far the player sees.
const FOVRadius = 10

// Config collects the catalogs and collaborators a session needs.
// Items, Quests, Dialogs, Entities and Maps are required; the rest
// default to no-ops or sane implementations.
type Config struct {
	Items    item.Catalog
	Quests   quest.Catalog
	Dialogs  dialog.Catalog
	Entities world.Catalog
	Maps     MapProvider

	Pathfinder Pathfinder
	FOV        FieldOfView
	Store      SaveStore

	Logger *slog.Logger
	Roller rules.Roller
}

// Session is one run of the game. It owns the bus; everything else
// publishes into it and the presentation layer subscribes.
type Session struct {
	ID uuid.UUID

	bus    *event.Bus
	logger *slog.Logger

	maps     MapProvider
	pathfind Pathfinder
	fov      FieldOfView
	store    SaveStore

	rules   *rules.Resolver
	ledger  *inventory.Ledger
	tracker *quest.Tracker
	dialog  *dialog.Engine
	combat  *combat.Resolver
	world   *world.State

	mode    Mode
	visible map[grid.Point]bool
}

// New wires a session from catalogs and collaborators. The bus, all
// subsystem hookups and the effect dispatch boundary are established
// here; no game starts until StartNewGame or LoadGame.
func New(cfg Config) (*Session, error) {
	switch {
	case cfg.Items == nil:
		return nil, fmt.Errorf("session: item catalog is required")
	case cfg.Quests == nil:
		return nil, fmt.Errorf("session: quest catalog is required")
	case cfg.Dialogs == nil:
		return nil, fmt.Errorf("session: dialog catalog is required")
	case cfg.Entities == nil:
		return nil, fmt.Errorf("session: entity catalog is required")
	case cfg.Maps == nil:
		return nil, fmt.Errorf("session: map provider is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	roll := cfg.Roller
	if roll == nil {
		roll = rules.NewRoller()
	}

	bus := event.NewBus()
	res := rules.NewResolver(bus, logger, roll)
	ledger := inventory.NewLedger(cfg.Items, res, bus, logger)
	tracker := quest.NewTracker(cfg.Quests, res, ledger, bus, logger)
	dlg := dialog.NewEngine(cfg.Dialogs, res, bus, logger)
	w := world.NewState(cfg.Entities, tracker, bus, logger)
	cmb := combat.NewResolver(res, ledger, w, bus, logger, roll)

	s := &Session{
		ID:       uuid.New(),
		bus:      bus,
		logger:   logger,
		maps:     cfg.Maps,
		pathfind: cfg.Pathfinder,
		fov:      cfg.FOV,
		store:    cfg.Store,
		rules:    res,
		ledger:   ledger,
		tracker:  tracker,
		dialog:   dlg,
		combat:   cmb,
		world:    w,
		mode:     ModeMenu,
	}

	tracker.SetSink(s)
	dlg.SetHooks(s, s)
	s.bindEvents()

	return s, nil
}

func (s *Session) bindEvents() {
	s.bus.Subscribe(event.MapChange, func(args ...any) {
		mapID, _ := args[0].(string)
		spawn, _ := args[1].(string)
		s.LoadMap(mapID, spawn)
	})

	s.bus.Subscribe(event.DialogStart, func(...any) {
		if s.mode == ModePlaying {
			s.setMode(ModeDialog)
		}
	})
	s.bus.Subscribe(event.DialogEnd, func(...any) {
		if s.mode == ModeDialog {
			s.setMode(ModePlaying)
		}
	})

	s.bus.Subscribe(event.CombatStart, func(...any) {
		s.setMode(ModeCombat)
	})
	s.bus.Subscribe(event.CombatEnd, func(...any) {
		if s.mode == ModeCombat {
			s.setMode(ModePlaying)
		}
	})

	s.bus.Subscribe(event.PlayerDeath, func(...any) {
		s.setMode(ModeGameOver)
		s.bus.Publish(event.GameOver)
	})

	// Auto-save on every map change once a run is underway.
	s.bus.Subscribe(event.MapLoaded, func(...any) {
		if s.store != nil && s.rules.Player() != nil {
			s.AutoSave()
		}
	})
}

func (s *Session) setMode(m Mode) {
	if s.mode == m {
		return
	}
	s.mode = m
	s.bus.Publish(event.StateChange, m)
}

// Mode returns the current coarse state.
func (s *Session) Mode() Mode { return s.mode }

// Bus exposes the event bus for the presentation layer to subscribe.
func (s *Session) Bus() *event.Bus { return s.bus }

// Player returns the bound player record, nil before a game starts.
func (s *Session) Player() *actor.Player { return s.rules.Player() }

// Subsystem accessors for the presentation layer.
func (s *Session) Rules() *rules.Resolver       { return s.rules }
func (s *Session) Inventory() *inventory.Ledger { return s.ledger }
func (s *Session) Quests() *quest.Tracker       { return s.tracker }
func (s *Session) Dialog() *dialog.Engine       { return s.dialog }
func (s *Session) Combat() *combat.Resolver     { return s.combat }
func (s *Session) World() *world.State          { return s.world }

// Visible returns the tile set the player currently sees, nil when no
// field-of-view collaborator is wired.
func (s *Session) Visible() map[grid.Point]bool { return s.visible }

// PathTo plans a walk from the player to a target tile on the current
// map. Returns nil without a pathfinder or a loaded map.
func (s *Session) PathTo(target grid.Point) []grid.Point {
	m := s.world.CurrentMap()
	p := s.rules.Player()
	if s.pathfind == nil || m == nil || p == nil {
		return nil
	}
	return s.pathfind.FindPath(m, p.Position, target)
}

func (s *Session) updateFOV() {
	m := s.world.CurrentMap()
	p := s.rules.Player()
	if s.fov == nil || m == nil || p == nil {
		return
	}
	s.visible = s.fov.Visible(m, p.Position, FOVRadius)
}
