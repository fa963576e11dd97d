// Package world holds shared session state: flags, reputation, the
// active map and its live entity roster. It also listens on the bus to
// drive quest objectives from domain events.
package world

import (
	"github.com/jit-rpg/engine/pkg/grid"
	"github.com/jit-rpg/engine/pkg/item"
)

// EntityKind classifies what an entity is and how interaction works.
type EntityKind string

const (
	KindNPC        EntityKind = "npc"
	KindEnemy      EntityKind = "enemy"
	KindContainer  EntityKind = "container"
	KindTerminal   EntityKind = "terminal"
	KindItemPickup EntityKind = "item_pickup"
)

// EntityKinds lists every valid kind, for content validation.
var EntityKinds = []EntityKind{KindNPC, KindEnemy, KindContainer, KindTerminal, KindItemPickup}

// Sprite is the character-cell representation the console renders.
type Sprite struct {
	Char string `json:"char" yaml:"char"`
	FG   string `json:"fg,omitempty" yaml:"fg,omitempty"`
	BG   string `json:"bg,omitempty" yaml:"bg,omitempty"`
}

// Definition is the authored shape of an entity. Combat fields only
// matter for enemies; container and pickup fields only for theirs.
type Definition struct {
	ID          string     `json:"id" yaml:"id"`
	Kind        EntityKind `json:"type" yaml:"type"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Sprite      Sprite     `json:"sprite" yaml:"sprite"`
	Blocking    bool       `json:"blocking,omitempty" yaml:"blocking,omitempty"`
	Hostile     bool       `json:"hostile,omitempty" yaml:"hostile,omitempty"`

	HP         int              `json:"hp,omitempty" yaml:"hp,omitempty"`
	MaxHP      int              `json:"max_hp,omitempty" yaml:"max_hp,omitempty"`
	MaxAP      int              `json:"max_ap,omitempty" yaml:"max_ap,omitempty"`
	Damage     item.DamageRange `json:"damage,omitempty" yaml:"damage,omitempty"`
	Accuracy   int              `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
	Range      int              `json:"range,omitempty" yaml:"range,omitempty"`
	Initiative int              `json:"initiative,omitempty" yaml:"initiative,omitempty"`
	XPReward   int              `json:"xp_reward,omitempty" yaml:"xp_reward,omitempty"`
	Loot       []string         `json:"loot,omitempty" yaml:"loot,omitempty"`
	CombatQuip string           `json:"combat_quip,omitempty" yaml:"combat_quip,omitempty"`
	DeathQuip  string           `json:"death_quip,omitempty" yaml:"death_quip,omitempty"`
	Allies     []string         `json:"allies,omitempty" yaml:"allies,omitempty"`

	DialogID string   `json:"dialog_id,omitempty" yaml:"dialog_id,omitempty"`
	Items    []string `json:"items,omitempty" yaml:"items,omitempty"`
	ItemID   string   `json:"item_id,omitempty" yaml:"item_id,omitempty"`
}

// Catalog resolves entity ids to definitions.
type Catalog interface {
	Entity(id string) (*Definition, bool)
}

// Entity is a live instance of a definition placed on a map. The
// definition fields are copied so per-instance mutation (looted
// containers, damaged enemies) never touches the catalog.
type Entity struct {
	Definition `yaml:",inline"`

	InstanceID string     `json:"instance_id" yaml:"instance_id"`
	Position   grid.Point `json:"position" yaml:"position"`
	Alive      bool       `json:"alive" yaml:"alive"`
	AP         int        `json:"ap,omitempty" yaml:"ap,omitempty"`
}
