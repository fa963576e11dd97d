// Package actor holds the runtime character records: the player and
// the enemy combatant templates spawned into the world.
package actor

import (
	"github.com/jit-rpg/engine/pkg/grid"
	"github.com/jit-rpg/engine/pkg/item"
)

// Slot names an equipment slot. Each slot holds at most one item.
type Slot string

const (
	SlotWeapon Slot = "weapon"
	SlotArmor  Slot = "armor"
)

// Equipment tracks the items currently worn or wielded. Equipped items
// live here, not in the stack-counted inventory.
type Equipment struct {
	Weapon *item.Definition `json:"weapon,omitempty"`
	Armor  *item.Definition `json:"armor,omitempty"`
}

// Player is the full player record. Derived stats (MaxHP through
// Initiative) are a pure function of attributes plus allocated skill
// points; rules.Resolver.Recalculate recomputes them after any
// attribute or level change and they are never edited directly.
type Player struct {
	Name       string            `json:"name"`
	Attributes map[Attribute]int `json:"attributes"`

	// Derived
	Skills           map[Skill]int `json:"skills"`
	MaxHP            int           `json:"max_hp"`
	MaxAP            int           `json:"max_ap"`
	CarryWeight      int           `json:"carry_weight"`
	CritChance       int           `json:"crit_chance"`
	CritMultiplier   float64       `json:"crit_multiplier"`
	DodgeChance      int           `json:"dodge_chance"`
	MeleeDamageBonus int           `json:"melee_damage_bonus"`
	Initiative       int           `json:"initiative"`

	// Current state
	HP                 int           `json:"hp"`
	AP                 int           `json:"ap"`
	XP                 int           `json:"xp"`
	Level              int           `json:"level"`
	Caps               int           `json:"caps"`
	SkillBonus         map[Skill]int `json:"skill_bonus,omitempty"` // allocated level-up points
	PendingSkillPoints int           `json:"pending_skill_points,omitempty"`

	Equipped Equipment  `json:"equipped"`
	MapID    string     `json:"map_id"`
	Position grid.Point `json:"position"`
}

// NewPlayer builds a level-1 player from a name and attribute scores.
// Missing attributes fall back to the default; out-of-range scores are
// clamped. Derived stats are zero until the first Recalculate.
func NewPlayer(name string, attrs map[Attribute]int) *Player {
	p := &Player{
		Name:       name,
		Attributes: make(map[Attribute]int, len(Attributes)),
		Skills:     make(map[Skill]int, len(SkillFormulas)),
		SkillBonus: make(map[Skill]int),
		Level:      1,
		Caps:       StartingCaps,
	}
	for _, a := range Attributes {
		v, ok := attrs[a]
		if !ok {
			v = AttrDefault
		}
		p.Attributes[a] = clampAttr(v)
	}
	return p
}

// Attribute returns the current score for an attribute, or 0 if the
// id is unknown. Unknown ids never fail hard.
func (p *Player) Attribute(a Attribute) int {
	return p.Attributes[a]
}

// Skill returns the current derived skill value, or 0 for unknown ids.
func (p *Player) Skill(s Skill) int {
	return p.Skills[s]
}

// ArmorReduction is the flat damage reduction from equipped armor.
func (p *Player) ArmorReduction() int {
	if p.Equipped.Armor == nil {
		return 0
	}
	return p.Equipped.Armor.Defense
}

// EquippedInSlot returns the item occupying a slot, or nil.
func (p *Player) EquippedInSlot(slot Slot) *item.Definition {
	switch slot {
	case SlotWeapon:
		return p.Equipped.Weapon
	case SlotArmor:
		return p.Equipped.Armor
	}
	return nil
}

// SetSlot places an item in a slot, replacing whatever was there.
func (p *Player) SetSlot(slot Slot, def *item.Definition) {
	switch slot {
	case SlotWeapon:
		p.Equipped.Weapon = def
	case SlotArmor:
		p.Equipped.Armor = def
	}
}

func clampAttr(v int) int {
	if v < AttrMin {
		return AttrMin
	}
	if v > AttrMax {
		return AttrMax
	}
	return v
}
