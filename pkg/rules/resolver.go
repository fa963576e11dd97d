// Package rules implements the character/progression resolver:
// derived-stat recomputation, experience and leveling, damage and
// healing clamps, and skill/attribute checks.
package rules

import (
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/event"
)

// Derived-stat formula constants.
const (
	BaseHP           = 20
	HPPerToughness   = 10
	BaseAP           = 6
	APPerAgility     = 0.5
	BaseCarry        = 50
	CarryPerStrength = 10
	CritMultBase     = 1.5

	MaxLevel                = 20
	SkillPointsPerLevelBase = 5
)

// XPPerLevel[n] is the total XP required to reach level n+1.
var XPPerLevel = []int{
	0, 100, 300, 600, 1000, 1500, 2100, 2800, 3600, 4500,
	5500, 6600, 7800, 9100, 10500, 12000, 13600, 15300, 17100, 19000,
}

// Check probability clamps: checks are never certain nor impossible.
const (
	CheckFloor   = 5
	CheckCeiling = 95
)

// ClampChance clamps a hit or check probability into [CheckFloor,
// CheckCeiling].
func ClampChance(v int) int {
	if v < CheckFloor {
		return CheckFloor
	}
	if v > CheckCeiling {
		return CheckCeiling
	}
	return v
}

// CheckResult reports one resolved skill check.
type CheckResult struct {
	Success   bool
	Roll      int
	Target    int
	Margin    int // target minus roll; positive means passed with room
	SkillName string
}

var titleCaser = cases.Title(language.AmericanEnglish)

// Resolver derives stats from attributes and resolves checks, damage,
// healing and leveling for the bound player. All mutations of the
// player's health, AP, XP and attributes go through it so the clamps
// hold at one boundary.
type Resolver struct {
	player *actor.Player
	bus    *event.Bus
	logger *slog.Logger
	roll   Roller
}

func NewResolver(bus *event.Bus, logger *slog.Logger, roll Roller) *Resolver {
	return &Resolver{bus: bus, logger: logger, roll: roll}
}

// Bind attaches the resolver to a player record. Called at game start
// and after loading a save.
func (r *Resolver) Bind(p *actor.Player) {
	r.player = p
}

// Player returns the currently bound player, or nil.
func (r *Resolver) Player() *actor.Player {
	return r.player
}

// Recalculate recomputes every derived stat and skill value from the
// player's attributes and allocated skill points. Idempotent; must be
// called after any attribute or level change.
func (r *Resolver) Recalculate(p *actor.Player) {
	if p == nil {
		return
	}
	attr := func(a actor.Attribute) int {
		if v, ok := p.Attributes[a]; ok {
			return v
		}
		return actor.AttrDefault
	}

	p.MaxHP = BaseHP + attr(actor.Toughness)*HPPerToughness
	p.MaxAP = int(math.Floor(BaseAP + float64(attr(actor.Agility))*APPerAgility))
	p.CarryWeight = BaseCarry + attr(actor.Strength)*CarryPerStrength
	p.CritChance = attr(actor.Eyes) + attr(actor.Daring)*2
	p.CritMultiplier = CritMultBase + float64(attr(actor.Daring))*0.1
	p.DodgeChance = attr(actor.Agility)*2 + attr(actor.Eyes)
	p.MeleeDamageBonus = attr(actor.Strength) / 2
	p.Initiative = attr(actor.Agility) + attr(actor.Eyes)

	p.Skills = make(map[actor.Skill]int, len(actor.SkillFormulas))
	for id, f := range actor.SkillFormulas {
		p.Skills[id] = (attr(f.First) + attr(f.Second)) * actor.SkillAttrMultiplier
	}
	for id, bonus := range p.SkillBonus {
		if _, ok := p.Skills[id]; ok {
			p.Skills[id] += bonus
		}
	}
}

// AddXP adds experience and levels up repeatedly while the next
// threshold is crossed.
func (r *Resolver) AddXP(amount int) {
	p := r.player
	if p == nil || amount <= 0 {
		return
	}
	p.XP += amount
	r.bus.Publish(event.UIMessage, event.MsgSystem, fmt.Sprintf("Gained %d XP.", amount))

	for p.Level < MaxLevel && p.Level < len(XPPerLevel) && p.XP >= XPPerLevel[p.Level] {
		r.levelUp()
	}
	r.bus.Publish(event.UIUpdate)
}

func (r *Resolver) levelUp() {
	p := r.player
	p.Level++

	gained := SkillPointsPerLevelBase + p.Attribute(actor.Wits)/2
	p.PendingSkillPoints += gained

	r.Recalculate(p)
	p.HP = p.MaxHP
	p.AP = p.MaxAP

	r.logger.Debug("player leveled up", "level", p.Level, "skill_points", gained)
	r.bus.Publish(event.PlayerLevelUp, p.Level)
	r.bus.Publish(event.UIMessage, event.MsgQuest, fmt.Sprintf(
		"LEVEL UP! You are now level %d. You gained %d skill points. "+
			"The wasteland trembles. Or maybe that's just indigestion.", p.Level, gained))
}

// AllocateSkillPoints spends pending level-up points on a skill.
// Returns false if the skill is unknown or the balance is too low.
func (r *Resolver) AllocateSkillPoints(skill actor.Skill, points int) bool {
	p := r.player
	if p == nil || points <= 0 || points > p.PendingSkillPoints {
		return false
	}
	if _, ok := actor.SkillFormulas[skill]; !ok {
		r.logger.Warn("unknown skill", "skill", skill)
		return false
	}
	if p.SkillBonus == nil {
		p.SkillBonus = make(map[actor.Skill]int)
	}
	p.SkillBonus[skill] += points
	p.PendingSkillPoints -= points
	r.Recalculate(p)
	return true
}

// DamagePlayer applies damage after armor reduction. At least 1 point
// always lands when amount >= 1. Returns the damage actually applied.
func (r *Resolver) DamagePlayer(amount int) int {
	p := r.player
	if p == nil || amount <= 0 {
		return 0
	}
	actual := amount - p.ArmorReduction()
	if actual < 1 {
		actual = 1
	}
	p.HP -= actual
	if p.HP < 0 {
		p.HP = 0
	}

	r.bus.Publish(event.PlayerDamage, actual)
	if p.HP == 0 {
		r.bus.Publish(event.PlayerDeath)
		r.bus.Publish(event.UIMessage, event.MsgCombat,
			"You have died. The wasteland claims another. On the bright side, at least the rent is free now.")
	}
	r.bus.Publish(event.UIUpdate)
	return actual
}

// HealPlayer restores health clamped to the maximum. Returns the
// amount actually healed.
func (r *Resolver) HealPlayer(amount int) int {
	p := r.player
	if p == nil || amount <= 0 {
		return 0
	}
	healed := min(amount, p.MaxHP-p.HP)
	p.HP += healed
	r.bus.Publish(event.PlayerHeal, healed)
	r.bus.Publish(event.UIUpdate)
	return healed
}

// RestoreAP restores action points clamped to the maximum. Returns the
// amount actually restored.
func (r *Resolver) RestoreAP(amount int) int {
	p := r.player
	if p == nil || amount <= 0 {
		return 0
	}
	restored := min(amount, p.MaxAP-p.AP)
	p.AP += restored
	return restored
}

// AdjustAttribute shifts an attribute score (consumable buffs). The
// unknown-id case is a logged no-op. Derived stats are recomputed.
func (r *Resolver) AdjustAttribute(a actor.Attribute, delta int) {
	p := r.player
	if p == nil {
		return
	}
	if _, ok := p.Attributes[a]; !ok {
		r.logger.Warn("unknown attribute", "attribute", a)
		return
	}
	p.Attributes[a] += delta
	r.Recalculate(p)
}

// SkillCheck rolls against a skill. Target = skill value minus
// difficulty, clamped so checks are never certain nor impossible.
// Unknown skill ids resolve with a value of 0.
func (r *Resolver) SkillCheck(skill actor.Skill, difficulty int) CheckResult {
	var value int
	if r.player != nil {
		value = r.player.Skill(skill)
	}
	roll := r.roll.Roll100()
	target := ClampChance(value - difficulty)

	name := string(skill)
	if f, ok := actor.SkillFormulas[skill]; ok {
		name = f.Name
	} else {
		name = titleCaser.String(name)
	}

	return CheckResult{
		Success:   roll <= target,
		Roll:      roll,
		Target:    target,
		Margin:    target - roll,
		SkillName: name,
	}
}

// AttributeCheck compares an attribute score against a threshold.
// Unknown ids compare as 0.
func (r *Resolver) AttributeCheck(a actor.Attribute, threshold int) bool {
	if r.player == nil {
		return false
	}
	return r.player.Attribute(a) >= threshold
}
