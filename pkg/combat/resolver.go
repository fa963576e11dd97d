// Package combat resolves turn-based encounters: action points, to-hit
// rolls, criticals, enemy AI steps and the spoils of victory. The enemy
// turn is a pure step function; any pacing delay between turns belongs
// to the presentation layer.
package combat

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/grid"
	"github.com/jit-rpg/engine/pkg/inventory"
	"github.com/jit-rpg/engine/pkg/rules"
	"github.com/jit-rpg/engine/pkg/world"
)

// Action point costs.
const (
	APCostMelee   = 3
	APCostShoot   = 4
	APCostUseItem = 2
)

// Enemy stat fallbacks for fields content leaves unset.
const (
	DefaultEnemyMaxAP      = 8
	DefaultEnemyInitiative = 5
	DefaultEnemyAccuracy   = 50
	DefaultEnemyRange      = 1

	// RangeTolerance absorbs the fractional distances diagonal
	// movement produces.
	RangeTolerance = 0.5

	FleeBaseChance     = 30
	FleePerAgility     = 5
	FleePerDaring      = 3
	EnemyHitFloor      = 5
	DistancePenalty    = 5
	UnarmedDamageMin   = 1
	UnarmedDamageMax   = 3
	DefaultEnemyDmgMin = 1
	DefaultEnemyDmgMax = 5
)

var playerMissQuips = []string{
	"The wasteland dust gets in your eyes.",
	"You swing with the confidence of someone who clearly can't aim.",
	"Close, but no mutfruit cigar.",
	"Your attack hits nothing but air and regret.",
	"That was embarrassing. Let's pretend it didn't happen.",
}

var enemyMissQuips = []string{
	"Their aim is worse than yours, which is saying something.",
	"You dodge with unexpected grace.",
	"They clearly didn't attend wasteland combat school.",
	"Lucky you.",
}

// Resolver owns the state of at most one encounter at a time.
type Resolver struct {
	res    *rules.Resolver
	ledger *inventory.Ledger
	world  *world.State
	bus    *event.Bus
	logger *slog.Logger
	roll   rules.Roller

	active     bool
	playerTurn bool
	enemies    []*world.Entity
}

func NewResolver(res *rules.Resolver, ledger *inventory.Ledger, w *world.State, bus *event.Bus, logger *slog.Logger, roll rules.Roller) *Resolver {
	return &Resolver{
		res:    res,
		ledger: ledger,
		world:  w,
		bus:    bus,
		logger: logger,
		roll:   roll,
	}
}

// InCombat reports whether an encounter is running.
func (c *Resolver) InCombat() bool {
	return c.active
}

// PlayerTurn reports whether the player currently holds the turn.
func (c *Resolver) PlayerTurn() bool {
	return c.active && c.playerTurn
}

// Enemies returns the live enemy list.
func (c *Resolver) Enemies() []*world.Entity {
	return c.enemies
}

// FirstEnemy returns a default target, or nil when none stand.
func (c *Resolver) FirstEnemy() *world.Entity {
	for _, e := range c.enemies {
		if e.HP > 0 {
			return e
		}
	}
	return nil
}

// StartCombat opens an encounter, or folds the given enemies into one
// already running. It reports whether the player holds the opening
// turn; when false, the caller should render the opening state and then
// invoke ResolveEnemyTurn after its presentation delay.
func (c *Resolver) StartCombat(enemies ...*world.Entity) bool {
	if c.active {
		for _, e := range enemies {
			if !c.contains(e) {
				e.AP = maxAP(e)
				c.enemies = append(c.enemies, e)
			}
		}
		return c.playerTurn
	}

	c.active = true
	c.enemies = append([]*world.Entity(nil), enemies...)

	player := c.res.Player()
	player.AP = player.MaxAP
	for _, e := range c.enemies {
		e.AP = maxAP(e)
	}

	c.playerTurn = c.firstCombatantIsPlayer()

	c.bus.Publish(event.CombatStart, c.enemies)

	names := make([]string, len(c.enemies))
	for i, e := range c.enemies {
		names[i] = e.Name
	}
	c.bus.Publish(event.UIMessage, event.MsgCombat,
		"Combat begins! You face: "+strings.Join(names, ", "))

	if len(c.enemies) == 1 && c.enemies[0].CombatQuip != "" {
		c.bus.Publish(event.UIMessage, event.MsgDialog,
			fmt.Sprintf("%s: %q", c.enemies[0].Name, c.enemies[0].CombatQuip))
	}

	c.bus.Publish(event.UIUpdate)
	return c.playerTurn
}

// PlayerAttack swings at a target with the equipped weapon or bare
// fists. Rejected with a warning when it is not the player's turn, AP
// is short, or the target is out of range.
func (c *Resolver) PlayerAttack(target *world.Entity) {
	if !c.PlayerTurn() || target == nil {
		return
	}

	player := c.res.Player()
	weapon := player.Equipped.Weapon
	ranged := weapon != nil && weapon.IsRanged()
	apCost := APCostMelee
	if ranged {
		apCost = APCostShoot
	}

	if player.AP < apCost {
		c.bus.Publish(event.UIMessage, event.MsgWarning, "Not enough AP for that attack.")
		return
	}

	dist := grid.Distance(player.Position, target.Position)
	weaponRange := 1
	if weapon != nil && weapon.Range > 0 {
		weaponRange = weapon.Range
	}
	if dist > float64(weaponRange)+RangeTolerance {
		c.bus.Publish(event.UIMessage, event.MsgWarning,
			"Target is out of range. Move closer or find a bigger gun.")
		return
	}

	player.AP -= apCost

	skill := player.Skill(actor.Melee)
	if ranged {
		skill = player.Skill(actor.Firearms)
	}
	hitChance := rules.ClampChance(skill - int(dist*DistancePenalty))

	if c.roll.Roll100() > hitChance {
		c.bus.Publish(event.UIMessage, event.MsgCombat,
			fmt.Sprintf("You miss %s. %s", target.Name, rules.Pick(c.roll, playerMissQuips)))
		c.bus.Publish(event.CombatMiss, "player", target)
		c.bus.Publish(event.UIUpdate)
		return
	}

	var damage int
	weaponName := "bare fists"
	if weapon != nil {
		damage = c.roll.Between(weapon.Damage.Min, weapon.Damage.Max)
		weaponName = weapon.Name
	} else {
		damage = c.roll.Between(UnarmedDamageMin, UnarmedDamageMax) + player.MeleeDamageBonus
	}

	crit := c.roll.Roll100() <= player.CritChance
	if crit {
		damage = int(float64(damage) * player.CritMultiplier)
	}

	target.HP = max(0, target.HP-damage)

	critText := ""
	if crit {
		critText = " CRITICAL HIT!"
	}
	c.bus.Publish(event.UIMessage, event.MsgCombat,
		fmt.Sprintf("You hit %s with %s for %d damage!%s", target.Name, weaponName, damage, critText))
	c.bus.Publish(event.CombatHit, "player", target, damage, crit)

	if target.HP <= 0 {
		c.enemyDeath(target)
	}

	c.bus.Publish(event.UIUpdate)
}

// PlayerUseItem spends AP to use an inventory item mid-fight. The AP is
// only spent if the ledger actually used the item.
func (c *Resolver) PlayerUseItem(itemID string) {
	if !c.PlayerTurn() {
		return
	}

	player := c.res.Player()
	if player.AP < APCostUseItem {
		c.bus.Publish(event.UIMessage, event.MsgWarning, "Not enough AP to use an item.")
		return
	}

	if c.ledger.UseItem(itemID) {
		player.AP -= APCostUseItem
	}
	c.bus.Publish(event.UIUpdate)
}

// EndPlayerTurn hands the turn to the enemies. The caller drives the
// actual enemy resolution via ResolveEnemyTurn after its presentation
// delay.
func (c *Resolver) EndPlayerTurn() {
	if !c.PlayerTurn() {
		return
	}
	c.playerTurn = false
	c.bus.Publish(event.CombatTurn, "enemies")
}

// PlayerFlee attempts escape. Success ends combat without rewards;
// failure costs the turn.
func (c *Resolver) PlayerFlee() {
	if !c.PlayerTurn() {
		return
	}

	player := c.res.Player()
	chance := FleeBaseChance +
		player.Attribute(actor.Agility)*FleePerAgility +
		player.Attribute(actor.Daring)*FleePerDaring

	if c.roll.Roll100() <= chance {
		c.bus.Publish(event.UIMessage, event.MsgAction,
			"You bravely run away! Sir Robin would be proud.")
		c.EndCombat(false)
		return
	}

	c.bus.Publish(event.UIMessage, event.MsgCombat,
		"You try to flee but can't escape! Turns out running from your problems doesn't work in combat either.")
	c.EndPlayerTurn()
}

// ResolveEnemyTurn runs every living enemy's action: attack when in
// range, otherwise step toward the player and attack again if the step
// closed the gap. Afterwards the player's AP refills and the turn
// returns to them.
func (c *Resolver) ResolveEnemyTurn() {
	if !c.active {
		return
	}

	player := c.res.Player()
	for _, enemy := range c.enemies {
		if enemy.HP <= 0 {
			continue
		}
		enemy.AP = maxAP(enemy)

		attackRange := DefaultEnemyRange
		if enemy.Range > 0 {
			attackRange = enemy.Range
		}
		reach := float64(attackRange) + RangeTolerance

		if grid.Distance(enemy.Position, player.Position) <= reach {
			c.enemyAttack(enemy)
		} else {
			enemy.Position = grid.StepToward(enemy.Position, player.Position)
			c.bus.Publish(event.UIMessage, event.MsgCombat, enemy.Name+" moves closer.")

			if grid.Distance(enemy.Position, player.Position) <= reach {
				c.enemyAttack(enemy)
			}
		}

		// A killing blow ends combat mid-loop.
		if !c.active {
			return
		}
	}

	player.AP = player.MaxAP
	c.playerTurn = true
	c.bus.Publish(event.CombatTurn, "player")
	c.bus.Publish(event.UIUpdate)
}

// EndCombat tears the encounter down and refills the player's AP.
func (c *Resolver) EndCombat(victory bool) {
	c.active = false
	c.playerTurn = false
	c.enemies = nil

	player := c.res.Player()
	player.AP = player.MaxAP

	c.bus.Publish(event.CombatEnd, victory)
	c.bus.Publish(event.UIUpdate)
}

func (c *Resolver) enemyAttack(enemy *world.Entity) {
	player := c.res.Player()

	accuracy := DefaultEnemyAccuracy
	if enemy.Accuracy > 0 {
		accuracy = enemy.Accuracy
	}
	hitChance := max(EnemyHitFloor, accuracy-player.DodgeChance)

	if c.roll.Roll100() > hitChance {
		c.bus.Publish(event.UIMessage, event.MsgCombat,
			fmt.Sprintf("%s misses you. %s", enemy.Name, rules.Pick(c.roll, enemyMissQuips)))
		return
	}

	dmgMin, dmgMax := DefaultEnemyDmgMin, DefaultEnemyDmgMax
	if enemy.Damage.Max > 0 {
		dmgMin, dmgMax = enemy.Damage.Min, enemy.Damage.Max
	}
	actual := c.res.DamagePlayer(c.roll.Between(dmgMin, dmgMax))

	c.bus.Publish(event.UIMessage, event.MsgCombat,
		fmt.Sprintf("%s hits you for %d damage!", enemy.Name, actual))
	c.bus.Publish(event.CombatHit, enemy, "player", actual, false)

	if player.HP <= 0 {
		c.EndCombat(false)
	}
}

func (c *Resolver) enemyDeath(enemy *world.Entity) {
	enemy.Alive = false
	enemy.HP = 0

	quip := enemy.DeathQuip
	if quip == "" {
		quip = "They won't be bothering anyone else."
	}
	c.bus.Publish(event.UIMessage, event.MsgCombat,
		fmt.Sprintf("%s is defeated! %s", enemy.Name, quip))
	c.bus.Publish(event.EntityDestroy, enemy)

	for _, itemID := range enemy.Loot {
		c.ledger.AddItem(itemID, 1)
	}
	if enemy.XPReward > 0 {
		c.res.AddXP(enemy.XPReward)
	}

	for i, e := range c.enemies {
		if e == enemy {
			c.enemies = append(c.enemies[:i:i], c.enemies[i+1:]...)
			break
		}
	}
	c.world.RemoveEntity(enemy)

	if len(c.enemies) == 0 {
		c.bus.Publish(event.UIMessage, event.MsgCombat, "All enemies defeated!")
		c.EndCombat(true)
	}
}

// firstCombatantIsPlayer sorts all combatants by descending initiative,
// breaking ties by insertion order with the player first, and reports
// whether the player opens.
func (c *Resolver) firstCombatantIsPlayer() bool {
	player := c.res.Player()
	type combatant struct {
		isPlayer   bool
		initiative int
	}
	order := []combatant{{isPlayer: true, initiative: player.Initiative}}
	for _, e := range c.enemies {
		ini := e.Initiative
		if ini == 0 {
			ini = DefaultEnemyInitiative
		}
		order = append(order, combatant{initiative: ini})
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].initiative > order[j].initiative
	})
	return order[0].isPlayer
}

func (c *Resolver) contains(target *world.Entity) bool {
	for _, e := range c.enemies {
		if e == target {
			return true
		}
	}
	return false
}

func maxAP(e *world.Entity) int {
	if e.MaxAP > 0 {
		return e.MaxAP
	}
	return DefaultEnemyMaxAP
}
