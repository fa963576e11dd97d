package session

import (
	"fmt"

	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/effect"
	"github.com/jit-rpg/engine/pkg/event"
)

var _ interface {
	ApplyEffect(effect.Effect)
	CheckCondition(effect.Condition) bool
} = (*Session)(nil)

// ApplyEffect is the single dispatch point for the shared effect
// vocabulary. Dialog choices, quest stage completions and item scripts
// all land here, so cross-system side effects stay in one place.
func (s *Session) ApplyEffect(e effect.Effect) {
	player := s.rules.Player()

	switch e.Kind {
	case effect.SetFlag:
		s.world.SetFlag(e.Flag, e.FlagValue())

	case effect.GiveItem:
		s.ledger.AddItem(e.Item, countOrOne(e.Count))
		s.bus.Publish(event.UIMessage, event.MsgLoot, "Received: "+e.Item)

	case effect.RemoveItem:
		s.ledger.RemoveItem(e.Item, countOrOne(e.Count))

	case effect.GiveCaps:
		if player != nil {
			player.Caps += e.Amount
			s.bus.Publish(event.UIMessage, event.MsgLoot,
				fmt.Sprintf("Received %d caps.", e.Amount))
		}

	case effect.TakeCaps:
		if player != nil {
			player.Caps = max(0, player.Caps-e.Amount)
			s.bus.Publish(event.UIMessage, event.MsgSystem,
				fmt.Sprintf("Lost %d caps.", e.Amount))
		}

	case effect.GiveXP:
		s.rules.AddXP(e.Amount)

	case effect.StartQuest:
		s.tracker.StartQuest(e.Quest)

	case effect.AdvanceQuest:
		s.tracker.AdvanceQuest(e.Quest, e.Stage)

	case effect.CompleteQuest:
		s.tracker.CompleteQuest(e.Quest)

	case effect.Heal:
		s.rules.HealPlayer(e.Amount)

	case effect.Damage:
		s.rules.DamagePlayer(e.Amount)

	case effect.Message:
		cat := event.Category(e.MsgType)
		if cat == "" {
			cat = event.MsgSystem
		}
		s.bus.Publish(event.UIMessage, cat, e.Text)

	case effect.StartCombat:
		s.startCombatByID(e.EnemyID)

	case effect.Teleport:
		if e.Map != "" {
			spawn := e.Spawn
			if spawn == "" {
				spawn = "start"
			}
			s.bus.Publish(event.MapChange, e.Map, spawn)
		}

	case effect.ChangeReputation:
		s.world.ChangeReputation(e.NPCID, e.Amount)

	case effect.SetReputation:
		s.world.SetReputation(e.NPCID, e.Amount)

	default:
		s.logger.Warn("unknown effect kind", "kind", e.Kind)
	}
}

// startCombatByID looks the enemy up on the live roster; an open
// conversation is torn down first, then combat takes over.
func (s *Session) startCombatByID(enemyID string) {
	for _, ent := range s.world.Entities() {
		if !ent.Alive || ent.ID != enemyID {
			continue
		}
		if s.dialog.Active() {
			s.dialog.EndDialog()
		}
		s.startCombatWith(ent)
		return
	}
	s.logger.Warn("combat target not on map", "enemy_id", enemyID)
}

// CheckCondition evaluates one gating condition against current state.
// A player must be bound; before that every gated option is locked.
func (s *Session) CheckCondition(c effect.Condition) bool {
	player := s.rules.Player()
	if player == nil {
		return false
	}

	switch c.Kind {
	case effect.CondFlag:
		v, ok := s.world.GetFlag(c.Flag)
		if c.ExpectValue != nil {
			return ok && v == *c.ExpectValue
		}
		return ok && v

	case effect.CondNoFlag:
		return !s.world.HasFlag(c.Flag)

	case effect.CondAttribute:
		return player.Attribute(actor.Attribute(c.Attribute)) >= c.Min

	case effect.CondSkill:
		return player.Skill(actor.Skill(c.Skill)) >= c.Min

	case effect.CondItem:
		return s.ledger.HasItem(c.Item)

	case effect.CondQuestActive:
		return s.tracker.IsActive(c.Quest)

	case effect.CondQuestComplete:
		return s.tracker.IsComplete(c.Quest)

	case effect.CondCaps:
		return player.Caps >= c.Min

	case effect.CondReputation:
		return s.world.Reputation(c.NPCID) >= c.Min

	case effect.CondReputationMax:
		return s.world.Reputation(c.NPCID) <= c.Max

	default:
		s.logger.Warn("unknown condition kind", "kind", c.Kind)
		return false
	}
}

func countOrOne(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
