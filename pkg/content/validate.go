package content

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jit-rpg/engine/pkg/dialog"
	"github.com/jit-rpg/engine/pkg/effect"
	"github.com/jit-rpg/engine/pkg/quest"
	"github.com/jit-rpg/engine/pkg/world"
)

// Validate checks every cross reference in the bundle: dialog node
// links, quest stage links, and every item, entity, quest, dialog and
// map id the content mentions. All problems are reported at once.
func (b *Bundle) Validate() error {
	var errs []error
	report := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	for id, d := range b.dialogs {
		b.validateDialog(id, d, report)
	}
	for id, q := range b.quests {
		b.validateQuest(id, q, report)
	}
	for id, e := range b.entities {
		b.validateEntity(id, e, report)
	}
	for id, m := range b.maps {
		b.validateMap(id, m, report)
	}

	return errors.Join(errs...)
}

func (b *Bundle) validateDialog(id string, d *dialog.Definition, report func(string, ...any)) {
	if len(d.Nodes) == 0 {
		report("dialog %s: no nodes", id)
		return
	}
	if _, ok := d.Nodes[d.StartNode]; !ok {
		report("dialog %s: start node %q does not exist", id, d.StartNode)
	}

	node := func(ref, where string) {
		if ref == "" {
			return
		}
		if _, ok := d.Nodes[ref]; !ok {
			report("dialog %s: %s references missing node %q", id, where, ref)
		}
	}

	for nodeID, n := range d.Nodes {
		b.validateEffects(n.OnEnter, fmt.Sprintf("dialog %s node %s on_enter", id, nodeID), report)
		for i, r := range n.Responses {
			where := fmt.Sprintf("node %s response %d", nodeID, i)
			node(r.NextNode, where)
			b.validateEffects(r.Effects, fmt.Sprintf("dialog %s %s", id, where), report)
			b.validateConditions(r.Conditions, fmt.Sprintf("dialog %s %s", id, where), report)
			if sc := r.SkillCheck; sc != nil {
				node(sc.SuccessNode, where+" success")
				node(sc.FailNode, where+" fail")
				if sc.Difficulty <= 0 {
					report("dialog %s %s: skill check difficulty must be positive", id, where)
				}
			}
		}
	}
}

func (b *Bundle) validateQuest(id string, q *quest.Definition, report func(string, ...any)) {
	if len(q.Stages) == 0 {
		report("quest %s: no stages", id)
		return
	}
	if _, ok := q.Stages[q.StartStage]; !ok {
		report("quest %s: start stage %q does not exist", id, q.StartStage)
	}

	for stageID, stage := range q.Stages {
		if stage.NextStage != "" {
			if _, ok := q.Stages[stage.NextStage]; !ok {
				report("quest %s: stage %s advances to missing stage %q", id, stageID, stage.NextStage)
			}
		}
		if len(stage.Objectives) == 0 {
			report("quest %s: stage %s has no objectives", id, stageID)
		}
		for i, obj := range stage.Objectives {
			if !slices.Contains(quest.ObjectiveKinds, obj.Kind) {
				report("quest %s: stage %s objective %d has unknown kind %q", id, stageID, i, obj.Kind)
			}
			if obj.Kind == quest.ObjectiveFetch {
				if _, ok := b.items[obj.Target]; !ok {
					report("quest %s: stage %s fetches unknown item %q", id, stageID, obj.Target)
				}
			}
			if obj.Kind == quest.ObjectiveGo {
				if _, ok := b.maps[obj.Target]; !ok {
					report("quest %s: stage %s targets unknown map %q", id, stageID, obj.Target)
				}
			}
		}
		b.validateEffects(stage.OnComplete, fmt.Sprintf("quest %s stage %s on_complete", id, stageID), report)
	}

	if q.Rewards != nil {
		for _, itemID := range q.Rewards.Items {
			if _, ok := b.items[itemID]; !ok {
				report("quest %s: reward item %q does not exist", id, itemID)
			}
		}
	}
}

func (b *Bundle) validateEntity(id string, e *world.Definition, report func(string, ...any)) {
	if !slices.Contains(world.EntityKinds, e.Kind) {
		report("entity %s: unknown kind %q", id, e.Kind)
	}
	if e.DialogID != "" {
		if _, ok := b.dialogs[e.DialogID]; !ok {
			report("entity %s: dialog %q does not exist", id, e.DialogID)
		}
	}
	for _, itemID := range e.Items {
		if _, ok := b.items[itemID]; !ok {
			report("entity %s: container item %q does not exist", id, itemID)
		}
	}
	for _, itemID := range e.Loot {
		if _, ok := b.items[itemID]; !ok {
			report("entity %s: loot item %q does not exist", id, itemID)
		}
	}
	if e.ItemID != "" {
		if _, ok := b.items[e.ItemID]; !ok {
			report("entity %s: pickup item %q does not exist", id, e.ItemID)
		}
	}
	if e.Hostile && e.MaxHP <= 0 {
		report("entity %s: hostile entity needs max_hp", id)
	}
}

func (b *Bundle) validateMap(id string, m *world.MapData, report func(string, ...any)) {
	for i, exit := range m.Exits {
		target, ok := b.maps[exit.TargetMap]
		if !ok {
			report("map %s: exit %d targets unknown map %q", id, i, exit.TargetMap)
			continue
		}
		if exit.TargetSpawn != "" {
			if _, ok := target.Spawns[exit.TargetSpawn]; !ok {
				report("map %s: exit %d targets unknown spawn %q on %s", id, i, exit.TargetSpawn, exit.TargetMap)
			}
		}
		if !m.InBounds(exit.Position) {
			report("map %s: exit %d at %v is out of bounds", id, i, exit.Position)
		}
	}
	for i, p := range m.Placements {
		if _, ok := b.entities[p.Entity]; !ok {
			report("map %s: placement %d references unknown entity %q", id, i, p.Entity)
		}
		if !m.InBounds(p.Position) {
			report("map %s: placement %d at %v is out of bounds", id, i, p.Position)
		}
	}
}

func (b *Bundle) validateEffects(effects []effect.Effect, where string, report func(string, ...any)) {
	for _, e := range effects {
		if !slices.Contains(effect.Kinds, e.Kind) {
			report("%s: unknown effect kind %q", where, e.Kind)
			continue
		}
		switch e.Kind {
		case effect.GiveItem, effect.RemoveItem:
			if _, ok := b.items[e.Item]; !ok {
				report("%s: effect references unknown item %q", where, e.Item)
			}
		case effect.StartQuest, effect.AdvanceQuest, effect.CompleteQuest:
			q, ok := b.quests[e.Quest]
			if !ok {
				report("%s: effect references unknown quest %q", where, e.Quest)
			} else if e.Kind == effect.AdvanceQuest && e.Stage != "" {
				if _, ok := q.Stages[e.Stage]; !ok {
					report("%s: effect advances to unknown stage %q of %s", where, e.Stage, e.Quest)
				}
			}
		case effect.StartCombat:
			if _, ok := b.entities[e.EnemyID]; !ok {
				report("%s: effect references unknown enemy %q", where, e.EnemyID)
			}
		case effect.Teleport:
			if _, ok := b.maps[e.Map]; !ok {
				report("%s: effect teleports to unknown map %q", where, e.Map)
			}
		}
	}
}

func (b *Bundle) validateConditions(conds []effect.Condition, where string, report func(string, ...any)) {
	for _, c := range conds {
		if !slices.Contains(effect.ConditionKinds, c.Kind) {
			report("%s: unknown condition kind %q", where, c.Kind)
			continue
		}
		switch c.Kind {
		case effect.CondItem:
			if _, ok := b.items[c.Item]; !ok {
				report("%s: condition references unknown item %q", where, c.Item)
			}
		case effect.CondQuestActive, effect.CondQuestComplete:
			if _, ok := b.quests[c.Quest]; !ok {
				report("%s: condition references unknown quest %q", where, c.Quest)
			}
		}
	}
}
