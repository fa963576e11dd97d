package quest

import (
	"fmt"
	"log/slog"

	"github.com/jit-rpg/engine/pkg/effect"
	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/inventory"
	"github.com/jit-rpg/engine/pkg/rules"
)

// EffectSink applies engine effects on behalf of the tracker. Stage
// completion effects are routed through it so all effect dispatch lives
// at one boundary.
type EffectSink interface {
	ApplyEffect(e effect.Effect)
}

// Tracker owns all quest instances for a session.
type Tracker struct {
	catalog Catalog
	res     *rules.Resolver
	ledger  *inventory.Ledger
	bus     *event.Bus
	logger  *slog.Logger
	sink    EffectSink

	quests map[string]*Instance
}

func NewTracker(catalog Catalog, res *rules.Resolver, ledger *inventory.Ledger, bus *event.Bus, logger *slog.Logger) *Tracker {
	return &Tracker{
		catalog: catalog,
		res:     res,
		ledger:  ledger,
		bus:     bus,
		logger:  logger,
		quests:  make(map[string]*Instance),
	}
}

// SetSink wires the effect dispatcher. Stage completion effects are
// dropped with a warning until one is set.
func (t *Tracker) SetSink(sink EffectSink) {
	t.sink = sink
}

// Reset discards all quest instances.
func (t *Tracker) Reset() {
	t.quests = make(map[string]*Instance)
}

// StartQuest activates a quest. A quest that has already been started,
// in any state, is never restarted.
func (t *Tracker) StartQuest(questID string) {
	if _, exists := t.quests[questID]; exists {
		return
	}

	def, ok := t.catalog.Quest(questID)
	if !ok {
		t.logger.Warn("quest not found", "quest_id", questID)
		return
	}
	stage, ok := def.Stages[def.StartStage]
	if !ok {
		t.logger.Warn("quest start stage not found", "quest_id", questID, "stage", def.StartStage)
		return
	}

	t.quests[questID] = &Instance{
		State:        StateActive,
		CurrentStage: def.StartStage,
		Objectives:   freshObjectives(stage),
	}

	t.bus.Publish(event.QuestStart, questID, def)
	t.bus.Publish(event.UIMessage, event.MsgQuest,
		fmt.Sprintf("New Quest: %s - %s", def.Title, def.Description))
	t.bus.Publish(event.UIUpdate)
}

// UpdateObjective advances the first matching objective with remaining
// capacity. Matching is by (kind, target); count is capped at the
// objective's required count. Every update re-checks stage completion.
func (t *Tracker) UpdateObjective(questID string, kind ObjectiveKind, target string, count int) {
	inst, ok := t.quests[questID]
	if !ok || inst.State != StateActive {
		return
	}

	for i := range inst.Objectives {
		obj := &inst.Objectives[i]
		if obj.Kind != kind || obj.Target != target || obj.Current >= obj.Count {
			continue
		}
		obj.Current = min(obj.Current+count, obj.Count)
		t.bus.Publish(event.QuestUpdate, questID, *obj)

		if obj.Description != "" {
			t.bus.Publish(event.UIMessage, event.MsgQuest,
				fmt.Sprintf("Quest Updated: %s (%d/%d)", obj.Description, obj.Current, obj.Count))
		}

		t.checkStageComplete(questID)
		break
	}
}

// AdvanceQuest jumps an active quest to the named stage, resetting its
// objective counters.
func (t *Tracker) AdvanceQuest(questID, stageID string) {
	inst, ok := t.quests[questID]
	if !ok || inst.State != StateActive {
		return
	}
	def, ok := t.catalog.Quest(questID)
	if !ok {
		return
	}
	stage, ok := def.Stages[stageID]
	if !ok {
		t.logger.Warn("quest stage not found", "quest_id", questID, "stage", stageID)
		return
	}

	inst.CurrentStage = stageID
	inst.Objectives = freshObjectives(stage)

	t.bus.Publish(event.QuestUpdate, questID, inst)
	if stage.Description != "" {
		t.bus.Publish(event.UIMessage, event.MsgQuest, "Quest Updated: "+stage.Description)
	}
	t.bus.Publish(event.UIUpdate)
}

// CompleteQuest grants the reward bundle and marks the quest completed.
// Completing an already-completed quest is a no-op, so rewards are never
// granted twice.
func (t *Tracker) CompleteQuest(questID string) {
	inst, ok := t.quests[questID]
	if !ok || inst.State == StateCompleted {
		return
	}
	def, ok := t.catalog.Quest(questID)
	if !ok {
		t.logger.Warn("quest not found", "quest_id", questID)
		return
	}

	inst.State = StateCompleted

	if def.Rewards != nil {
		if def.Rewards.XP > 0 {
			t.res.AddXP(def.Rewards.XP)
		}
		if def.Rewards.Caps > 0 {
			t.res.Player().Caps += def.Rewards.Caps
			t.bus.Publish(event.UIMessage, event.MsgLoot,
				fmt.Sprintf("Received %d caps.", def.Rewards.Caps))
		}
		for _, itemID := range def.Rewards.Items {
			t.ledger.AddItem(itemID, 1)
		}
	}

	t.bus.Publish(event.QuestComplete, questID, def)
	msg := "Quest Complete: " + def.Title + "!"
	if def.CompleteMessage != "" {
		msg += " " + def.CompleteMessage
	}
	t.bus.Publish(event.UIMessage, event.MsgQuest, msg)
	t.bus.Publish(event.UIUpdate)
}

// FailQuest marks a quest terminally failed.
func (t *Tracker) FailQuest(questID string) {
	inst, ok := t.quests[questID]
	if !ok {
		return
	}

	inst.State = StateFailed
	title := questID
	if def, ok := t.catalog.Quest(questID); ok {
		title = def.Title
	}

	t.bus.Publish(event.QuestFail, questID)
	t.bus.Publish(event.UIMessage, event.MsgWarning, "Quest Failed: "+title)
	t.bus.Publish(event.UIUpdate)
}

func (t *Tracker) checkStageComplete(questID string) {
	inst, ok := t.quests[questID]
	if !ok {
		return
	}
	for i := range inst.Objectives {
		if inst.Objectives[i].Current < inst.Objectives[i].Count {
			return
		}
	}

	def, ok := t.catalog.Quest(questID)
	if !ok {
		return
	}
	stage, ok := def.Stages[inst.CurrentStage]
	if !ok {
		return
	}

	for _, e := range stage.OnComplete {
		if t.sink == nil {
			t.logger.Warn("no effect sink wired, dropping stage effect", "quest_id", questID, "kind", e.Kind)
			continue
		}
		t.sink.ApplyEffect(e)
	}

	if stage.NextStage != "" {
		t.AdvanceQuest(questID, stage.NextStage)
	} else {
		t.CompleteQuest(questID)
	}
}

// IsActive reports whether the quest has been started and not yet finished.
func (t *Tracker) IsActive(questID string) bool {
	inst, ok := t.quests[questID]
	return ok && inst.State == StateActive
}

// IsComplete reports whether the quest finished successfully.
func (t *Tracker) IsComplete(questID string) bool {
	inst, ok := t.quests[questID]
	return ok && inst.State == StateCompleted
}

// Entry pairs a quest id with its instance and definition, for display.
type Entry struct {
	ID       string
	Instance *Instance
	Def      *Definition
}

// ActiveQuests returns every active quest with its definition.
func (t *Tracker) ActiveQuests() []Entry {
	return t.inState(StateActive)
}

// CompletedQuests returns every completed quest with its definition.
func (t *Tracker) CompletedQuests() []Entry {
	return t.inState(StateCompleted)
}

func (t *Tracker) inState(state State) []Entry {
	var out []Entry
	for id, inst := range t.quests {
		if inst.State != state {
			continue
		}
		def, _ := t.catalog.Quest(id)
		out = append(out, Entry{ID: id, Instance: inst, Def: def})
	}
	return out
}

// Snapshot returns a deep copy of all quest instances for persistence.
func (t *Tracker) Snapshot() map[string]*Instance {
	out := make(map[string]*Instance, len(t.quests))
	for id, inst := range t.quests {
		cp := *inst
		cp.Objectives = make([]ObjectiveProgress, len(inst.Objectives))
		copy(cp.Objectives, inst.Objectives)
		out[id] = &cp
	}
	return out
}

// LoadState replaces all quest instances from a persisted snapshot.
func (t *Tracker) LoadState(state map[string]*Instance) {
	if state == nil {
		state = make(map[string]*Instance)
	}
	t.quests = state
}

func freshObjectives(stage *Stage) []ObjectiveProgress {
	out := make([]ObjectiveProgress, len(stage.Objectives))
	for i, obj := range stage.Objectives {
		out[i] = ObjectiveProgress{Objective: obj}
	}
	return out
}
