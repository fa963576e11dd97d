package quest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/effect"
	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/inventory"
	"github.com/jit-rpg/engine/pkg/item"
	"github.com/jit-rpg/engine/pkg/rules"
)

type mapCatalog map[string]*Definition

func (m mapCatalog) Quest(id string) (*Definition, bool) {
	def, ok := m[id]
	return def, ok
}

type itemCatalog map[string]*item.Definition

func (m itemCatalog) Item(id string) (*item.Definition, bool) {
	def, ok := m[id]
	return def, ok
}

type recordingSink struct {
	applied []effect.Effect
}

func (s *recordingSink) ApplyEffect(e effect.Effect) {
	s.applied = append(s.applied, e)
}

func testQuests() mapCatalog {
	return mapCatalog{
		"wake_up_call": {
			ID:          "wake_up_call",
			Title:       "Wake-Up Call",
			Description: "Find a terminal.",
			StartStage:  "find_terminal",
			Stages: map[string]*Stage{
				"find_terminal": {
					Description: "Find a terminal in the vault.",
					Objectives: []Objective{
						{Kind: ObjectiveTalk, Target: "chronos_terminal", Count: 1, Description: "Access terminal"},
					},
					NextStage: "get_equipped",
				},
				"get_equipped": {
					Description: "Gear up before leaving.",
					Objectives: []Objective{
						{Kind: ObjectiveFetch, Target: "pistol_10mm", Count: 1, Description: "Find a weapon"},
					},
				},
			},
			Rewards:         &Rewards{XP: 100, Caps: 25, Items: []string{"stimpak"}},
			CompleteMessage: "You made it out.",
		},
		"pest_control": {
			ID:         "pest_control",
			Title:      "Pest Control",
			StartStage: "kill_roaches",
			Stages: map[string]*Stage{
				"kill_roaches": {
					Objectives: []Objective{
						{Kind: ObjectiveKill, Target: "radroach", Count: 3, Description: "Kill radroaches"},
					},
					OnComplete: []effect.Effect{
						{Kind: effect.SetFlag, Flag: "roaches_cleared"},
					},
				},
			},
			Rewards: &Rewards{XP: 100},
		},
	}
}

func newTestTracker(t *testing.T) (*Tracker, *rules.Resolver, *inventory.Ledger, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	res := rules.NewResolver(bus, logger, rules.NewRoller())
	player := actor.NewPlayer("Dweller", nil)
	res.Bind(player)
	res.Recalculate(player)
	player.HP = player.MaxHP
	items := itemCatalog{
		"stimpak": {ID: "stimpak", Name: "Stimpak", Category: item.CategoryConsumable, Weight: 1},
	}
	ledger := inventory.NewLedger(items, res, bus, logger)
	return NewTracker(testQuests(), res, ledger, bus, logger), res, ledger, bus
}

func TestStartQuest(t *testing.T) {
	tr, _, _, bus := newTestTracker(t)
	starts := 0
	bus.Subscribe(event.QuestStart, func(args ...any) { starts++ })

	tr.StartQuest("wake_up_call")
	if !tr.IsActive("wake_up_call") {
		t.Fatal("quest not active after start")
	}
	active := tr.ActiveQuests()
	if len(active) != 1 || active[0].Instance.CurrentStage != "find_terminal" {
		t.Fatalf("unexpected active quests: %+v", active)
	}
	if got := active[0].Instance.Objectives[0].Current; got != 0 {
		t.Errorf("objective current = %d, want 0", got)
	}

	// Second start is a no-op, anywhere in the lifecycle.
	tr.StartQuest("wake_up_call")
	if starts != 1 {
		t.Errorf("quest:start emitted %d times, want 1", starts)
	}
}

func TestStartQuest_Unknown(t *testing.T) {
	tr, _, _, _ := newTestTracker(t)
	tr.StartQuest("ghost_quest")
	if tr.IsActive("ghost_quest") {
		t.Error("unknown quest should not activate")
	}
}

func TestUpdateObjective_MatchingAndCap(t *testing.T) {
	tr, _, _, _ := newTestTracker(t)
	tr.StartQuest("pest_control")

	// Wrong kind and wrong target leave the counter alone.
	tr.UpdateObjective("pest_control", ObjectiveTalk, "radroach", 1)
	tr.UpdateObjective("pest_control", ObjectiveKill, "security_bot", 1)
	if got := tr.ActiveQuests()[0].Instance.Objectives[0].Current; got != 0 {
		t.Fatalf("current = %d, want 0", got)
	}

	// Overshoot caps at the required count.
	tr.UpdateObjective("pest_control", ObjectiveKill, "radroach", 2)
	if got := tr.ActiveQuests()[0].Instance.Objectives[0].Current; got != 2 {
		t.Fatalf("current = %d, want 2", got)
	}
	tr.UpdateObjective("pest_control", ObjectiveKill, "radroach", 5)
	if !tr.IsComplete("pest_control") {
		t.Error("quest should complete once the counter hits the requirement")
	}
}

func TestUpdateObjective_InactiveQuest(t *testing.T) {
	tr, _, _, _ := newTestTracker(t)
	tr.UpdateObjective("pest_control", ObjectiveKill, "radroach", 1)
	if len(tr.ActiveQuests()) != 0 {
		t.Error("update on an unstarted quest must not create state")
	}
}

func TestStageTransition(t *testing.T) {
	tr, _, _, _ := newTestTracker(t)
	tr.StartQuest("wake_up_call")

	tr.UpdateObjective("wake_up_call", ObjectiveTalk, "chronos_terminal", 1)

	inst := tr.ActiveQuests()[0].Instance
	if inst.CurrentStage != "get_equipped" {
		t.Fatalf("stage = %q, want get_equipped", inst.CurrentStage)
	}
	if len(inst.Objectives) != 1 || inst.Objectives[0].Current != 0 {
		t.Error("new stage objectives should start at zero")
	}
}

func TestStageOnCompleteEffects(t *testing.T) {
	tr, _, _, _ := newTestTracker(t)
	sink := &recordingSink{}
	tr.SetSink(sink)
	tr.StartQuest("pest_control")

	tr.UpdateObjective("pest_control", ObjectiveKill, "radroach", 3)

	if len(sink.applied) != 1 {
		t.Fatalf("applied %d effects, want 1", len(sink.applied))
	}
	if sink.applied[0].Kind != effect.SetFlag || sink.applied[0].Flag != "roaches_cleared" {
		t.Errorf("unexpected effect: %+v", sink.applied[0])
	}
}

func TestCompleteQuest_RewardsOnce(t *testing.T) {
	tr, res, ledger, _ := newTestTracker(t)
	tr.StartQuest("wake_up_call")
	tr.AdvanceQuest("wake_up_call", "get_equipped")

	tr.UpdateObjective("wake_up_call", ObjectiveFetch, "pistol_10mm", 1)

	player := res.Player()
	if !tr.IsComplete("wake_up_call") {
		t.Fatal("quest not completed")
	}
	if player.XP != 100 {
		t.Errorf("XP = %d, want 100", player.XP)
	}
	if player.Caps != 75 {
		t.Errorf("caps = %d, want 75 (50 starting + 25 reward)", player.Caps)
	}
	if ledger.Count("stimpak") != 1 {
		t.Errorf("stimpak count = %d, want 1", ledger.Count("stimpak"))
	}

	// A second completion grants nothing.
	tr.CompleteQuest("wake_up_call")
	if player.XP != 100 || player.Caps != 75 || ledger.Count("stimpak") != 1 {
		t.Error("duplicate completion granted rewards twice")
	}
}

func TestFailQuest(t *testing.T) {
	tr, _, _, bus := newTestTracker(t)
	var warned string
	bus.Subscribe(event.UIMessage, func(args ...any) {
		if args[0].(event.Category) == event.MsgWarning {
			warned = args[1].(string)
		}
	})
	tr.StartQuest("pest_control")
	tr.FailQuest("pest_control")

	if tr.IsActive("pest_control") || tr.IsComplete("pest_control") {
		t.Error("failed quest should be neither active nor complete")
	}
	if warned != "Quest Failed: Pest Control" {
		t.Errorf("warning = %q", warned)
	}

	// Terminal: objectives no longer advance.
	tr.UpdateObjective("pest_control", ObjectiveKill, "radroach", 3)
	if tr.IsComplete("pest_control") {
		t.Error("failed quest advanced an objective")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	tr, _, _, _ := newTestTracker(t)
	tr.StartQuest("pest_control")
	tr.UpdateObjective("pest_control", ObjectiveKill, "radroach", 1)

	snap := tr.Snapshot()

	// Snapshot is a deep copy: further progress does not leak into it.
	tr.UpdateObjective("pest_control", ObjectiveKill, "radroach", 1)
	if snap["pest_control"].Objectives[0].Current != 1 {
		t.Fatal("snapshot shares state with the live tracker")
	}

	tr.LoadState(snap)
	if got := tr.ActiveQuests()[0].Instance.Objectives[0].Current; got != 1 {
		t.Errorf("restored current = %d, want 1", got)
	}
}
