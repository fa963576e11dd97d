// Package effect defines the closed effect and condition vocabulary
// shared by dialog responses, quest stages and world interactions.
// The original data shape was free-form {type: ...} dictionaries; here
// each kind is a tagged variant dispatched exhaustively by the session.
package effect

// Kind enumerates every effect the content may request.
type Kind string

const (
	SetFlag          Kind = "set_flag"
	GiveItem         Kind = "give_item"
	RemoveItem       Kind = "remove_item"
	GiveCaps         Kind = "give_caps"
	TakeCaps         Kind = "take_caps"
	GiveXP           Kind = "give_xp"
	StartQuest       Kind = "start_quest"
	AdvanceQuest     Kind = "advance_quest"
	CompleteQuest    Kind = "complete_quest"
	Heal             Kind = "heal"
	Damage           Kind = "damage"
	Message          Kind = "message"
	StartCombat      Kind = "start_combat"
	Teleport         Kind = "teleport"
	ChangeReputation Kind = "change_reputation"
	SetReputation    Kind = "set_reputation"
)

// Kinds lists every valid effect kind, for content validation.
var Kinds = []Kind{
	SetFlag, GiveItem, RemoveItem, GiveCaps, TakeCaps, GiveXP,
	StartQuest, AdvanceQuest, CompleteQuest, Heal, Damage, Message,
	StartCombat, Teleport, ChangeReputation, SetReputation,
}

// Effect is one tagged effect. Only the fields relevant to its Kind
// are populated; the session's dispatcher switches on Kind and ignores
// the rest.
type Effect struct {
	Kind Kind `json:"kind" yaml:"kind"`

	Flag string `json:"flag,omitempty" yaml:"flag,omitempty"`
	// Value is the flag value for SetFlag; omitted means true.
	Value *bool `json:"value,omitempty" yaml:"value,omitempty"`

	Item  string `json:"item,omitempty" yaml:"item,omitempty"`
	Count int    `json:"count,omitempty" yaml:"count,omitempty"`

	Amount int `json:"amount,omitempty" yaml:"amount,omitempty"`

	Quest string `json:"quest,omitempty" yaml:"quest,omitempty"`
	Stage string `json:"stage,omitempty" yaml:"stage,omitempty"`

	MsgType string `json:"msg_type,omitempty" yaml:"msg_type,omitempty"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`

	EnemyID string `json:"enemy_id,omitempty" yaml:"enemy_id,omitempty"`

	Map   string `json:"map,omitempty" yaml:"map,omitempty"`
	Spawn string `json:"spawn,omitempty" yaml:"spawn,omitempty"`

	NPCID string `json:"npc_id,omitempty" yaml:"npc_id,omitempty"`
}

// FlagValue resolves the value a SetFlag effect writes; an omitted
// Value means true.
func (e Effect) FlagValue() bool {
	if e.Value == nil {
		return true
	}
	return *e.Value
}

// Bool is a literal helper for building effects and conditions in code.
func Bool(v bool) *bool { return &v }

// ConditionKind enumerates every gating condition the content may use.
type ConditionKind string

const (
	CondFlag          ConditionKind = "flag"
	CondNoFlag        ConditionKind = "no_flag"
	CondAttribute     ConditionKind = "attribute"
	CondSkill         ConditionKind = "skill"
	CondItem          ConditionKind = "item"
	CondQuestActive   ConditionKind = "quest_active"
	CondQuestComplete ConditionKind = "quest_complete"
	CondCaps          ConditionKind = "caps"
	CondReputation    ConditionKind = "reputation"
	CondReputationMax ConditionKind = "reputation_max"
)

// ConditionKinds lists every valid condition kind, for validation.
var ConditionKinds = []ConditionKind{
	CondFlag, CondNoFlag, CondAttribute, CondSkill, CondItem,
	CondQuestActive, CondQuestComplete, CondCaps, CondReputation,
	CondReputationMax,
}

// Condition gates a dialog response on current world state. All
// conditions in a list must hold for the response to be available.
type Condition struct {
	Kind ConditionKind `json:"kind" yaml:"kind"`

	Flag string `json:"flag,omitempty" yaml:"flag,omitempty"`
	// ExpectValue pins a flag condition to an exact value rather than
	// plain truthiness.
	ExpectValue *bool `json:"expect_value,omitempty" yaml:"expect_value,omitempty"`

	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Skill     string `json:"skill,omitempty" yaml:"skill,omitempty"`
	Min       int    `json:"min,omitempty" yaml:"min,omitempty"`
	Max       int    `json:"max,omitempty" yaml:"max,omitempty"`

	Item  string `json:"item,omitempty" yaml:"item,omitempty"`
	Quest string `json:"quest,omitempty" yaml:"quest,omitempty"`
	NPCID string `json:"npc_id,omitempty" yaml:"npc_id,omitempty"`
}
