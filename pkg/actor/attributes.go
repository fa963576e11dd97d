package actor

// Attribute is one of the six W.A.S.T.E.D. base stats.
type Attribute string

const (
	Wits      Attribute = "wits"
	Agility   Attribute = "agility"
	Strength  Attribute = "strength"
	Toughness Attribute = "toughness"
	Eyes      Attribute = "eyes"
	Daring    Attribute = "daring"
)

const (
	AttrMin     = 1
	AttrMax     = 10
	AttrDefault = 5

	// Points available on top of defaults during character creation.
	AttrBonusPoints = 5

	// StartingCaps is the currency a fresh character wakes up with.
	StartingCaps = 50
)

// Attributes lists the six stats in display order.
var Attributes = []Attribute{Wits, Agility, Strength, Toughness, Eyes, Daring}

var attributeNames = map[Attribute]string{
	Wits:      "Wits",
	Agility:   "Agility",
	Strength:  "Strength",
	Toughness: "Toughness",
	Eyes:      "Eyes",
	Daring:    "Daring",
}

// Name returns the display name for an attribute, or the raw id if it
// is not one of the six.
func (a Attribute) Name() string {
	if n, ok := attributeNames[a]; ok {
		return n
	}
	return string(a)
}

// Skill identifies one of the ten trained skills.
type Skill string

const (
	Firearms Skill = "firearms"
	Melee    Skill = "melee"
	Lockpick Skill = "lockpick"
	Hacking  Skill = "hacking"
	Medicine Skill = "medicine"
	Barter   Skill = "barter"
	Speech   Skill = "speech"
	Sneak    Skill = "sneak"
	Repair   Skill = "repair"
	Survival Skill = "survival"
)

// SkillFormula links a skill to the two attributes it derives from.
// Skill value = (first + second) * SkillAttrMultiplier, plus any
// allocated bonus points.
type SkillFormula struct {
	First  Attribute
	Second Attribute
	Name   string
}

const SkillAttrMultiplier = 5

// SkillFormulas is the full skill table.
var SkillFormulas = map[Skill]SkillFormula{
	Firearms: {Eyes, Agility, "Firearms"},
	Melee:    {Strength, Agility, "Melee"},
	Lockpick: {Eyes, Agility, "Lockpick"},
	Hacking:  {Wits, Eyes, "Hacking"},
	Medicine: {Wits, Eyes, "Medicine"},
	Barter:   {Wits, Daring, "Barter"},
	Speech:   {Wits, Daring, "Speech"},
	Sneak:    {Agility, Eyes, "Sneak"},
	Repair:   {Wits, Strength, "Repair"},
	Survival: {Toughness, Eyes, "Survival"},
}
