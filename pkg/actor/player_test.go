package actor

import "testing"

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("Ash", map[Attribute]int{
		Wits:     7,
		Agility:  0,  // below minimum, clamps up
		Strength: 99, // above maximum, clamps down
	})

	if p.Name != "Ash" {
		t.Errorf("Name = %q, want Ash", p.Name)
	}
	if p.Level != 1 {
		t.Errorf("Level = %d, want 1", p.Level)
	}
	if p.Caps != StartingCaps {
		t.Errorf("Caps = %d, want %d", p.Caps, StartingCaps)
	}

	tests := []struct {
		attr Attribute
		want int
	}{
		{Wits, 7},
		{Agility, AttrMin},
		{Strength, AttrMax},
		{Toughness, AttrDefault}, // unspecified falls back
		{Eyes, AttrDefault},
		{Daring, AttrDefault},
	}
	for _, tt := range tests {
		if got := p.Attribute(tt.attr); got != tt.want {
			t.Errorf("Attribute(%s) = %d, want %d", tt.attr, got, tt.want)
		}
	}
}

func TestAttributeUnknownID(t *testing.T) {
	p := NewPlayer("Ash", nil)
	if got := p.Attribute(Attribute("luck")); got != 0 {
		t.Errorf("Attribute(luck) = %d, want 0", got)
	}
	if got := p.Skill(Skill("gambling")); got != 0 {
		t.Errorf("Skill(gambling) = %d, want 0", got)
	}
}

func TestAttributeName(t *testing.T) {
	if got := Wits.Name(); got != "Wits" {
		t.Errorf("Wits.Name() = %q", got)
	}
	if got := Attribute("luck").Name(); got != "luck" {
		t.Errorf("unknown attribute Name() = %q, want raw id", got)
	}
}

func TestSkillFormulasCoverAllSkills(t *testing.T) {
	skills := []Skill{
		Firearms, Melee, Lockpick, Hacking, Medicine,
		Barter, Speech, Sneak, Repair, Survival,
	}
	for _, s := range skills {
		f, ok := SkillFormulas[s]
		if !ok {
			t.Errorf("no formula for %s", s)
			continue
		}
		if f.First == "" || f.Second == "" || f.Name == "" {
			t.Errorf("incomplete formula for %s: %+v", s, f)
		}
	}
}

func TestSlots(t *testing.T) {
	p := NewPlayer("Ash", nil)
	if got := p.ArmorReduction(); got != 0 {
		t.Errorf("ArmorReduction with no armor = %d, want 0", got)
	}
	if p.EquippedInSlot(SlotWeapon) != nil {
		t.Error("fresh player has a weapon equipped")
	}
}
