package rules

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/item"
)

func testArmor(defense int) *item.Definition {
	return &item.Definition{
		ID:       "scrap_plate",
		Name:     "Scrap Plate",
		Category: item.CategoryArmor,
		Defense:  defense,
	}
}

// scriptedRoller replays fixed rolls for deterministic tests.
type scriptedRoller struct {
	rolls []int
	i     int
}

func (s *scriptedRoller) Roll100() int {
	if len(s.rolls) == 0 {
		return 50
	}
	v := s.rolls[s.i%len(s.rolls)]
	s.i++
	return v
}

func (s *scriptedRoller) Between(min, max int) int { return min }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResolver(attrs map[actor.Attribute]int, rolls ...int) (*Resolver, *actor.Player, *event.Bus) {
	bus := event.NewBus()
	r := NewResolver(bus, testLogger(), &scriptedRoller{rolls: rolls})
	p := actor.NewPlayer("Dweller", attrs)
	r.Bind(p)
	r.Recalculate(p)
	p.HP = p.MaxHP
	p.AP = p.MaxAP
	return r, p, bus
}

func TestRecalculate_DerivedStats(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[actor.Attribute]int
		check func(t *testing.T, p *actor.Player)
	}{
		{
			name:  "all defaults",
			attrs: nil,
			check: func(t *testing.T, p *actor.Player) {
				if p.MaxHP != 70 {
					t.Errorf("MaxHP = %d, want 70", p.MaxHP)
				}
				if p.MaxAP != 8 {
					t.Errorf("MaxAP = %d, want 8", p.MaxAP)
				}
				if p.CarryWeight != 100 {
					t.Errorf("CarryWeight = %d, want 100", p.CarryWeight)
				}
				if p.Initiative != 10 {
					t.Errorf("Initiative = %d, want 10", p.Initiative)
				}
				// All skills (5+5)*5 = 50
				for id, v := range p.Skills {
					if v != 50 {
						t.Errorf("skill %s = %d, want 50", id, v)
					}
				}
			},
		},
		{
			name: "toughness five hp formula",
			attrs: map[actor.Attribute]int{
				actor.Toughness: 5,
			},
			check: func(t *testing.T, p *actor.Player) {
				if p.MaxHP != 20+5*10 {
					t.Errorf("MaxHP = %d, want 70", p.MaxHP)
				}
			},
		},
		{
			name: "high daring crit stats",
			attrs: map[actor.Attribute]int{
				actor.Eyes:   7,
				actor.Daring: 9,
			},
			check: func(t *testing.T, p *actor.Player) {
				if p.CritChance != 7+9*2 {
					t.Errorf("CritChance = %d, want 25", p.CritChance)
				}
				if p.CritMultiplier != 1.5+0.9 {
					t.Errorf("CritMultiplier = %v, want 2.4", p.CritMultiplier)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, p, _ := newTestResolver(tt.attrs)
			tt.check(t, p)
		})
	}
}

func TestRecalculate_Idempotent(t *testing.T) {
	r, p, _ := newTestResolver(map[actor.Attribute]int{
		actor.Wits: 8, actor.Agility: 3, actor.Strength: 7,
	})
	first := *p
	firstSkills := make(map[actor.Skill]int, len(p.Skills))
	for k, v := range p.Skills {
		firstSkills[k] = v
	}

	r.Recalculate(p)

	if p.MaxHP != first.MaxHP || p.MaxAP != first.MaxAP || p.CarryWeight != first.CarryWeight ||
		p.CritChance != first.CritChance || p.DodgeChance != first.DodgeChance ||
		p.MeleeDamageBonus != first.MeleeDamageBonus || p.Initiative != first.Initiative {
		t.Error("second Recalculate changed derived stats")
	}
	for k, v := range firstSkills {
		if p.Skills[k] != v {
			t.Errorf("skill %s changed from %d to %d", k, v, p.Skills[k])
		}
	}
}

func TestRecalculate_SkillBonusApplied(t *testing.T) {
	r, p, _ := newTestResolver(nil)
	p.SkillBonus = map[actor.Skill]int{actor.Speech: 12}
	r.Recalculate(p)
	if p.Skills[actor.Speech] != 50+12 {
		t.Errorf("speech = %d, want 62", p.Skills[actor.Speech])
	}
}

func TestDamagePlayer(t *testing.T) {
	tests := []struct {
		name       string
		armor      int
		amount     int
		wantActual int
	}{
		{"no armor", 0, 30, 30},
		{"armor reduces", 4, 30, 26},
		{"armor floor one", 50, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, p, bus := newTestResolver(nil)
			if tt.armor > 0 {
				p.Equipped.Armor = testArmor(tt.armor)
			}
			var emitted int
			bus.Subscribe(event.PlayerDamage, func(args ...any) {
				emitted = args[0].(int)
			})

			got := r.DamagePlayer(tt.amount)
			if got != tt.wantActual {
				t.Errorf("DamagePlayer(%d) = %d, want %d", tt.amount, got, tt.wantActual)
			}
			if emitted != tt.wantActual {
				t.Errorf("damage event value = %d, want %d", emitted, tt.wantActual)
			}
			if p.HP != p.MaxHP-tt.wantActual {
				t.Errorf("HP = %d, want %d", p.HP, p.MaxHP-tt.wantActual)
			}
		})
	}
}

func TestDamagePlayer_DeathAtZero(t *testing.T) {
	r, p, bus := newTestResolver(nil)
	died := false
	bus.Subscribe(event.PlayerDeath, func(args ...any) { died = true })

	r.DamagePlayer(p.MaxHP + 500)

	if p.HP != 0 {
		t.Errorf("HP = %d, want 0", p.HP)
	}
	if !died {
		t.Error("expected player death event")
	}
}

func TestHealPlayer_Clamped(t *testing.T) {
	r, p, _ := newTestResolver(nil)
	p.HP = p.MaxHP - 10

	if healed := r.HealPlayer(25); healed != 10 {
		t.Errorf("healed = %d, want 10", healed)
	}
	if p.HP != p.MaxHP {
		t.Errorf("HP = %d, want %d", p.HP, p.MaxHP)
	}
	if healed := r.HealPlayer(5); healed != 0 {
		t.Errorf("heal at full = %d, want 0", healed)
	}
}

func TestRestoreAP_Clamped(t *testing.T) {
	r, p, _ := newTestResolver(nil)
	p.AP = 2
	if got := r.RestoreAP(100); got != p.MaxAP-2 {
		t.Errorf("restored = %d, want %d", got, p.MaxAP-2)
	}
	if p.AP != p.MaxAP {
		t.Errorf("AP = %d, want %d", p.AP, p.MaxAP)
	}
}

func TestAddXP_LevelUp(t *testing.T) {
	r, p, bus := newTestResolver(map[actor.Attribute]int{actor.Wits: 6})
	p.HP = 5

	var newLevel int
	bus.Subscribe(event.PlayerLevelUp, func(args ...any) {
		newLevel = args[0].(int)
	})

	r.AddXP(100)

	if p.Level != 2 {
		t.Errorf("Level = %d, want 2", p.Level)
	}
	if newLevel != 2 {
		t.Errorf("level-up event = %d, want 2", newLevel)
	}
	// 5 base + wits/2
	if p.PendingSkillPoints != 5+3 {
		t.Errorf("PendingSkillPoints = %d, want 8", p.PendingSkillPoints)
	}
	if p.HP != p.MaxHP {
		t.Error("expected full heal on level up")
	}
}

func TestAddXP_MultipleLevels(t *testing.T) {
	r, p, _ := newTestResolver(nil)
	r.AddXP(600) // crosses 100 and 300 (and 600) thresholds
	if p.Level != 4 {
		t.Errorf("Level = %d, want 4", p.Level)
	}
}

func TestAddXP_LevelNeverDecreases(t *testing.T) {
	r, p, _ := newTestResolver(nil)
	r.AddXP(100)
	before := p.Level
	r.AddXP(1)
	if p.Level < before {
		t.Errorf("level decreased from %d to %d", before, p.Level)
	}
}

func TestSkillCheck_Clamps(t *testing.T) {
	tests := []struct {
		name       string
		skill      actor.Skill
		difficulty int
		wantTarget int
	}{
		{"impossible clamps to floor", actor.Speech, 500, 5},
		{"certain clamps to ceiling", actor.Speech, -500, 95},
		{"normal target", actor.Speech, 10, 40},
		{"unknown skill value zero", actor.Skill("basketweaving"), 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestResolver(nil, 50)
			res := r.SkillCheck(tt.skill, tt.difficulty)
			if res.Target != tt.wantTarget {
				t.Errorf("target = %d, want %d", res.Target, tt.wantTarget)
			}
		})
	}
}

func TestSkillCheck_RollOutcome(t *testing.T) {
	r, _, _ := newTestResolver(nil, 40, 41)
	// Speech target: 50 - 10 = 40.
	if res := r.SkillCheck(actor.Speech, 10); !res.Success || res.Margin != 0 {
		t.Errorf("roll 40 vs 40: success=%v margin=%d, want success margin 0", res.Success, res.Margin)
	}
	if res := r.SkillCheck(actor.Speech, 10); res.Success {
		t.Error("roll 41 vs 40: expected failure")
	}
}

func TestSkillCheck_DisplayName(t *testing.T) {
	r, _, _ := newTestResolver(nil)
	if res := r.SkillCheck(actor.Firearms, 0); res.SkillName != "Firearms" {
		t.Errorf("SkillName = %q, want Firearms", res.SkillName)
	}
	if res := r.SkillCheck(actor.Skill("yodeling"), 0); res.SkillName != "Yodeling" {
		t.Errorf("SkillName = %q, want Yodeling", res.SkillName)
	}
}

func TestAttributeCheck(t *testing.T) {
	r, _, _ := newTestResolver(map[actor.Attribute]int{actor.Wits: 7})
	if !r.AttributeCheck(actor.Wits, 7) {
		t.Error("wits 7 vs threshold 7 should pass")
	}
	if r.AttributeCheck(actor.Wits, 8) {
		t.Error("wits 7 vs threshold 8 should fail")
	}
	if r.AttributeCheck(actor.Attribute("charm"), 1) {
		t.Error("unknown attribute should compare as 0")
	}
}

func TestAllocateSkillPoints(t *testing.T) {
	r, p, _ := newTestResolver(nil)
	p.PendingSkillPoints = 4

	if !r.AllocateSkillPoints(actor.Melee, 3) {
		t.Fatal("expected allocation to succeed")
	}
	if p.Skills[actor.Melee] != 53 {
		t.Errorf("melee = %d, want 53", p.Skills[actor.Melee])
	}
	if p.PendingSkillPoints != 1 {
		t.Errorf("pending = %d, want 1", p.PendingSkillPoints)
	}
	if r.AllocateSkillPoints(actor.Melee, 2) {
		t.Error("expected over-allocation to fail")
	}
	if r.AllocateSkillPoints(actor.Skill("yodeling"), 1) {
		t.Error("expected unknown skill to fail")
	}
}
