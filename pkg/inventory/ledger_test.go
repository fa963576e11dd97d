package inventory

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/item"
	"github.com/jit-rpg/engine/pkg/rules"
)

type mapCatalog map[string]*item.Definition

func (m mapCatalog) Item(id string) (*item.Definition, bool) {
	def, ok := m[id]
	return def, ok
}

func boolPtr(b bool) *bool { return &b }

func testCatalog() mapCatalog {
	return mapCatalog{
		"stimpak": {
			ID: "stimpak", Name: "Stimpak", Category: item.CategoryConsumable, Weight: 1,
			Effects:    []item.UseEffect{{Kind: item.UseHeal, Amount: 25}},
			UseMessage: "The needle stings, but in a healing way.",
		},
		"pistol_10mm": {
			ID: "pistol_10mm", Name: "10mm Pistol", Category: item.CategoryWeapon,
			WeaponClass: item.WeaponPistol, Damage: item.DamageRange{Min: 5, Max: 12},
			Range: 8, Weight: 3, Stackable: boolPtr(false),
		},
		"baseball_bat": {
			ID: "baseball_bat", Name: "Baseball Bat", Category: item.CategoryWeapon,
			WeaponClass: item.WeaponMelee, Damage: item.DamageRange{Min: 6, Max: 14},
			Range: 1, Weight: 3, Stackable: boolPtr(false),
		},
		"leather_armor": {
			ID: "leather_armor", Name: "Leather Armor", Category: item.CategoryArmor,
			Defense: 3, Weight: 8, Stackable: boolPtr(false),
		},
		"scrap_metal": {
			ID: "scrap_metal", Name: "Scrap Metal", Category: item.CategoryMisc, Weight: 40,
		},
		"sledgehammer": {
			ID: "sledgehammer", Name: "Sledgehammer", Category: item.CategoryWeapon,
			WeaponClass: item.WeaponMelee, Damage: item.DamageRange{Min: 10, Max: 20},
			Range: 1, Weight: 20, Stackable: boolPtr(false),
		},
		"ash_ale": {
			ID: "ash_ale", Name: "Ash Ale", Category: item.CategoryConsumable, Weight: 1,
			Effects: []item.UseEffect{
				{Kind: item.UseBuff, Attribute: "daring", Amount: 1},
				{Kind: item.UseDamage, Amount: 2},
			},
		},
	}
}

func newTestLedger(t *testing.T) (*Ledger, *actor.Player, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	res := rules.NewResolver(bus, logger, rules.NewRoller())
	player := actor.NewPlayer("Dweller", nil)
	res.Bind(player)
	res.Recalculate(player)
	player.HP = player.MaxHP
	player.AP = player.MaxAP
	ledger := NewLedger(testCatalog(), res, bus, logger)
	return ledger, player, bus
}

func TestAddItem_StacksAndMerges(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	if !ledger.AddItem("stimpak", 2) {
		t.Fatal("add failed")
	}
	if !ledger.AddItem("stimpak", 1) {
		t.Fatal("second add failed")
	}
	if got := ledger.Count("stimpak"); got != 3 {
		t.Errorf("count = %d, want 3", got)
	}
	if entries := ledger.Entries(); len(entries) != 1 {
		t.Errorf("entries = %d, want 1 merged stack", len(entries))
	}
}

func TestAddItem_NonStackableNeverMerges(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ledger.AddItem("pistol_10mm", 1)
	ledger.AddItem("pistol_10mm", 1)
	if entries := ledger.Entries(); len(entries) != 2 {
		t.Errorf("entries = %d, want 2 separate entries", len(entries))
	}
}

func TestAddItem_UnknownItem(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	if ledger.AddItem("unobtainium", 1) {
		t.Error("expected unknown item to fail")
	}
}

func TestAddItem_WeightGate(t *testing.T) {
	ledger, player, bus := newTestLedger(t)
	warned := false
	bus.Subscribe(event.UIMessage, func(args ...any) {
		if args[0].(event.Category) == event.MsgWarning {
			warned = true
		}
	})

	// carry 100, scrap is 40 each: two fit, a third does not.
	ledger.AddItem("scrap_metal", 2)
	before := ledger.Entries()

	if ledger.AddItem("scrap_metal", 1) {
		t.Fatal("expected over-capacity add to fail")
	}
	if !warned {
		t.Error("expected a warning message")
	}
	after := ledger.Entries()
	if len(after) != len(before) || after[0].Count != before[0].Count {
		t.Error("failed add mutated the ledger")
	}
	if w := ledger.TotalWeight(); w > player.CarryWeight {
		t.Errorf("weight %d exceeds capacity %d", w, player.CarryWeight)
	}
}

func TestRemoveItem(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ledger.AddItem("stimpak", 2)

	if !ledger.RemoveItem("stimpak", 1) {
		t.Fatal("remove failed")
	}
	if got := ledger.Count("stimpak"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
	ledger.RemoveItem("stimpak", 1)
	if len(ledger.Entries()) != 0 {
		t.Error("expected entry deleted at zero")
	}
	if ledger.RemoveItem("stimpak", 1) {
		t.Error("expected remove of absent item to fail")
	}
}

func TestUseItem_HealsAndConsumes(t *testing.T) {
	ledger, player, _ := newTestLedger(t)
	ledger.AddItem("stimpak", 1)
	player.HP = player.MaxHP - 10

	if !ledger.UseItem("stimpak") {
		t.Fatal("use failed")
	}
	if player.HP != player.MaxHP {
		t.Errorf("HP = %d, want %d (heal clamped to missing)", player.HP, player.MaxHP)
	}
	if ledger.HasItem("stimpak") {
		t.Error("expected stimpak consumed")
	}
}

func TestUseItem_EffectsInOrder(t *testing.T) {
	ledger, player, _ := newTestLedger(t)
	ledger.AddItem("ash_ale", 1)
	daring := player.Attributes[actor.Daring]
	hp := player.HP

	if !ledger.UseItem("ash_ale") {
		t.Fatal("use failed")
	}
	if player.Attributes[actor.Daring] != daring+1 {
		t.Errorf("daring = %d, want %d", player.Attributes[actor.Daring], daring+1)
	}
	if player.HP >= hp {
		t.Error("expected self-damage effect to land")
	}
}

func TestUseItem_Rejections(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ledger.AddItem("pistol_10mm", 1)

	if ledger.UseItem("pistol_10mm") {
		t.Error("expected non-consumable use to fail")
	}
	if ledger.UseItem("stimpak") {
		t.Error("expected use of unheld item to fail")
	}
}

func TestEquipItem_SwapsSlot(t *testing.T) {
	ledger, player, _ := newTestLedger(t)
	ledger.AddItem("pistol_10mm", 1)
	ledger.AddItem("baseball_bat", 1)

	if !ledger.EquipItem("pistol_10mm") {
		t.Fatal("equip failed")
	}
	if player.Equipped.Weapon == nil || player.Equipped.Weapon.ID != "pistol_10mm" {
		t.Fatal("pistol not equipped")
	}
	if ledger.HasItem("pistol_10mm") {
		t.Error("equipped item should leave the ledger")
	}

	// Equipping the bat returns the pistol to the ledger.
	if !ledger.EquipItem("baseball_bat") {
		t.Fatal("swap equip failed")
	}
	if player.Equipped.Weapon.ID != "baseball_bat" {
		t.Error("bat not equipped after swap")
	}
	if !ledger.HasItem("pistol_10mm") {
		t.Error("previous weapon not returned to ledger")
	}
}

func TestEquipItem_ArmorSlotAndRejection(t *testing.T) {
	ledger, player, _ := newTestLedger(t)
	ledger.AddItem("leather_armor", 1)
	ledger.AddItem("stimpak", 1)

	if !ledger.EquipItem("leather_armor") {
		t.Fatal("armor equip failed")
	}
	if player.Equipped.Armor == nil || player.Equipped.Armor.Defense != 3 {
		t.Error("armor slot not set")
	}
	if ledger.EquipItem("stimpak") {
		t.Error("consumables must not be equippable")
	}
}

func TestEquipItem_SwapRejectedWhenDisplacedWontFit(t *testing.T) {
	ledger, player, bus := newTestLedger(t)
	ledger.AddItem("sledgehammer", 1)
	ledger.EquipItem("sledgehammer")

	// carry 100: scrap 80 + stimpak 3 + pistol 3 = 86. Swapping the
	// pistol in would stow the 20-pound sledge at 103.
	ledger.AddItem("scrap_metal", 2)
	ledger.AddItem("stimpak", 3)
	ledger.AddItem("pistol_10mm", 1)

	warned := false
	bus.Subscribe(event.UIMessage, func(args ...any) {
		if args[0].(event.Category) == event.MsgWarning {
			warned = true
		}
	})

	if ledger.EquipItem("pistol_10mm") {
		t.Fatal("swap should fail when the displaced weapon won't fit")
	}
	if !warned {
		t.Error("expected a warning message")
	}
	if player.Equipped.Weapon == nil || player.Equipped.Weapon.ID != "sledgehammer" {
		t.Error("rejected swap must leave the sledgehammer equipped")
	}
	if !ledger.HasItem("pistol_10mm") {
		t.Error("rejected swap must leave the pistol in the ledger")
	}
	if w := ledger.TotalWeight(); w > player.CarryWeight {
		t.Errorf("weight %d exceeds capacity %d", w, player.CarryWeight)
	}
}

func TestUnequipSlot_RejectedAtCapacity(t *testing.T) {
	ledger, player, _ := newTestLedger(t)
	ledger.AddItem("sledgehammer", 1)
	ledger.EquipItem("sledgehammer")

	// scrap 80 + stimpak 3 leaves 17 pounds of room, not 20.
	ledger.AddItem("scrap_metal", 2)
	ledger.AddItem("stimpak", 3)

	if ledger.UnequipSlot(actor.SlotWeapon) {
		t.Fatal("unequip should fail when the weapon won't fit back")
	}
	if player.Equipped.Weapon == nil || player.Equipped.Weapon.ID != "sledgehammer" {
		t.Error("rejected unequip must leave the slot intact")
	}
	if ledger.HasItem("sledgehammer") {
		t.Error("rejected unequip must not duplicate the weapon")
	}
}

func TestUnequipSlot(t *testing.T) {
	ledger, player, _ := newTestLedger(t)
	ledger.AddItem("leather_armor", 1)
	ledger.EquipItem("leather_armor")

	if !ledger.UnequipSlot(actor.SlotArmor) {
		t.Fatal("unequip failed")
	}
	if player.Equipped.Armor != nil {
		t.Error("slot not cleared")
	}
	if !ledger.HasItem("leather_armor") {
		t.Error("armor not returned to ledger")
	}
	if ledger.UnequipSlot(actor.SlotArmor) {
		t.Error("unequip of empty slot should be a no-op")
	}
}

func TestTotalWeight(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ledger.AddItem("stimpak", 3)
	ledger.AddItem("pistol_10mm", 1)
	if got := ledger.TotalWeight(); got != 3+3 {
		t.Errorf("TotalWeight = %d, want 6", got)
	}
}
