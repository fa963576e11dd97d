// Package inventory implements the item ledger: stack-counted item
// entries, the carry-weight gate, consumable use and equipment slots.
package inventory

import (
	"fmt"
	"log/slog"

	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/item"
	"github.com/jit-rpg/engine/pkg/rules"
)

// Entry is one inventory stack. Count is always positive; entries at
// zero are removed.
type Entry struct {
	ItemID string `json:"item_id"`
	Count  int    `json:"count"`
}

// Ledger owns the player's item stacks. Every mutation enforces the
// carry-weight invariant before committing.
type Ledger struct {
	items   []Entry
	catalog item.Catalog
	res     *rules.Resolver
	bus     *event.Bus
	logger  *slog.Logger
}

func NewLedger(catalog item.Catalog, res *rules.Resolver, bus *event.Bus, logger *slog.Logger) *Ledger {
	return &Ledger{catalog: catalog, res: res, bus: bus, logger: logger}
}

// Reset empties the ledger for a new game.
func (l *Ledger) Reset() {
	l.items = nil
}

// AddItem adds count units of an item. It fails without mutating when
// the item is unknown or the added weight would exceed the player's
// carry capacity.
func (l *Ledger) AddItem(itemID string, count int) bool {
	if count <= 0 {
		return false
	}
	def, ok := l.catalog.Item(itemID)
	if !ok {
		l.logger.Warn("item not found", "item_id", itemID)
		return false
	}

	player := l.res.Player()
	current := l.TotalWeight()
	if player != nil && current+def.Weight*count > player.CarryWeight {
		l.bus.Publish(event.UIMessage, event.MsgWarning, fmt.Sprintf(
			"Can't carry that. You're already lugging around %d pounds of questionable life choices.", current))
		return false
	}

	merged := false
	if def.IsStackable() {
		for i := range l.items {
			if l.items[i].ItemID == itemID {
				l.items[i].Count += count
				merged = true
				break
			}
		}
	}
	if !merged {
		l.items = append(l.items, Entry{ItemID: itemID, Count: count})
	}

	l.bus.Publish(event.ItemAdd, itemID, count, def)
	suffix := ""
	if count > 1 {
		suffix = fmt.Sprintf(" x%d", count)
	}
	l.bus.Publish(event.UIMessage, event.MsgLoot, "Picked up: "+def.Name+suffix)
	l.bus.Publish(event.UIUpdate)
	return true
}

// RemoveItem decrements a stack, deleting it at zero. Returns false if
// the item is not held.
func (l *Ledger) RemoveItem(itemID string, count int) bool {
	if count <= 0 {
		return false
	}
	for i := range l.items {
		if l.items[i].ItemID != itemID {
			continue
		}
		l.items[i].Count -= count
		if l.items[i].Count <= 0 {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
		}
		l.bus.Publish(event.ItemRemove, itemID, count)
		l.bus.Publish(event.UIUpdate)
		return true
	}
	return false
}

// HasItem reports whether at least one unit is held.
func (l *Ledger) HasItem(itemID string) bool {
	return l.Count(itemID) > 0
}

// Count returns the held quantity of an item.
func (l *Ledger) Count(itemID string) int {
	for _, e := range l.items {
		if e.ItemID == itemID {
			return e.Count
		}
	}
	return 0
}

// UseItem consumes one unit of a consumable, applying its effects in
// definition order. Non-consumables and items not held fail.
func (l *Ledger) UseItem(itemID string) bool {
	def, ok := l.catalog.Item(itemID)
	if !ok {
		l.logger.Warn("item not found", "item_id", itemID)
		return false
	}
	if def.Category != item.CategoryConsumable {
		l.bus.Publish(event.UIMessage, event.MsgSystem,
			"You can't use that. Well, you could, but it wouldn't be productive.")
		return false
	}
	if !l.HasItem(itemID) {
		return false
	}

	for _, eff := range def.Effects {
		switch eff.Kind {
		case item.UseHeal:
			healed := l.res.HealPlayer(eff.Amount)
			msg := fmt.Sprintf("Used %s. Healed %d HP.", def.Name, healed)
			if def.UseMessage != "" {
				msg += " " + def.UseMessage
			}
			l.bus.Publish(event.UIMessage, event.MsgAction, msg)
		case item.UseRestoreAP:
			l.res.RestoreAP(eff.Amount)
			l.bus.Publish(event.UIMessage, event.MsgAction,
				fmt.Sprintf("Used %s. Restored %d AP.", def.Name, eff.Amount))
		case item.UseBuff:
			l.res.AdjustAttribute(actor.Attribute(eff.Attribute), eff.Amount)
			l.bus.Publish(event.UIMessage, event.MsgAction,
				fmt.Sprintf("Used %s. %s increased by %d.", def.Name, eff.Attribute, eff.Amount))
		case item.UseDamage:
			l.res.DamagePlayer(eff.Amount)
			msg := def.UseMessage
			if msg == "" {
				msg = "Why did you do that?"
			}
			l.bus.Publish(event.UIMessage, event.MsgWarning,
				fmt.Sprintf("Used %s. Took %d damage. %s", def.Name, eff.Amount, msg))
		default:
			l.logger.Warn("unknown use effect", "item_id", itemID, "kind", eff.Kind)
		}
	}

	l.RemoveItem(itemID, 1)
	l.bus.Publish(event.ItemUse, itemID, def)
	return true
}

// EquipItem moves a weapon or armor from the ledger into its slot,
// returning any previously equipped item to the ledger first.
func (l *Ledger) EquipItem(itemID string) bool {
	def, ok := l.catalog.Item(itemID)
	if !ok {
		l.logger.Warn("item not found", "item_id", itemID)
		return false
	}
	if !l.HasItem(itemID) {
		return false
	}
	if !def.Equippable() {
		l.bus.Publish(event.UIMessage, event.MsgSystem, "You can't equip that.")
		return false
	}

	player := l.res.Player()
	if player == nil {
		return false
	}

	slot := actor.SlotWeapon
	if def.Category == item.CategoryArmor {
		slot = actor.SlotArmor
	}
	// The displaced item must fit once the new one leaves the ledger,
	// or the swap would silently destroy it.
	prev := player.EquippedInSlot(slot)
	if prev != nil && l.TotalWeight()-def.Weight+prev.Weight > player.CarryWeight {
		l.bus.Publish(event.UIMessage, event.MsgWarning,
			"No room to stow "+prev.Name+". Drop something first.")
		return false
	}

	l.RemoveItem(itemID, 1)
	if prev != nil {
		l.AddItem(prev.ID, 1)
	}
	player.SetSlot(slot, def)

	l.bus.Publish(event.UIMessage, event.MsgAction, "Equipped: "+def.Name)
	l.bus.Publish(event.ItemEquip, itemID, def)
	l.bus.Publish(event.UIUpdate)
	return true
}

// UnequipSlot returns the equipped item to the ledger and clears the
// slot. No-op if the slot is empty or the item won't fit back.
func (l *Ledger) UnequipSlot(slot actor.Slot) bool {
	player := l.res.Player()
	if player == nil {
		return false
	}
	def := player.EquippedInSlot(slot)
	if def == nil {
		return false
	}

	if !l.AddItem(def.ID, 1) {
		return false
	}
	player.SetSlot(slot, nil)
	l.bus.Publish(event.UIMessage, event.MsgAction, "Unequipped: "+def.Name)
	l.bus.Publish(event.UIUpdate)
	return true
}

// TotalWeight sums definition weight times count over all stacks.
func (l *Ledger) TotalWeight() int {
	weight := 0
	for _, e := range l.items {
		if def, ok := l.catalog.Item(e.ItemID); ok {
			weight += def.Weight * e.Count
		}
	}
	return weight
}

// Entries returns a copy of the current stacks, for display and saves.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.items))
	copy(out, l.items)
	return out
}

// LoadState replaces the stacks from a save snapshot.
func (l *Ledger) LoadState(entries []Entry) {
	l.items = make([]Entry, len(entries))
	copy(l.items, entries)
}
