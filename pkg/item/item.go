// Package item defines the immutable item catalog entries: weapons,
// armor, consumables, ammo, quest items and miscellany.
package item

// Category classifies an item definition.
type Category string

const (
	CategoryWeapon     Category = "weapon"
	CategoryArmor      Category = "armor"
	CategoryConsumable Category = "consumable"
	CategoryAmmo       Category = "ammo"
	CategoryMisc       Category = "misc"
	CategoryQuest      Category = "quest"
)

// WeaponClass is the weapon subtype. Anything other than melee is
// treated as ranged for AP costs and hit resolution.
type WeaponClass string

const (
	WeaponMelee   WeaponClass = "melee"
	WeaponPistol  WeaponClass = "pistol"
	WeaponRifle   WeaponClass = "rifle"
	WeaponShotgun WeaponClass = "shotgun"
	WeaponEnergy  WeaponClass = "energy"
)

// DamageRange is an inclusive roll range.
type DamageRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// UseEffectKind is the closed set of consumable effects.
type UseEffectKind string

const (
	UseHeal      UseEffectKind = "heal"
	UseRestoreAP UseEffectKind = "restore_ap"
	UseBuff      UseEffectKind = "buff"
	UseDamage    UseEffectKind = "damage"
)

// UseEffect is one effect applied when a consumable is used. Effects
// are applied in definition order.
type UseEffect struct {
	Kind      UseEffectKind `json:"kind" yaml:"kind"`
	Amount    int           `json:"amount" yaml:"amount"`
	Attribute string        `json:"attribute,omitempty" yaml:"attribute,omitempty"` // buff target
}

// Definition is an immutable catalog entry. Runtime inventory entries
// reference definitions by ID and never copy or mutate them.
type Definition struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category    Category `json:"category" yaml:"category"`

	// Weapon fields
	WeaponClass WeaponClass `json:"weapon_class,omitempty" yaml:"weapon_class,omitempty"`
	Damage      DamageRange `json:"damage,omitempty" yaml:"damage,omitempty"`
	Range       int         `json:"range,omitempty" yaml:"range,omitempty"`
	AmmoType    string      `json:"ammo_type,omitempty" yaml:"ammo_type,omitempty"`

	// Armor fields
	Defense int `json:"defense,omitempty" yaml:"defense,omitempty"`

	// Consumable fields
	Effects    []UseEffect `json:"effects,omitempty" yaml:"effects,omitempty"`
	UseMessage string      `json:"use_message,omitempty" yaml:"use_message,omitempty"`

	Weight    int   `json:"weight" yaml:"weight"`
	Value     int   `json:"value,omitempty" yaml:"value,omitempty"`
	Stackable *bool `json:"stackable,omitempty" yaml:"stackable,omitempty"` // nil = stackable
}

// IsStackable reports whether identical items merge into one stack.
// Items are stackable unless the definition says otherwise.
func (d *Definition) IsStackable() bool {
	return d.Stackable == nil || *d.Stackable
}

// IsRanged reports whether the weapon attacks at range. Non-weapons
// return false.
func (d *Definition) IsRanged() bool {
	return d.Category == CategoryWeapon && d.WeaponClass != WeaponMelee
}

// Equippable reports whether the item can occupy an equipment slot.
func (d *Definition) Equippable() bool {
	return d.Category == CategoryWeapon || d.Category == CategoryArmor
}

// Catalog resolves item IDs to definitions. Lookups for unknown IDs
// return ok=false; callers degrade gracefully per the error policy.
type Catalog interface {
	Item(id string) (*Definition, bool)
}
