// Package item holds the intermediate item record extracted from free text by
// the completion model, before it is projected into a tabletop record.
package item

// Type is the broad kind of item the model reported
type Type string

// Item types
const (
	TypeWeapon     Type = "weapon"
	TypeEquipment  Type = "equipment"
	TypeConsumable Type = "consumable"
	TypeTool       Type = "tool"
	TypeLoot       Type = "loot"
	TypeBackpack   Type = "backpack"
	TypeSpell      Type = "spell"
)

// IsValid checks if the item type is one of the known kinds
func (t Type) IsValid() bool {
	switch t {
	case TypeWeapon, TypeEquipment, TypeConsumable, TypeTool, TypeLoot, TypeBackpack, TypeSpell:
		return true
	default:
		return false
	}
}

// AllTypes returns every valid item type
func AllTypes() []Type {
	return []Type{TypeWeapon, TypeEquipment, TypeConsumable, TypeTool, TypeLoot, TypeBackpack, TypeSpell}
}

// Rarity of a magic item
type Rarity string

// Rarities, in ascending order
const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityVeryRare  Rarity = "veryRare"
	RarityLegendary Rarity = "legendary"
	RarityArtifact  Rarity = "artifact"
)

// AllRarities returns every rarity in ascending order
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityVeryRare, RarityLegendary, RarityArtifact}
}

// AboveCommon reports whether the rarity is uncommon or better
func (r Rarity) AboveCommon() bool {
	switch r {
	case RarityUncommon, RarityRare, RarityVeryRare, RarityLegendary, RarityArtifact:
		return true
	default:
		return false
	}
}

// WeaponType is the weapon category code
type WeaponType string

// Weapon categories
const (
	WeaponSimpleMelee   WeaponType = "simpleM"
	WeaponSimpleRanged  WeaponType = "simpleR"
	WeaponMartialMelee  WeaponType = "martialM"
	WeaponMartialRanged WeaponType = "martialR"
	WeaponNatural       WeaponType = "natural"
	WeaponImprovised    WeaponType = "improv"
)

// AllWeaponTypes returns every weapon category
func AllWeaponTypes() []WeaponType {
	return []WeaponType{
		WeaponSimpleMelee, WeaponSimpleRanged, WeaponMartialMelee,
		WeaponMartialRanged, WeaponNatural, WeaponImprovised,
	}
}

// IsRanged reports whether the category is a ranged one
func (w WeaponType) IsRanged() bool {
	return w == WeaponSimpleRanged || w == WeaponMartialRanged
}

// Denomination is a coin type
type Denomination string

// Coin denominations
const (
	DenominationCopper   Denomination = "cp"
	DenominationSilver   Denomination = "sp"
	DenominationElectrum Denomination = "ep"
	DenominationGold     Denomination = "gp"
	DenominationPlatinum Denomination = "pp"
)

// AllDenominations returns every coin denomination
func AllDenominations() []Denomination {
	return []Denomination{
		DenominationCopper, DenominationSilver, DenominationElectrum,
		DenominationGold, DenominationPlatinum,
	}
}

// Attunement requirement
type Attunement string

// Attunement values
const (
	AttunementNone     Attunement = ""
	AttunementRequired Attunement = "required"
	AttunementOptional Attunement = "optional"
)

// ActionType is the primary action an item grants
type ActionType string

// Action types
const (
	ActionMeleeWeaponAttack  ActionType = "mwak"
	ActionRangedWeaponAttack ActionType = "rwak"
	ActionMeleeSpellAttack   ActionType = "msak"
	ActionRangedSpellAttack  ActionType = "rsak"
	ActionSave               ActionType = "save"
	ActionHeal               ActionType = "heal"
	ActionAbilityCheck       ActionType = "abil"
	ActionUtility            ActionType = "util"
	ActionOther              ActionType = "other"
)

// AllActionTypes returns every action type code
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionMeleeWeaponAttack, ActionRangedWeaponAttack, ActionMeleeSpellAttack,
		ActionRangedSpellAttack, ActionSave, ActionHeal, ActionAbilityCheck,
		ActionUtility, ActionOther,
	}
}

// IsWeaponAttack reports whether the action is a melee or ranged weapon attack
func (a ActionType) IsWeaponAttack() bool {
	return a == ActionMeleeWeaponAttack || a == ActionRangedWeaponAttack
}

// RecoveryPeriod is how often limited uses come back
type RecoveryPeriod string

// Recovery periods as the model reports them
const (
	PerDay       RecoveryPeriod = "day"
	PerShortRest RecoveryPeriod = "shortRest"
	PerLongRest  RecoveryPeriod = "longRest"
)
