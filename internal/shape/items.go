package shape

import (
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
)

// Shape names
const (
	NameItem     = "item"
	NameBasic    = "basic-item"
	NameCore     = "item-core"
	NameCombat   = "item-combat"
	NameUsage    = "item-usage"
	NamePhysical = "item-physical"
)

// Item is the full intermediate item shape
func Item() Shape {
	return New(NameItem,
		String("name", "the item's name").Req(),
		String("description", "the full rules text, preserved verbatim").Req(),
		Enum("itemType", "broad kind of item", toStrings(item.AllTypes())...),
		Object("weight", "weight of one item",
			Number("value", "").Req(),
			String("units", "usually lb"),
		),
		Object("price", "cost of one item",
			Number("value", "").Req(),
			Enum("denomination", "", toStrings(item.AllDenominations())...),
		),
		Enum("rarity", "", toStrings(item.AllRarities())...),
		Enum("weaponType", "weapon category; M is melee, R is ranged", toStrings(item.AllWeaponTypes())...),
		String("baseItem", "the mundane weapon or armor this item is based on, lowercase, e.g. longsword"),
		Array("properties", "weapon properties such as finesse, versatile, thrown", String("", "")),
		Object("armorClass", "",
			Integer("value", "base AC"),
			Integer("dex", "maximum dexterity bonus").Null(),
			Integer("magicalBonus", ""),
		),
		String("equipmentType", "armor category or kind of gear, e.g. light, heavy, shield, ring, wondrous"),
		Enum("attunement", "", string(item.AttunementRequired), string(item.AttunementOptional), string(item.AttunementNone)),
		Integer("magicalBonus", "the +N bonus to attack and damage rolls, if any"),
		Integer("quantity", ""),
		Object("activation", "",
			String("type", "action, bonus, reaction, minute, hour, special"),
			Integer("cost", ""),
			String("condition", ""),
		),
		Enum("actionType", "", actionTypeValues()...),
		Object("duration", "",
			String("value", ""),
			String("units", "inst, turn, round, minute, hour, day, perm"),
		),
		Object("target", "",
			Number("value", "").Null(),
			String("units", ""),
			String("type", "creature, object, self, cone, sphere..."),
		),
		Object("range", "",
			Number("value", "normal range").Null(),
			Number("long", "long range").Null(),
			String("units", "ft or touch"),
		),
		Object("uses", "limited charges",
			Integer("value", "number of charges"),
			Enum("per", "", string(item.PerDay), string(item.PerShortRest), string(item.PerLongRest)),
			String("recovery", "formula for recovered charges"),
		),
		Object("damage", "",
			Array("parts", "[formula, damage type] pairs, base damage first", Array("", "", String("", ""))),
			String("versatile", "two-handed damage formula"),
		),
		Object("save", "",
			String("ability", "three letter ability, e.g. con"),
			Integer("dc", ""),
		),
		Integer("recharge", "recharge on this d6 result or higher").Null(),
	)
}

// Basic asks only for name and description. Used by the pre-extraction pass.
func Basic() Shape {
	return Item().Pick(NameBasic, "name", "description")
}

// Core is the compact item shape used by the small-schema modes
func Core() Shape {
	return Item().Pick(NameCore,
		"name", "description", "itemType", "rarity", "weaponType", "baseItem",
		"properties", "equipmentType", "attunement", "magicalBonus", "actionType",
	)
}

// Chunks are the optional field groups requested alongside Core
func Chunks() []Shape {
	full := Item()
	return []Shape{
		full.Pick(NameCombat, "damage", "save", "range", "armorClass"),
		full.Pick(NameUsage, "uses", "activation", "duration", "target", "recharge"),
		full.Pick(NamePhysical, "weight", "price", "quantity"),
	}
}

func actionTypeValues() []string {
	return append(toStrings(item.AllActionTypes()),
		"meleeWeaponAttack", "rangedWeaponAttack", "meleeSpellAttack", "rangedSpellAttack",
	)
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
