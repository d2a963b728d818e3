package normalize

import (
	"strings"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
)

// Equipment type codes
const (
	EquipmentLight    = "light"
	EquipmentMedium   = "medium"
	EquipmentHeavy    = "heavy"
	EquipmentShield   = "shield"
	EquipmentClothing = "clothing"
	EquipmentTrinket  = "trinket"
	EquipmentRing     = "ring"
	EquipmentRod      = "rod"
	EquipmentWand     = "wand"
	EquipmentWondrous = "wondrous"
	EquipmentVehicle  = "vehicle"
)

// DefaultArmorClass applies when an armor item states no AC
const DefaultArmorClass = 10

var equipmentAliases = map[string]string{
	"light":         EquipmentLight,
	"light armor":   EquipmentLight,
	"medium":        EquipmentMedium,
	"medium armor":  EquipmentMedium,
	"heavy":         EquipmentHeavy,
	"heavy armor":   EquipmentHeavy,
	"shield":        EquipmentShield,
	"clothing":      EquipmentClothing,
	"clothes":       EquipmentClothing,
	"trinket":       EquipmentTrinket,
	"ring":          EquipmentRing,
	"rod":           EquipmentRod,
	"wand":          EquipmentWand,
	"wondrous":      EquipmentWondrous,
	"wondrous item": EquipmentWondrous,
	"vehicle":       EquipmentVehicle,
}

type keywordRule struct {
	keywords []string
	code     string
}

// Checked in order against name then description. Armor comes first so
// "ring mail" is never read as a ring, and medium before heavy so "half plate"
// is not read as plate.
var equipmentRules = []keywordRule{
	{[]string{"shield"}, EquipmentShield},
	{[]string{"breastplate", "half plate", "scale mail", "chain shirt", "hide"}, EquipmentMedium},
	{[]string{"plate", "splint", "chain mail", "ring mail"}, EquipmentHeavy},
	{[]string{"padded", "leather", "studded"}, EquipmentLight},
	{[]string{"ring"}, EquipmentRing},
	{[]string{"rod"}, EquipmentRod},
	{[]string{"wand"}, EquipmentWand},
	{[]string{"robe", "cloak", "boots", "gloves", "gauntlets", "hat", "clothes", "clothing", "belt"}, EquipmentClothing},
	{[]string{"amulet", "necklace", "pendant", "trinket", "charm"}, EquipmentTrinket},
}

// EquipmentType resolves the equipment category code
func EquipmentType(explicit, name, description string) string {
	if e := clean(explicit); e != "" {
		if code, ok := equipmentAliases[e]; ok {
			return code
		}
	}

	for _, text := range []string{clean(name), clean(description)} {
		if text == "" {
			continue
		}
		for _, rule := range equipmentRules {
			for _, kw := range rule.keywords {
				if containsWord(text, kw) {
					return rule.code
				}
			}
		}
	}
	return EquipmentTrinket
}

// Recovery maps a uses period onto the recovery list. Unknown periods yield an
// empty list.
func Recovery(per item.RecoveryPeriod) []vtt.Recovery {
	var period string
	switch clean(string(per)) {
	case "day", "daily", "dawn", "per day":
		period = vtt.PeriodDay
	case "shortrest", "short rest", "sr":
		period = vtt.PeriodShortRest
	case "longrest", "long rest", "lr":
		period = vtt.PeriodLongRest
	default:
		return []vtt.Recovery{}
	}
	return []vtt.Recovery{{Period: period, Type: vtt.RecoverAll}}
}

// ActionType maps long form action names onto codes. Unknown values give "".
func ActionType(raw item.ActionType) item.ActionType {
	switch strings.ToLower(strings.TrimSpace(string(raw))) {
	case "mwak", "meleeweaponattack", "melee weapon attack":
		return item.ActionMeleeWeaponAttack
	case "rwak", "rangedweaponattack", "ranged weapon attack":
		return item.ActionRangedWeaponAttack
	case "msak", "meleespellattack", "melee spell attack":
		return item.ActionMeleeSpellAttack
	case "rsak", "rangedspellattack", "ranged spell attack":
		return item.ActionRangedSpellAttack
	case "save", "savingthrow", "saving throw":
		return item.ActionSave
	case "heal", "healing":
		return item.ActionHeal
	case "abil", "ability", "ability check":
		return item.ActionAbilityCheck
	case "util", "utility":
		return item.ActionUtility
	case "other":
		return item.ActionOther
	default:
		return ""
	}
}

// TargetType resolves the tabletop document type from the item type, falling
// back to the action type when no item type was given.
func TargetType(itemType item.Type, actionType item.ActionType) vtt.ItemType {
	if itemType != "" {
		switch itemType {
		case item.TypeWeapon:
			return vtt.ItemTypeWeapon
		case item.TypeEquipment, item.TypeTool, item.TypeLoot, item.TypeBackpack:
			return vtt.ItemTypeEquipment
		case item.TypeConsumable:
			return vtt.ItemTypeFeat
		case item.TypeSpell:
			return vtt.ItemTypeSpell
		default:
			return vtt.ItemTypeEquipment
		}
	}

	if ActionType(actionType).IsWeaponAttack() {
		return vtt.ItemTypeWeapon
	}
	return vtt.ItemTypeFeat
}

// UtilityName picks a display name for the utility activity
func UtilityName(name, description string) string {
	text := strings.ToLower(name + " " + description)
	switch {
	case strings.Contains(text, "venom"), strings.Contains(text, "poison"):
		return "Poison Blade"
	case strings.Contains(text, "fire"), strings.Contains(text, "flame"):
		return "Ignite"
	case strings.Contains(text, "light"), strings.Contains(text, "illuminate"):
		return "Illuminate"
	default:
		return "Special Ability"
	}
}

// Identifier slugs an item name: lowercase, words joined by dashes
func Identifier(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(words, "-")
}
