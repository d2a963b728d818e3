// Package normalize maps free-text game vocabulary onto canonical codes.
//
// Every lookup follows the same order: an explicit value wins, then an exact
// table hit, then a keyword or substring scan, then a hard default. A later
// step never overrides an earlier one.
package normalize

import (
	"sort"
	"strings"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
)

// Weapon categories used by the base item table
const (
	CategorySimple  = "simple"
	CategoryMartial = "martial"
)

// BaseWeapon is a row of the base weapon table
type BaseWeapon struct {
	Name     string
	Code     string
	Category string
	Ranged   bool
}

var baseWeapons = []BaseWeapon{
	{"club", "club", CategorySimple, false},
	{"dagger", "dagger", CategorySimple, false},
	{"greatclub", "greatclub", CategorySimple, false},
	{"handaxe", "handaxe", CategorySimple, false},
	{"hand axe", "handaxe", CategorySimple, false},
	{"javelin", "javelin", CategorySimple, false},
	{"light hammer", "lighthammer", CategorySimple, false},
	{"mace", "mace", CategorySimple, false},
	{"quarterstaff", "quarterstaff", CategorySimple, false},
	{"sickle", "sickle", CategorySimple, false},
	{"spear", "spear", CategorySimple, false},
	{"light crossbow", "lightcrossbow", CategorySimple, true},
	{"dart", "dart", CategorySimple, true},
	{"shortbow", "shortbow", CategorySimple, true},
	{"short bow", "shortbow", CategorySimple, true},
	{"sling", "sling", CategorySimple, true},
	{"battleaxe", "battleaxe", CategoryMartial, false},
	{"battle axe", "battleaxe", CategoryMartial, false},
	{"flail", "flail", CategoryMartial, false},
	{"glaive", "glaive", CategoryMartial, false},
	{"greataxe", "greataxe", CategoryMartial, false},
	{"greatsword", "greatsword", CategoryMartial, false},
	{"great sword", "greatsword", CategoryMartial, false},
	{"halberd", "halberd", CategoryMartial, false},
	{"lance", "lance", CategoryMartial, false},
	{"longsword", "longsword", CategoryMartial, false},
	{"long sword", "longsword", CategoryMartial, false},
	{"maul", "maul", CategoryMartial, false},
	{"morningstar", "morningstar", CategoryMartial, false},
	{"morning star", "morningstar", CategoryMartial, false},
	{"pike", "pike", CategoryMartial, false},
	{"rapier", "rapier", CategoryMartial, false},
	{"scimitar", "scimitar", CategoryMartial, false},
	{"shortsword", "shortsword", CategoryMartial, false},
	{"short sword", "shortsword", CategoryMartial, false},
	{"trident", "trident", CategoryMartial, false},
	{"war pick", "warpick", CategoryMartial, false},
	{"warhammer", "warhammer", CategoryMartial, false},
	{"war hammer", "warhammer", CategoryMartial, false},
	{"whip", "whip", CategoryMartial, false},
	{"blowgun", "blowgun", CategoryMartial, true},
	{"hand crossbow", "handcrossbow", CategoryMartial, true},
	{"heavy crossbow", "heavycrossbow", CategoryMartial, true},
	{"longbow", "longbow", CategoryMartial, true},
	{"long bow", "longbow", CategoryMartial, true},
	{"net", "net", CategoryMartial, true},
}

// Ranged keywords checked against the lowercase name
var rangedKeywords = []string{"crossbow", "bow", "sling", "blowgun", "dart"}

// weaponsByLength is baseWeapons ordered longest name first so "hand crossbow"
// is found before anything shorter it contains.
var weaponsByLength = func() []BaseWeapon {
	out := make([]BaseWeapon, len(baseWeapons))
	copy(out, baseWeapons)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].Name) > len(out[j].Name) })
	return out
}()

// LookupBaseWeapon finds the base weapon for an item name: exact match, then
// whole-word match, then plain substring for names of five letters or more.
func LookupBaseWeapon(name string) (BaseWeapon, bool) {
	key := clean(name)
	if key == "" {
		return BaseWeapon{}, false
	}

	for _, w := range baseWeapons {
		if w.Name == key || w.Code == key {
			return w, true
		}
	}
	for _, w := range weaponsByLength {
		if containsWord(key, w.Name) {
			return w, true
		}
	}
	for _, w := range weaponsByLength {
		if len(w.Name) >= 5 && strings.Contains(key, w.Name) {
			return w, true
		}
	}
	return BaseWeapon{}, false
}

// BaseItem resolves the base weapon code. An explicit value is kept (mapped to
// its code when it names a table row); otherwise the name is looked up.
// Returns "" when nothing matches.
func BaseItem(explicit, name string) string {
	if e := clean(explicit); e != "" {
		for _, w := range baseWeapons {
			if w.Name == e || w.Code == e {
				return w.Code
			}
		}
		return strings.ReplaceAll(e, " ", "")
	}

	if w, ok := LookupBaseWeapon(name); ok {
		return w.Code
	}
	return ""
}

// IsRangedName reports whether the lowercase name carries a ranged keyword
func IsRangedName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range rangedKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// WeaponType resolves the weapon category. subtype is any free text the model
// gave about the kind of weapon ("martial melee", "natural weapon").
func WeaponType(explicit item.WeaponType, subtype, name string) item.WeaponType {
	for _, wt := range item.AllWeaponTypes() {
		if strings.EqualFold(string(explicit), string(wt)) {
			return wt
		}
	}

	sub := strings.ToLower(subtype)
	switch {
	case strings.Contains(sub, "natural"):
		return item.WeaponNatural
	case strings.Contains(sub, "improvised"):
		return item.WeaponImprovised
	}

	ranged := strings.Contains(sub, "ranged") || IsRangedName(name)

	category := ""
	switch {
	case strings.Contains(sub, "simple"):
		category = CategorySimple
	case strings.Contains(sub, "martial"):
		category = CategoryMartial
	default:
		if w, ok := LookupBaseWeapon(name); ok {
			category = w.Category
			ranged = ranged || w.Ranged
		}
	}

	if category == CategorySimple {
		if ranged {
			return item.WeaponSimpleRanged
		}
		return item.WeaponSimpleMelee
	}
	if ranged {
		return item.WeaponMartialRanged
	}
	return item.WeaponMartialMelee
}

// AttackType decides melee or ranged for the attack activity. Thrown weapons
// stay melee since that is their primary mode; javelins come out melee too.
func AttackType(weaponType item.WeaponType, name string) string {
	if weaponType.IsRanged() || IsRangedName(name) {
		return vtt.AttackRanged
	}
	return vtt.AttackMelee
}

func clean(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// containsWord reports whether phrase occurs in text on word boundaries
func containsWord(text, phrase string) bool {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	})
	padded := " " + strings.Join(words, " ") + " "
	return strings.Contains(padded, " "+phrase+" ")
}
