package normalize

import (
	"strings"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
)

// Weapon property codes
const (
	PropertyAmmunition = "amm"
	PropertyFinesse    = "fin"
	PropertyHeavy      = "hvy"
	PropertyLight      = "lgt"
	PropertyLoading    = "lod"
	PropertyReach      = "rch"
	PropertyReload     = "rel"
	PropertyReturning  = "ret"
	PropertySpecial    = "spc"
	PropertyThrown     = "thr"
	PropertyTwoHanded  = "two"
	PropertyVersatile  = "ver"
	PropertySilvered   = "sil"
	PropertyAdamantine = "ada"
	PropertyFocus      = "foc"
	PropertyMagical    = "mgc"
)

var propertyCodes = map[string]string{
	"ammunition": PropertyAmmunition,
	"finesse":    PropertyFinesse,
	"heavy":      PropertyHeavy,
	"light":      PropertyLight,
	"loading":    PropertyLoading,
	"reach":      PropertyReach,
	"reload":     PropertyReload,
	"returning":  PropertyReturning,
	"special":    PropertySpecial,
	"thrown":     PropertyThrown,
	"two-handed": PropertyTwoHanded,
	"two handed": PropertyTwoHanded,
	"twohanded":  PropertyTwoHanded,
	"versatile":  PropertyVersatile,
	"silvered":   PropertySilvered,
	"adamantine": PropertyAdamantine,
	"focus":      PropertyFocus,
	"magic":      PropertyMagical,
	"magical":    PropertyMagical,
}

// PropertyCode maps a property token to its code. Unknown tokens pass through
// lowercased.
func PropertyCode(token string) string {
	key := strings.ToLower(strings.TrimSpace(token))
	if code, ok := propertyCodes[key]; ok {
		return code
	}
	return key
}

// Properties maps every token, drops blanks and duplicates, and appends the
// magical code for magical items.
func Properties(tokens []string, magical bool) []string {
	out := make([]string, 0, len(tokens)+1)
	seen := make(map[string]bool, len(tokens)+1)
	for _, t := range tokens {
		code := PropertyCode(t)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	if magical && !seen[PropertyMagical] {
		out = append(out, PropertyMagical)
	}
	return out
}

var magicKeywords = []string{"magic", "magical", "spell", "enchant", "bonus to attack", "bonus to damage"}

// IsMagical reports whether an item should be treated as magical: a positive
// bonus, rarity above common, required attunement, or a magic keyword in the
// description.
func IsMagical(it *item.Item) bool {
	if it == nil {
		return false
	}
	if it.MagicalBonus > 0 || it.Rarity.AboveCommon() || it.Attunement == item.AttunementRequired {
		return true
	}

	desc := strings.ToLower(it.Description)
	for _, kw := range magicKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}
