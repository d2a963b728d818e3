package srd

import (
	"fmt"
	"strings"

	"github.com/fadedpez/dnd5e-api/entities"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
	"github.com/KirkDiggler/rpg-item-parser/internal/normalize"
)

// Weapon is a reference weapon
type Weapon struct {
	Key        string
	Name       string
	Category   string
	Range      string
	Weight     float64
	Cost       *Cost
	DamageDice string
	DamageType string
	Properties []string
}

// Cost in coins
type Cost struct {
	Quantity int
	Unit     string
}

// WeaponType is the category code for the reference weapon
func (w *Weapon) WeaponType() item.WeaponType {
	simple := strings.EqualFold(w.Category, normalize.CategorySimple)
	ranged := strings.EqualFold(w.Range, "ranged")
	switch {
	case simple && ranged:
		return item.WeaponSimpleRanged
	case simple:
		return item.WeaponSimpleMelee
	case ranged:
		return item.WeaponMartialRanged
	default:
		return item.WeaponMartialMelee
	}
}

func convertWeapon(eq *entities.Weapon) *Weapon {
	w := &Weapon{
		Key:      eq.Key,
		Name:     eq.Name,
		Category: eq.WeaponCategory,
		Range:    eq.WeaponRange,
		Weight:   float64(eq.Weight),
	}
	if eq.Cost != nil {
		w.Cost = &Cost{Quantity: eq.Cost.Quantity, Unit: eq.Cost.Unit}
	}
	if eq.Damage != nil {
		w.DamageDice = eq.Damage.DamageDice
		if eq.Damage.DamageType != nil {
			w.DamageType = strings.ToLower(eq.Damage.DamageType.Name)
		}
	}
	for _, p := range eq.Properties {
		if p != nil && p.Name != "" {
			w.Properties = append(w.Properties, p.Name)
		}
	}
	return w
}

// Enrich returns a copy of it with blanks filled from w. Values the model
// reported are never replaced.
func Enrich(it *item.Item, w *Weapon) *item.Item {
	if it == nil {
		return nil
	}
	out := *it
	if w == nil {
		return &out
	}

	if out.WeaponType == "" {
		out.WeaponType = w.WeaponType()
	}
	if out.BaseItem == "" {
		out.BaseItem = normalize.BaseItem("", readableName(w.Name))
	}
	if len(out.Properties) == 0 && len(w.Properties) > 0 {
		out.Properties = append([]string(nil), w.Properties...)
	}
	if out.Weight == nil && w.Weight > 0 {
		out.Weight = &item.Weight{Value: w.Weight, Units: "lb"}
	}
	if out.Price == nil && w.Cost != nil {
		out.Price = &item.Price{
			Value:        float64(w.Cost.Quantity),
			Denomination: item.Denomination(strings.ToLower(w.Cost.Unit)),
		}
	}
	if (out.Damage == nil || len(out.Damage.Parts) == 0) && w.DamageDice != "" {
		dmg := &item.Damage{}
		if out.Damage != nil {
			dmg.Versatile = out.Damage.Versatile
		}
		dmg.Parts = []item.DamagePart{{
			Formula: fmt.Sprintf("%s + @mod", w.DamageDice),
			Type:    w.DamageType,
		}}
		out.Damage = dmg
	}
	return &out
}
