// Package projector turns a parsed item into a tabletop record.
//
// Project is pure: the same item always yields the same record and nothing is
// read from or written to the outside world.
package projector

import (
	"html"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
	"github.com/KirkDiggler/rpg-item-parser/internal/normalize"
)

// Defaults for units the model usually leaves out
const (
	DefaultWeightUnits  = "lb"
	DefaultDenomination = "gp"
	DefaultRangeUnits   = "ft"
)

var icons = map[vtt.ItemType]string{
	vtt.ItemTypeWeapon:    vtt.IconWeapon,
	vtt.ItemTypeEquipment: vtt.IconEquipment,
	vtt.ItemTypeFeat:      vtt.IconFeat,
	vtt.ItemTypeSpell:     vtt.IconSpell,
}

// Project converts it into a tabletop item. A nil item gives nil.
func Project(it *item.Item) *vtt.Item {
	if it == nil {
		return nil
	}

	t := normalize.TargetType(it.ItemType, it.ActionType)
	magical := normalize.IsMagical(it)

	out := &vtt.Item{
		Name:    strings.TrimSpace(it.Name),
		Type:    t,
		Img:     icons[t],
		System:  baseSystem(it, magical),
		Effects: []any{},
		Flags:   map[string]any{},
	}

	switch t {
	case vtt.ItemTypeWeapon:
		projectWeapon(it, magical, &out.System)
	case vtt.ItemTypeEquipment:
		projectEquipment(it, &out.System)
	}

	return out
}

func baseSystem(it *item.Item, magical bool) vtt.System {
	sys := vtt.System{
		Description: vtt.Description{Value: descriptionHTML(it.Description)},
		Quantity:    max(it.Quantity, 1),
		Weight:      vtt.Weight{Units: DefaultWeightUnits},
		Price:       vtt.Price{Denomination: DefaultDenomination},
		Rarity:      string(it.Rarity),
		Identified:  true,
		Uses:        uses(it.Uses),
		Damage:      damage(it.Damage),
		Recharge:    it.Recharge,
	}

	// attunement only shows on items that are magical at all
	if magical {
		sys.Attunement = string(it.Attunement)
	}

	if it.Weight != nil {
		sys.Weight.Value = it.Weight.Value
		if it.Weight.Units != "" {
			sys.Weight.Units = it.Weight.Units
		}
	}
	if it.Price != nil {
		sys.Price.Value = it.Price.Value
		if it.Price.Denomination != "" {
			sys.Price.Denomination = string(it.Price.Denomination)
		}
	}
	if it.Activation != nil {
		sys.Activation = vtt.Activation{
			Type:      it.Activation.Type,
			Value:     it.Activation.Cost,
			Condition: it.Activation.Condition,
		}
	}
	if it.Duration != nil {
		sys.Duration = vtt.Duration{Value: it.Duration.Value, Units: it.Duration.Units}
	}
	if it.Target != nil {
		sys.Target = vtt.Target{Value: it.Target.Value, Units: it.Target.Units, Type: it.Target.Type}
	}
	if it.Range != nil {
		sys.Range = vtt.Range{Value: it.Range.Value, Long: it.Range.Long, Units: it.Range.Units}
	}
	if it.Save != nil && (it.Save.Ability != "" || it.Save.DC != nil) {
		sys.Save = &vtt.Save{
			Ability: strings.ToLower(it.Save.Ability),
			DC:      it.Save.DC,
			Scaling: "spell",
		}
		if it.Save.DC != nil {
			sys.Save.Scaling = "flat"
		}
	}

	return sys
}

func projectWeapon(it *item.Item, magical bool, sys *vtt.System) {
	weaponType := normalize.WeaponType(it.WeaponType, it.EquipmentType, it.Name)
	properties := normalize.Properties(it.Properties, magical)

	sys.Type = &vtt.SystemType{
		Value:    string(weaponType),
		BaseItem: normalize.BaseItem(it.BaseItem, it.Name),
	}
	if sys.Activation.Type == "" {
		one := 1
		sys.Activation = vtt.Activation{Type: "action", Value: &one}
	}
	if sys.Range.Units == "" {
		sys.Range.Units = DefaultRangeUnits
	}

	var bonus *int
	if it.MagicalBonus > 0 {
		b := it.MagicalBonus
		bonus = &b
	}

	sys.WeaponSystem = &vtt.WeaponSystem{
		Properties:   properties,
		Activities:   activities(it, weaponType),
		MagicalBonus: bonus,
		Identifier:   normalize.Identifier(it.Name),
	}
}

func projectEquipment(it *item.Item, sys *vtt.System) {
	sys.Type = &vtt.SystemType{
		Value: normalize.EquipmentType(it.EquipmentType, it.Name, it.Description),
	}

	armor := vtt.Armor{Value: normalize.DefaultArmorClass}
	if ac := it.ArmorClass; ac != nil {
		if ac.Value != nil {
			armor.Value = *ac.Value
		}
		armor.Dex = ac.Dex
		armor.MagicalBonus = ac.MagicalBonus
	}

	sys.EquipmentSystem = &vtt.EquipmentSystem{Armor: armor}
}

func uses(u *item.Uses) vtt.Uses {
	if !u.HasUses() {
		return vtt.Uses{Recovery: []vtt.Recovery{}}
	}
	limit := strconv.Itoa(*u.Value)
	return vtt.Uses{
		Max:      &limit,
		Recovery: normalize.Recovery(u.Per),
	}
}

func damage(d *item.Damage) vtt.Damage {
	out := vtt.Damage{Parts: [][]string{}}
	if d == nil {
		return out
	}
	for _, p := range d.Parts {
		out.Parts = append(out.Parts, []string{p.Formula, p.Type})
	}
	out.Versatile = d.Versatile
	return out
}

// descriptionHTML wraps each blank-line separated paragraph in <p>
func descriptionHTML(text string) string {
	var b strings.Builder
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
