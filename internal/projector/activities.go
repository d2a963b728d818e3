package projector

import (
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
	"github.com/KirkDiggler/rpg-item-parser/internal/normalize"
)

// activities builds the attack activity every weapon has, plus a save
// activity when a full save is given and a utility activity when the item
// has limited uses.
func activities(it *item.Item, weaponType item.WeaponType) map[string]vtt.Activity {
	var parts []item.DamagePart
	if it.Damage != nil {
		parts = it.Damage.Parts
	}

	out := map[string]vtt.Activity{
		vtt.AttackActivityID: attackActivity(it, weaponType, parts),
	}
	if it.Save.IsComplete() {
		out[vtt.SaveActivityID] = saveActivity(it, parts)
	}
	if it.Uses.HasUses() {
		out[vtt.UtilityActivityID] = utilityActivity(it)
	}
	return out
}

func attackActivity(it *item.Item, weaponType item.WeaponType, parts []item.DamagePart) vtt.Activity {
	a := newActivity(vtt.AttackActivityID, vtt.ActivityAttack, "", 0)
	a.Attack = &vtt.AttackDetails{
		Type: vtt.AttackTypeInfo{
			Value:          normalize.AttackType(weaponType, it.Name),
			Classification: "weapon",
		},
	}
	if it.MagicalBonus > 0 {
		a.Attack.Bonus = strconv.Itoa(it.MagicalBonus)
	}

	dmg := &vtt.ActivityDamage{Parts: make([]vtt.DamagePart, 0, len(parts))}
	for i, p := range parts {
		part := damagePart(p)
		// the magical bonus belongs to the base damage only
		if i == 0 && it.MagicalBonus > 0 {
			part.Bonus = normalize.WithMagicalBonus(part.Bonus, it.MagicalBonus)
		}
		dmg.Parts = append(dmg.Parts, part)
	}
	a.Damage = dmg
	return a
}

func saveActivity(it *item.Item, parts []item.DamagePart) vtt.Activity {
	a := newActivity(vtt.SaveActivityID, vtt.ActivitySave, "", 1)
	a.Save = &vtt.SaveDetails{
		Ability: []string{strings.ToLower(it.Save.Ability)},
		DC: vtt.SaveDC{
			Calculation: "",
			Formula:     strconv.Itoa(*it.Save.DC),
		},
	}

	dmg := &vtt.ActivityDamage{OnSave: "half", Parts: []vtt.DamagePart{}}
	if len(parts) > 1 {
		for _, p := range parts[1:] {
			dmg.Parts = append(dmg.Parts, damagePart(p))
		}
	}
	a.Damage = dmg
	return a
}

func utilityActivity(it *item.Item) vtt.Activity {
	a := newActivity(vtt.UtilityActivityID, vtt.ActivityUtility, normalize.UtilityName(it.Name, it.Description), 2)
	a.Consumption.Targets = []vtt.ConsumptionTarget{
		{Type: "itemUses", Value: "1"},
	}
	if act := it.Activation; act != nil && act.Type != "" {
		a.Activation.Type = act.Type
		a.Activation.Override = true
		if act.Cost != nil {
			a.Activation.Value = *act.Cost
		}
	}
	return a
}

func newActivity(id string, t vtt.ActivityType, name string, sort int) vtt.Activity {
	return vtt.Activity{
		ID:   id,
		Type: t,
		Name: name,
		Sort: sort,
		Activation: vtt.ActivityActivation{
			Type:  "action",
			Value: 1,
		},
		Consumption: vtt.Consumption{Targets: []vtt.ConsumptionTarget{}, SpellSlot: true},
		Duration:    vtt.ActivityDuration{Units: "inst"},
		Range:       vtt.ActivityRange{},
		Target: vtt.ActivityTarget{
			Template: vtt.TargetTemplate{Units: DefaultRangeUnits},
			Prompt:   true,
		},
		Uses: vtt.ActivityUses{Recovery: []vtt.Recovery{}},
	}
}

// damagePart parses one formula. Formulas without dice are kept as a custom
// formula.
func damagePart(p item.DamagePart) vtt.DamagePart {
	part := vtt.DamagePart{
		Types: []string{},
	}
	if t := strings.ToLower(strings.TrimSpace(p.Type)); t != "" {
		part.Types = append(part.Types, t)
	}

	dice, ok := normalize.ParseDice(p.Formula)
	if !ok {
		part.Custom = vtt.CustomFormula{
			Enabled: strings.TrimSpace(p.Formula) != "",
			Formula: strings.TrimSpace(p.Formula),
		}
		return part
	}

	count, die := dice.Count, dice.Die
	part.Number = &count
	part.Denomination = &die
	part.Bonus = dice.Bonus
	return part
}
