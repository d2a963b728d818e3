package item

import (
	"encoding/json"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
)

// Item is the parsed intermediate representation of one item.
// It is built once per extraction and not modified afterwards.
type Item struct {
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	ItemType      Type        `json:"itemType,omitempty"`
	Weight        *Weight     `json:"weight,omitempty"`
	Price         *Price      `json:"price,omitempty"`
	Rarity        Rarity      `json:"rarity,omitempty"`
	WeaponType    WeaponType  `json:"weaponType,omitempty"`
	BaseItem      string      `json:"baseItem,omitempty"`
	Properties    []string    `json:"properties,omitempty"`
	ArmorClass    *ArmorClass `json:"armorClass,omitempty"`
	EquipmentType string      `json:"equipmentType,omitempty"`
	Attunement    Attunement  `json:"attunement,omitempty"`
	MagicalBonus  int         `json:"magicalBonus,omitempty"`
	Quantity      int         `json:"quantity,omitempty"`
	Activation    *Activation `json:"activation,omitempty"`
	ActionType    ActionType  `json:"actionType,omitempty"`
	Duration      *Duration   `json:"duration,omitempty"`
	Target        *Target     `json:"target,omitempty"`
	Range         *Range      `json:"range,omitempty"`
	Uses          *Uses       `json:"uses,omitempty"`
	Damage        *Damage     `json:"damage,omitempty"`
	Save          *Save       `json:"save,omitempty"`
	Recharge      *int        `json:"recharge,omitempty"`
}

// Weight of a single item
type Weight struct {
	Value float64 `json:"value"`
	Units string  `json:"units,omitempty"`
}

// Price of a single item
type Price struct {
	Value        float64      `json:"value"`
	Denomination Denomination `json:"denomination,omitempty"`
}

// ArmorClass for armor and shields
type ArmorClass struct {
	Value        *int `json:"value,omitempty"`
	Dex          *int `json:"dex,omitempty"`
	MagicalBonus *int `json:"magicalBonus,omitempty"`
}

// Activation describes what it costs to use the item
type Activation struct {
	Type      string `json:"type,omitempty"`
	Cost      *int   `json:"cost,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// Duration of an effect
type Duration struct {
	Value string `json:"value,omitempty"`
	Units string `json:"units,omitempty"`
}

// Target of an effect
type Target struct {
	Value *float64 `json:"value,omitempty"`
	Units string   `json:"units,omitempty"`
	Type  string   `json:"type,omitempty"`
}

// Range of an attack or effect
type Range struct {
	Value *float64 `json:"value,omitempty"`
	Long  *float64 `json:"long,omitempty"`
	Units string   `json:"units,omitempty"`
}

// Uses tracks limited charges
type Uses struct {
	Value    *int           `json:"value,omitempty"`
	Per      RecoveryPeriod `json:"per,omitempty"`
	Recovery string         `json:"recovery,omitempty"`
}

// HasUses reports whether a positive use count was given
func (u *Uses) HasUses() bool {
	return u != nil && u.Value != nil && *u.Value > 0
}

// Damage lists formula/type pairs. Parts[0] is the base damage, the rest are
// secondary effects such as poison.
type Damage struct {
	Parts     []DamagePart `json:"parts,omitempty"`
	Versatile string       `json:"versatile,omitempty"`
}

// DamagePart is one [formula, type] pair
type DamagePart struct {
	Formula string
	Type    string
}

// MarshalJSON encodes the part as a two element array
func (p DamagePart) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{p.Formula, p.Type})
}

// UnmarshalJSON accepts either [formula, type] or {"formula": ..., "type": ...}
func (p *DamagePart) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) > 0 {
			p.Formula = pair[0]
		}
		if len(pair) > 1 {
			p.Type = pair[1]
		}
		return nil
	}

	var obj struct {
		Formula string `json:"formula"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.InvalidArgumentf("damage part must be [formula, type]: %s", string(data))
	}
	p.Formula = obj.Formula
	p.Type = obj.Type
	return nil
}

// Save describes a saving throw the item forces
type Save struct {
	Ability string `json:"ability,omitempty"`
	DC      *int   `json:"dc,omitempty"`
}

// IsComplete reports whether both ability and DC are present
func (s *Save) IsComplete() bool {
	return s != nil && s.Ability != "" && s.DC != nil
}

// FromMap decodes a validated extraction result into an Item.
// Quantity defaults to 1.
func FromMap(m map[string]any) (*Item, error) {
	if m == nil {
		return nil, errors.InvalidArgument("item data is required")
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode item data")
	}

	var it Item
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode item data")
	}

	if it.Name == "" {
		return nil, errors.InvalidArgument("item name is required")
	}
	if it.Quantity <= 0 {
		it.Quantity = 1
	}

	return &it, nil
}

// ToMap encodes the item back into the generic form used by the extraction layer
func (it *Item) ToMap() (map[string]any, error) {
	data, err := json.Marshal(it)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode item")
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to decode item")
	}
	return m, nil
}
