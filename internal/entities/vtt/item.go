// Package vtt holds the virtual tabletop item record produced by the projector.
package vtt

// ItemType is the document type on the tabletop side
type ItemType string

// Tabletop item types
const (
	ItemTypeWeapon    ItemType = "weapon"
	ItemTypeEquipment ItemType = "equipment"
	ItemTypeFeat      ItemType = "feat"
	ItemTypeSpell     ItemType = "spell"
)

// Default icons per item type
const (
	IconWeapon    = "icons/svg/sword.svg"
	IconEquipment = "icons/svg/item-bag.svg"
	IconFeat      = "icons/svg/upgrade.svg"
	IconSpell     = "icons/svg/book.svg"
)

// Item is a finished tabletop record. It has no identity until a
// persistence sink stores it.
type Item struct {
	Name    string         `json:"name"`
	Type    ItemType       `json:"type"`
	Img     string         `json:"img"`
	System  System         `json:"system"`
	Effects []any          `json:"effects"`
	Flags   map[string]any `json:"flags"`
	Folder  *string        `json:"folder"`
}

// System is the type specific payload. Weapon and equipment fields are only
// set for those types and are omitted otherwise.
type System struct {
	Description Description `json:"description"`
	Source      Source      `json:"source"`
	Quantity    int         `json:"quantity"`
	Weight      Weight      `json:"weight"`
	Price       Price       `json:"price"`
	Rarity      string      `json:"rarity"`
	Identified  bool        `json:"identified"`
	Attunement  string      `json:"attunement"`
	Uses        Uses        `json:"uses"`
	Activation  Activation  `json:"activation"`
	Duration    Duration    `json:"duration"`
	Target      Target      `json:"target"`
	Range       Range       `json:"range"`
	Damage      Damage      `json:"damage"`
	Save        *Save       `json:"save,omitempty"`
	Recharge    *int        `json:"recharge,omitempty"`
	Type        *SystemType `json:"type,omitempty"`

	*WeaponSystem
	*EquipmentSystem
}

// WeaponSystem holds weapon-only fields
type WeaponSystem struct {
	Properties   []string            `json:"properties"`
	Activities   map[string]Activity `json:"activities"`
	MagicalBonus *int                `json:"magicalBonus"`
	Identifier   string              `json:"identifier"`
}

// EquipmentSystem holds equipment-only fields. HP, speed and strength are
// placeholders; text rarely states them reliably.
type EquipmentSystem struct {
	Armor    Armor `json:"armor"`
	HP       HP    `json:"hp"`
	Speed    Speed `json:"speed"`
	Strength *int  `json:"strength"`
}

// Description of the item in HTML
type Description struct {
	Value string `json:"value"`
	Chat  string `json:"chat"`
}

// Source book reference
type Source struct {
	Custom string `json:"custom"`
	Book   string `json:"book"`
	Page   string `json:"page"`
}

// Weight with units
type Weight struct {
	Value float64 `json:"value"`
	Units string  `json:"units"`
}

// Price with denomination
type Price struct {
	Value        float64 `json:"value"`
	Denomination string  `json:"denomination"`
}

// Uses tracks limited charges. Max is nil when the item has no charges.
type Uses struct {
	Max      *string    `json:"max"`
	Recovery []Recovery `json:"recovery"`
	Spent    int        `json:"spent"`
}

// Recovery describes when charges come back
type Recovery struct {
	Period string `json:"period"`
	Type   string `json:"type"`
}

// Recovery periods and types
const (
	PeriodDay       = "day"
	PeriodShortRest = "sr"
	PeriodLongRest  = "lr"

	RecoverAll = "recoverAll"
)

// Activation cost of the item
type Activation struct {
	Type      string `json:"type"`
	Value     *int   `json:"value"`
	Condition string `json:"condition"`
}

// Duration of the item effect
type Duration struct {
	Value string `json:"value"`
	Units string `json:"units"`
}

// Target of the item effect
type Target struct {
	Value *float64 `json:"value"`
	Units string   `json:"units"`
	Type  string   `json:"type"`
}

// Range of the item
type Range struct {
	Value *float64 `json:"value"`
	Long  *float64 `json:"long"`
	Units string   `json:"units"`
}

// Damage passthrough of formula/type pairs
type Damage struct {
	Parts     [][]string `json:"parts"`
	Versatile string     `json:"versatile"`
}

// Save forced by the item
type Save struct {
	Ability string `json:"ability"`
	DC      *int   `json:"dc"`
	Scaling string `json:"scaling"`
}

// SystemType is the category/base item pair for weapons and equipment
type SystemType struct {
	Value    string `json:"value"`
	BaseItem string `json:"baseItem"`
}

// Armor block for equipment
type Armor struct {
	Value        int  `json:"value"`
	Dex          *int `json:"dex"`
	MagicalBonus *int `json:"magicalBonus"`
}

// HP placeholder for equipment
type HP struct {
	Value      int    `json:"value"`
	Max        int    `json:"max"`
	DT         *int   `json:"dt"`
	Conditions string `json:"conditions"`
}

// Speed placeholder for equipment
type Speed struct {
	Value      *int   `json:"value"`
	Conditions string `json:"conditions"`
}
