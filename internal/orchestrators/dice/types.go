package dice

import (
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
)

// RollDamageInput defines the request for a damage preview
type RollDamageInput struct {
	Item *vtt.Item
	// Modifier replaces @mod in formulas
	Modifier int
}

// RollDamageOutput defines the response for a damage preview
type RollDamageOutput struct {
	Rolls []*DamageRoll
}

// DamageRoll is one rolled damage part
type DamageRoll struct {
	// Source is the activity name, or Base for the item's own damage
	Source     string
	Formula    string
	DamageType string
	Dice       []int
	DiceTotal  int
	Bonus      int
	Total      int
}
