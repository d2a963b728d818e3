// Package dice rolls the damage of a projected item so a parse can be
// sanity checked before import
package dice

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
)

const (
	// ModPlaceholder stands for the wielder's ability modifier in formulas
	ModPlaceholder = "@mod"

	// MaxDice caps a single dice term
	MaxDice = 100
)

var (
	// Regex for parsing simple dice notation like "2d6", "1d20", "3d8"
	diceNotationRegex = regexp.MustCompile(`^(\d+)d(\d+)$`)

	// Splits a formula into signed terms
	termRegex = regexp.MustCompile(`([+-]?)\s*([^+-]+)`)
)

// Service defines the interface for damage previews
type Service interface {
	// RollDamage rolls every damage part of the item's activities, or of its
	// base damage when it has none
	RollDamage(ctx context.Context, input *RollDamageInput) (*RollDamageOutput, error)
}

// Config holds the dependencies for the dice orchestrator
type Config struct {
	// Roller defaults to the toolkit's default roller
	Roller dice.Roller
}

type orchestrator struct {
	roller dice.Roller
}

// NewOrchestrator creates a new dice orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.DefaultRoller
	}

	return &orchestrator{roller: roller}, nil
}

// RollDamage rolls the item's damage parts with the given modifier
func (o *orchestrator) RollDamage(ctx context.Context, input *RollDamageInput) (*RollDamageOutput, error) {
	if input == nil || input.Item == nil {
		return nil, errors.InvalidArgument("item is required")
	}

	var rolls []*DamageRoll
	for _, a := range sortedActivities(input.Item) {
		if a.Damage == nil {
			continue
		}
		for _, p := range a.Damage.Parts {
			formula := partFormula(p)
			if formula == "" {
				continue
			}
			source := a.Name
			if source == "" {
				source = string(a.Type)
			}
			roll, err := o.roll(formula, input.Modifier)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to roll %s damage", source)
			}
			roll.Source = source
			roll.DamageType = strings.Join(p.Types, ", ")
			rolls = append(rolls, roll)
		}
	}

	if len(rolls) == 0 {
		for _, p := range input.Item.System.Damage.Parts {
			if len(p) == 0 || strings.TrimSpace(p[0]) == "" {
				continue
			}
			roll, err := o.roll(p[0], input.Modifier)
			if err != nil {
				return nil, errors.Wrap(err, "failed to roll base damage")
			}
			roll.Source = "Base"
			if len(p) > 1 {
				roll.DamageType = p[1]
			}
			rolls = append(rolls, roll)
		}
	}

	slog.InfoContext(ctx, "Damage rolled",
		"item", input.Item.Name,
		"modifier", input.Modifier,
		"rolls", len(rolls),
	)

	return &RollDamageOutput{Rolls: rolls}, nil
}

// roll evaluates a formula made of dice terms, integers and @mod joined by
// plus and minus signs
func (o *orchestrator) roll(formula string, modifier int) (*DamageRoll, error) {
	expanded := strings.ReplaceAll(strings.ToLower(formula), ModPlaceholder, strconv.Itoa(modifier))
	expanded = strings.ReplaceAll(expanded, " ", "")
	if expanded == "" {
		return nil, errors.InvalidArgument("formula is empty")
	}

	out := &DamageRoll{Formula: formula}
	for _, m := range termRegex.FindAllStringSubmatch(expanded, -1) {
		sign := 1
		if m[1] == "-" {
			sign = -1
		}
		term := m[2]

		if n, err := strconv.Atoi(term); err == nil {
			out.Bonus += sign * n
			continue
		}

		count, size, err := parseDiceNotation(term)
		if err != nil {
			return nil, err
		}
		values, err := o.roller.RollN(count, size)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll %s", term)
		}
		for _, v := range values {
			out.Dice = append(out.Dice, sign*v)
			out.DiceTotal += sign * v
		}
	}

	out.Total = out.DiceTotal + out.Bonus
	return out, nil
}

// parseDiceNotation parses simple dice notation like "2d6" and returns count and size
func parseDiceNotation(notation string) (count, size int, err error) {
	matches := diceNotationRegex.FindStringSubmatch(notation)
	if len(matches) != 3 {
		return 0, 0, errors.InvalidArgumentf("invalid dice term: %s (expected format: XdY)", notation)
	}

	count, _ = strconv.Atoi(matches[1])
	size, _ = strconv.Atoi(matches[2])
	if count <= 0 || size <= 0 {
		return 0, 0, errors.InvalidArgumentf("dice count and size must be positive: %s", notation)
	}
	if count > MaxDice {
		return 0, 0, errors.InvalidArgumentf("too many dice: %s", notation)
	}

	return count, size, nil
}

// partFormula rebuilds the formula of a projected damage part
func partFormula(p vtt.DamagePart) string {
	if p.Custom.Enabled {
		return p.Custom.Formula
	}
	if p.Number == nil || p.Denomination == nil {
		return ""
	}
	formula := fmt.Sprintf("%dd%d", *p.Number, *p.Denomination)
	if bonus := strings.TrimSpace(p.Bonus); bonus != "" {
		formula += " + " + bonus
	}
	return formula
}

func sortedActivities(it *vtt.Item) []vtt.Activity {
	if it.System.WeaponSystem == nil {
		return nil
	}
	out := make([]vtt.Activity, 0, len(it.System.Activities))
	for _, a := range it.System.Activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sort < out[j].Sort })
	return out
}
