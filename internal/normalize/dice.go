package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Matches the first dice term in a formula such as "1d4 + @mod"
var diceTermRegex = regexp.MustCompile(`(\d+)d(\d+)`)

// Dice is a parsed damage formula
type Dice struct {
	Count int
	Die   int
	// Bonus is whatever follows the dice term, without a leading "+"
	Bonus string
}

// ParseDice extracts the dice count and size from a formula. ok is false when
// the formula has no dice term; Bonus then holds the whole formula.
func ParseDice(formula string) (Dice, bool) {
	formula = strings.TrimSpace(strings.ToLower(formula))
	loc := diceTermRegex.FindStringSubmatchIndex(formula)
	if loc == nil {
		return Dice{Bonus: trimBonus(formula)}, false
	}

	count, err := strconv.Atoi(formula[loc[2]:loc[3]])
	if err != nil {
		return Dice{Bonus: trimBonus(formula)}, false
	}
	die, err := strconv.Atoi(formula[loc[4]:loc[5]])
	if err != nil {
		return Dice{Bonus: trimBonus(formula)}, false
	}

	rest := formula[:loc[0]] + formula[loc[1]:]
	return Dice{Count: count, Die: die, Bonus: trimBonus(rest)}, true
}

// WithMagicalBonus appends a magical bonus to a damage bonus expression.
// "@mod" becomes "@mod + 1"; an empty bonus becomes "1".
func WithMagicalBonus(bonus string, magicalBonus int) string {
	if magicalBonus == 0 {
		return bonus
	}
	n := strconv.Itoa(magicalBonus)
	if strings.TrimSpace(bonus) == "" {
		return n
	}
	return bonus + " + " + n
}

func trimBonus(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSpace(strings.TrimPrefix(s, "+"))
	return s
}
