package extraction

import (
	"maps"
	"strings"

	"github.com/KirkDiggler/rpg-item-parser/internal/shape"
)

// AskInput is one structured extraction request
type AskInput struct {
	// Prompt may contain {name} placeholders filled from Inputs
	Prompt string
	Shape  shape.Shape
	Inputs map[string]string
	// Overrides replace top level keys of the result
	Overrides map[string]any
	// Deletions remove top level keys of the result
	Deletions []string
	// Label names the request in logs and notifications
	Label string
}

func (in *AskInput) label() string {
	if in.Label != "" {
		return in.Label
	}
	return in.Shape.Name
}

// AskOutput is a validated extraction result
type AskOutput struct {
	Value map[string]any
	Raw   string
	// Shared is set when the result came from an identical concurrent ask
	Shared bool
}

// RawInput is a prompt sent without format instructions
type RawInput struct {
	Prompt string
	Inputs map[string]string
	Label  string
}

// Interpolate replaces {name} placeholders with values from inputs. Unknown
// placeholders are left alone.
func Interpolate(prompt string, inputs map[string]string) string {
	if len(inputs) == 0 {
		return prompt
	}

	pairs := make([]string, 0, len(inputs)*2)
	for k, v := range inputs {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(prompt)
}

// Apply returns a shallow copy of value with overrides set and deletions
// removed. Keys are top level only; there is no path syntax.
func Apply(value map[string]any, overrides map[string]any, deletions []string) map[string]any {
	out := make(map[string]any, len(value)+len(overrides))
	maps.Copy(out, value)
	maps.Copy(out, overrides)
	for _, k := range deletions {
		delete(out, k)
	}
	return out
}
