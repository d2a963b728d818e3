package errors

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// MetaFields holds the per-field messages of a failed validation as a
// map[string][]string
const MetaFields = "fields"

// ValidationBuilder collects problems per field. Build returns nil when
// there are none, otherwise one InvalidArgument error listing every field in
// the order it was first reported.
type ValidationBuilder struct {
	order  []string
	fields map[string][]string
}

// NewValidationBuilder creates an empty builder
func NewValidationBuilder() *ValidationBuilder {
	return &ValidationBuilder{fields: make(map[string][]string)}
}

// Field records message against field
func (vb *ValidationBuilder) Field(field, message string) *ValidationBuilder {
	if _, seen := vb.fields[field]; !seen {
		vb.order = append(vb.order, field)
	}
	vb.fields[field] = append(vb.fields[field], message)
	return vb
}

// RequiredField records a missing value
func (vb *ValidationBuilder) RequiredField(field string) *ValidationBuilder {
	return vb.Field(field, "is required")
}

// InvalidField records a value that is present but unusable
func (vb *ValidationBuilder) InvalidField(field, reason string) *ValidationBuilder {
	return vb.Field(field, "is invalid: "+reason)
}

// Build returns the collected problems as an error, or nil
func (vb *ValidationBuilder) Build() error {
	if len(vb.order) == 0 {
		return nil
	}

	parts := make([]string, len(vb.order))
	for i, field := range vb.order {
		parts[i] = fmt.Sprintf("%s %s", field, strings.Join(vb.fields[field], ", "))
	}
	return InvalidArgument("validation failed: "+strings.Join(parts, "; ")).
		WithMeta(MetaFields, vb.fields)
}

// ValidateRequired flags a blank string
func ValidateRequired(field, value string, vb *ValidationBuilder) {
	if strings.TrimSpace(value) == "" {
		vb.RequiredField(field)
	}
}

// ValidateRange flags an int outside [minValue, maxValue]
func ValidateRange(field string, value, minValue, maxValue int, vb *ValidationBuilder) {
	if value < minValue || value > maxValue {
		vb.Field(field, fmt.Sprintf("must be between %d and %d", minValue, maxValue))
	}
}

// ValidateEnum flags a value not in allowed
func ValidateEnum(field, value string, allowed []string, vb *ValidationBuilder) {
	if !slices.Contains(allowed, value) {
		vb.Field(field, "must be one of: "+strings.Join(allowed, ", "))
	}
}

// ValidatePositive flags a number that is zero or less
func ValidatePositive(field string, value float64, vb *ValidationBuilder) {
	if value <= 0 {
		vb.Field(field, "must be greater than zero")
	}
}

// ValidateDuration flags a duration that is zero or less
func ValidateDuration(field string, value time.Duration, vb *ValidationBuilder) {
	if value <= 0 {
		vb.Field(field, "must be a positive duration")
	}
}
