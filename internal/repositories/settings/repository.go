// Package settings stores user overrides of configuration values
package settings

import (
	"context"
)

// DefaultNamespace scopes every stored setting
const DefaultNamespace = "itemparser"

// Repository defines the interface for the settings store. Keys are dotted
// config keys such as "batch.enabled"; values are their string form.
type Repository interface {
	// Get returns a stored value
	// Returns errors.NotFound when the key has never been set
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Set stores a value
	Set(ctx context.Context, input *SetInput) (*SetOutput, error)

	// List returns every stored value
	List(ctx context.Context) (*ListOutput, error)

	// Delete removes a stored value so the config default applies again
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// GetInput defines the input for reading a setting
type GetInput struct {
	Key string
}

// GetOutput defines the output for reading a setting
type GetOutput struct {
	Value string
}

// SetInput defines the input for storing a setting
type SetInput struct {
	Key   string
	Value string
}

// SetOutput defines the output for storing a setting
type SetOutput struct{}

// ListOutput defines the output for listing settings
type ListOutput struct {
	Values map[string]string
}

// DeleteInput defines the input for removing a setting
type DeleteInput struct {
	Key string
}

// DeleteOutput defines the output for removing a setting
type DeleteOutput struct{}
