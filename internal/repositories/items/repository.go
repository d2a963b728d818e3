// Package items provides the interface for persisting finished tabletop items
package items

//go:generate mockgen -destination=mock/mock_repository.go -package=itemsmock github.com/KirkDiggler/rpg-item-parser/internal/repositories/items Repository

import (
	"context"
	"time"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
)

// Repository defines the interface for item persistence
type Repository interface {
	// Create stores a new item and assigns its ID
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input *CreateInput) (*CreateOutput, error)

	// Get retrieves an item by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if the item doesn't exist
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// List returns stored items, newest first
	List(ctx context.Context, input *ListInput) (*ListOutput, error)

	// Delete removes an item by ID
	// Returns errors.NotFound if the item doesn't exist
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// Record is a stored item
type Record struct {
	ID        string    `json:"id"`
	Item      *vtt.Item `json:"item"`
	RawText   string    `json:"raw_text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput defines the input for storing an item
type CreateInput struct {
	Item    *vtt.Item
	RawText string
}

// CreateOutput defines the output for storing an item
type CreateOutput struct {
	Record *Record
}

// GetInput defines the input for getting an item
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting an item
type GetOutput struct {
	Record *Record
}

// ListInput defines the input for listing items. Limit 0 means all.
type ListInput struct {
	Limit int
}

// ListOutput defines the output for listing items
type ListOutput struct {
	Records []*Record
}

// DeleteInput defines the input for deleting an item
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting an item
type DeleteOutput struct{}
