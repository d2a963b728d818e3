package settings

import (
	"context"
	"maps"
	"sync"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{values: make(map[string]string)}
}

var _ Repository = (*InMemoryRepository)(nil)

// Get returns a stored value
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.values[input.Key]
	if !ok {
		return nil, errors.NotFoundf("setting %s is not set", input.Key)
	}
	return &GetOutput{Value: value}, nil
}

// Set stores a value
func (r *InMemoryRepository) Set(_ context.Context, input *SetInput) (*SetOutput, error) {
	if input == nil || input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[input.Key] = input.Value
	return &SetOutput{}, nil
}

// List returns a copy of every stored value
func (r *InMemoryRepository) List(_ context.Context) (*ListOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &ListOutput{Values: maps.Clone(r.values)}, nil
}

// Delete removes a stored value
func (r *InMemoryRepository) Delete(_ context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil || input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, input.Key)
	return &DeleteOutput{}, nil
}
