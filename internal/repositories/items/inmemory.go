package items

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/idgen"
)

// InMemoryRepository implements Repository using in-memory storage. The CLI
// uses it when redis is not configured.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Record
	clock clock.Clock
	ids   idgen.Generator
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		store: make(map[string]*Record),
		clock: clock.New(),
		ids:   idgen.NewUUID("item"),
	}
}

// Create stores an item
func (r *InMemoryRepository) Create(_ context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil || input.Item == nil {
		return nil, errors.InvalidArgument(errItemNil)
	}

	record := &Record{
		ID:        r.ids.Generate(),
		Item:      input.Item,
		RawText:   input.RawText,
		CreatedAt: r.clock.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[record.ID] = record

	return &CreateOutput{Record: copyRecord(record)}, nil
}

// Get retrieves an item by ID
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.ID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.store[input.ID]
	if !exists {
		return nil, errors.NotFoundf("item with ID %s not found", input.ID)
	}
	return &GetOutput{Record: copyRecord(record)}, nil
}

// List returns items newest first
func (r *InMemoryRepository) List(_ context.Context, input *ListInput) (*ListOutput, error) {
	r.mu.RLock()
	records := make([]*Record, 0, len(r.store))
	for _, record := range r.store {
		records = append(records, copyRecord(record))
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if input != nil && input.Limit > 0 && len(records) > input.Limit {
		records = records[:input.Limit]
	}
	return &ListOutput{Records: records}, nil
}

// Delete removes an item
func (r *InMemoryRepository) Delete(_ context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil || input.ID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.ID]; !exists {
		return nil, errors.NotFoundf("item with ID %s not found", input.ID)
	}
	delete(r.store, input.ID)
	return &DeleteOutput{}, nil
}

func copyRecord(r *Record) *Record {
	out := *r
	return &out
}

var _ Repository = (*InMemoryRepository)(nil)
