package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/apexfs/firstline/pkg/domain/interfaces"
	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/domain/types"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = goerr.New("record not found")

// Repository is an in-memory record store. Records are copied on the way
// in and out to prevent external mutation of stored state.
type Repository struct {
	mu      sync.RWMutex
	records map[types.ModelID]*model.ModelRecord
}

var _ interfaces.Repository = (*Repository)(nil)

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		records: make(map[types.ModelID]*model.ModelRecord),
	}
}

// Put stores or replaces the record keyed by its ID
func (r *Repository) Put(ctx context.Context, record *model.ModelRecord) (*model.ModelRecord, error) {
	if err := record.ID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "record requires a model ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := record.Clone()
	r.records[stored.ID] = stored
	return stored.Clone(), nil
}

// Get returns the record for the given ID
func (r *Repository) Get(ctx context.Context, id types.ModelID) (*model.ModelRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "model record not found", goerr.V("id", id))
	}
	return record.Clone(), nil
}

// List returns all stored records sorted by creation time, oldest first
func (r *Repository) List(ctx context.Context) ([]*model.ModelRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*model.ModelRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record.Clone())
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// Close releases repository resources. No-op for the in-memory store.
func (r *Repository) Close() error {
	return nil
}
