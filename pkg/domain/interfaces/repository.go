package interfaces

import (
	"context"

	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/domain/types"
)

// Repository provides access to registered model records. A single
// workflow instance owns one record at a time; implementations only need
// to guard their own internal state.
type Repository interface {
	// Put stores or replaces the record keyed by its ID
	Put(ctx context.Context, record *model.ModelRecord) (*model.ModelRecord, error)

	// Get returns the record for the given ID
	Get(ctx context.Context, id types.ModelID) (*model.ModelRecord, error)

	// List returns all stored records
	List(ctx context.Context) ([]*model.ModelRecord, error)

	// Close releases repository resources
	Close() error
}
