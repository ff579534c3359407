package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/apexfs/firstline/pkg/domain/interfaces"
	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/domain/types"
	"github.com/apexfs/firstline/pkg/repository/memory"
)

// NarrativeUseCase attaches and replaces the free-text narrative of a
// scored record. The narrative is replaced wholesale, so editing it
// below the minimum length drops the record out of the exportable state.
type NarrativeUseCase struct {
	repo interfaces.Repository
}

// NewNarrativeUseCase creates a new NarrativeUseCase
func NewNarrativeUseCase(repo interfaces.Repository) *NarrativeUseCase {
	return &NarrativeUseCase{repo: repo}
}

// Update replaces the narrative of the record and returns the updated record
func (uc *NarrativeUseCase) Update(ctx context.Context, id types.ModelID, narrative model.Narrative) (*model.ModelRecord, error) {
	record, err := uc.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, memory.ErrNotFound) {
			return nil, goerr.Wrap(ErrRecordNotFound, "no such record", goerr.V(ModelIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get record", goerr.V(ModelIDKey, id))
	}

	record.Narrative = narrative
	stored, err := uc.repo.Put(ctx, record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store narrative", goerr.V(ModelIDKey, id))
	}

	return stored, nil
}
