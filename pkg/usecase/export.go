package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/apexfs/firstline/pkg/domain/interfaces"
	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/domain/types"
)

// ExportUseCase assembles the consolidated export artifact from a scored
// record and its narrative. The export gate is a soft, user-visible
// condition: IsExportable reports it without error, and Assemble returns
// ErrNotExportable when it does not hold.
type ExportUseCase struct {
	repo interfaces.Repository
}

// NewExportUseCase creates a new ExportUseCase
func NewExportUseCase(repo interfaces.Repository) *ExportUseCase {
	return &ExportUseCase{repo: repo}
}

// IsExportable reports whether the record satisfies the export
// preconditions: it is registered and scored, and its owner risk
// narrative meets the minimum length.
func (uc *ExportUseCase) IsExportable(record *model.ModelRecord) bool {
	return record.State() == types.RecordStateExportable
}

// Assemble snapshots the record and its narrative into an immutable
// export artifact. Re-invoking with a changed narrative produces a new
// artifact; earlier artifacts are never patched in place.
func (uc *ExportUseCase) Assemble(ctx context.Context, id types.ModelID) (*model.ExportArtifact, error) {
	record, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !uc.IsExportable(record) {
		return nil, goerr.Wrap(ErrNotExportable, "owner risk narrative is below the minimum length",
			goerr.V(ModelIDKey, id),
			goerr.V("min_length", model.NarrativeMinLength))
	}

	return model.NewExportArtifact(record), nil
}

func (uc *ExportUseCase) get(ctx context.Context, id types.ModelID) (*model.ModelRecord, error) {
	record, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrRecordNotFound, "no such record", goerr.V(ModelIDKey, id))
	}
	return record, nil
}
