package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/apexfs/firstline/pkg/domain/interfaces"
	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/domain/model/config"
	"github.com/apexfs/firstline/pkg/domain/types"
	"github.com/apexfs/firstline/pkg/repository/memory"
	"github.com/apexfs/firstline/pkg/service/scoring"
	"github.com/apexfs/firstline/pkg/utils/logging"
)

// RegistrarUseCase validates and normalizes raw submissions into scored
// model records. Registration, scoring and tier classification run
// synchronously as a single transition: a stored record is always scored.
type RegistrarUseCase struct {
	repo       interfaces.Repository
	policy     *config.Policy
	validator  *model.SubmissionValidator
	engine     *scoring.Engine
	classifier *scoring.Classifier
	now        func() time.Time
}

// NewRegistrarUseCase creates a new RegistrarUseCase
func NewRegistrarUseCase(repo interfaces.Repository, policy *config.Policy, engine *scoring.Engine, classifier *scoring.Classifier, now func() time.Time) *RegistrarUseCase {
	return &RegistrarUseCase{
		repo:       repo,
		policy:     policy,
		validator:  model.NewSubmissionValidator(&policy.Catalog, &policy.Options),
		engine:     engine,
		classifier: classifier,
		now:        now,
	}
}

// Register validates the submission, assigns identity and audit fields,
// scores it and stores the resulting record.
//
// Identity assignment is idempotent: a submission carrying a previously
// assigned model ID keeps it, and the original created_at of that record
// is preserved. A submission without an ID gets a fresh one. Validation
// failure leaves no partial record behind.
func (uc *RegistrarUseCase) Register(ctx context.Context, sub model.Submission) (*model.ModelRecord, error) {
	if err := uc.validator.Validate(sub); err != nil {
		return nil, err
	}

	id := sub.ModelID
	if id == "" {
		id = types.NewModelID()
	}

	createdAt := uc.now().UTC()
	if sub.ModelID != "" {
		existing, err := uc.repo.Get(ctx, sub.ModelID)
		switch {
		case err == nil:
			createdAt = existing.CreatedAt
		case errors.Is(err, memory.ErrNotFound):
			// First registration under an externally supplied ID
		default:
			return nil, goerr.Wrap(err, "failed to look up existing record", goerr.V(ModelIDKey, sub.ModelID))
		}
	}

	record := &model.ModelRecord{
		ID:               id,
		ModelName:        sub.ModelName,
		BusinessUse:      sub.BusinessUse,
		Domain:           sub.Domain,
		ModelType:        sub.ModelType,
		DeploymentMode:   sub.DeploymentMode,
		OwnerTeam:        sub.OwnerTeam,
		ModelStage:       sub.ModelStage,
		DeploymentRegion: sub.DeploymentRegion,
		CreatedBy:        sub.CreatedBy,
		FactorSelections: sub.FactorSelections,
		CreatedAt:        createdAt,
		ScoringVersion:   uc.policy.Catalog.ScoringVersion,
	}

	total, breakdown := uc.engine.Score(record.FactorSelections)
	record.TotalScore = total
	record.Breakdown = breakdown

	for _, entry := range breakdown {
		if !entry.Valid {
			logging.From(ctx).Warn("scoring degraded to zero points for factor",
				"factor", entry.FactorID,
				"value", entry.Value,
				ModelIDKey, record.ID,
			)
		}
	}

	tier := uc.classifier.Classify(total)
	record.ProposedTier = tier.ID
	record.TierName = tier.Name
	record.TierDescription = tier.Description

	stored, err := uc.repo.Put(ctx, record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store model record", goerr.V(ModelIDKey, record.ID))
	}

	return stored, nil
}

// ImportArtifact re-registers a previously exported artifact, preserving
// its identity and reloading its narrative fields.
func (uc *RegistrarUseCase) ImportArtifact(ctx context.Context, data []byte) (*model.ModelRecord, error) {
	artifact, err := model.ParseExportArtifact(data)
	if err != nil {
		return nil, err
	}

	record, err := uc.Register(ctx, artifact.ToSubmission())
	if err != nil {
		return nil, err
	}

	record.Narrative = artifact.ToNarrative()
	if !artifact.CreatedAt.IsZero() {
		record.CreatedAt = artifact.CreatedAt
	}
	stored, err := uc.repo.Put(ctx, record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store imported narrative", goerr.V(ModelIDKey, record.ID))
	}

	return stored, nil
}

// GetRecord returns the stored record for the given ID
func (uc *RegistrarUseCase) GetRecord(ctx context.Context, id types.ModelID) (*model.ModelRecord, error) {
	record, err := uc.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, memory.ErrNotFound) {
			return nil, goerr.Wrap(ErrRecordNotFound, "no such record", goerr.V(ModelIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get record", goerr.V(ModelIDKey, id))
	}
	return record, nil
}

// ListRecords returns all stored records
func (uc *RegistrarUseCase) ListRecords(ctx context.Context) ([]*model.ModelRecord, error) {
	records, err := uc.repo.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list records")
	}
	return records, nil
}
