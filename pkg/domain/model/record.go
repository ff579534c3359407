package model

import (
	"time"

	"github.com/apexfs/firstline/pkg/domain/types"
)

// Submission is the raw registration input supplied by the UI collaborator.
// Free-text fields are unconstrained strings; factor selections must match
// the catalog's allowed values exactly.
type Submission struct {
	ModelID          types.ModelID // empty on first registration
	ModelName        string
	BusinessUse      string
	Domain           string
	ModelType        string
	DeploymentMode   string
	OwnerTeam        string // optional
	ModelStage       string // optional
	DeploymentRegion string // optional
	CreatedBy        string // optional
	FactorSelections map[types.FactorID]string
}

// ScoreBreakdownEntry is a read-only artifact of one scoring pass for one
// factor. Ordering of entries mirrors catalog factor order, not the
// insertion order of the submission.
type ScoreBreakdownEntry struct {
	FactorID types.FactorID
	Value    string
	Points   int
	// Valid is false when the factor was absent from the record or its
	// value was not found in the catalog. Points is zero in that case.
	Valid bool
}

// ModelRecord is the central entity: a registered, scored model.
type ModelRecord struct {
	ID               types.ModelID
	ModelName        string
	BusinessUse      string
	Domain           string
	ModelType        string
	DeploymentMode   string
	OwnerTeam        string
	ModelStage       string
	DeploymentRegion string
	CreatedBy        string
	FactorSelections map[types.FactorID]string

	CreatedAt      time.Time
	ScoringVersion string

	TotalScore      int
	ProposedTier    types.TierID
	TierName        string
	TierDescription string
	Breakdown       []ScoreBreakdownEntry

	Narrative Narrative
}

// State derives the lifecycle state of the record. Stored records are
// always at least scored; exportability follows the narrative gate and
// is re-derived on every call.
func (r *ModelRecord) State() types.RecordState {
	if r == nil || r.ID == "" {
		return types.RecordStateUnregistered
	}
	if r.Narrative.MeetsMinimum() {
		return types.RecordStateExportable
	}
	return types.RecordStateScored
}

// Clone returns a deep copy of the record
func (r *ModelRecord) Clone() *ModelRecord {
	if r == nil {
		return nil
	}
	copied := *r
	if r.FactorSelections != nil {
		copied.FactorSelections = make(map[types.FactorID]string, len(r.FactorSelections))
		for k, v := range r.FactorSelections {
			copied.FactorSelections[k] = v
		}
	}
	if r.Breakdown != nil {
		copied.Breakdown = make([]ScoreBreakdownEntry, len(r.Breakdown))
		copy(copied.Breakdown, r.Breakdown)
	}
	return &copied
}
