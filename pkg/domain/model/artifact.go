package model

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/goerr/v2"

	"github.com/apexfs/firstline/pkg/domain/types"
)

// ExportFormatVersion tags every export artifact. The value is kept
// compatible with artifacts produced by earlier releases so the import
// path can resume them.
const ExportFormatVersion = "lab1_export_v1"

// ErrFormatVersionMismatch is returned when an imported artifact does not
// carry the expected export format version.
var ErrFormatVersionMismatch = goerr.New("export format version mismatch")

// BreakdownValue is the wire form of one score breakdown entry
type BreakdownValue struct {
	Value  string `json:"value"`
	Points int    `json:"points"`
}

// ExportArtifact is the immutable consolidated export record: all model
// record fields flattened, the narrative fields, and the format version.
// Optional fields are emitted as explicit nulls, never omitted, so
// downstream consumers have a stable schema. Factor selections are
// flattened too: each selection appears as a top-level key named by its
// factor ID, not nested under a container object.
type ExportArtifact struct {
	ModelID          types.ModelID `json:"model_id"`
	ModelName        string        `json:"model_name"`
	BusinessUse      string        `json:"business_use"`
	Domain           string        `json:"domain"`
	ModelType        string        `json:"model_type"`
	DeploymentMode   string        `json:"deployment_mode"`
	OwnerTeam        *string       `json:"owner_team"`
	ModelStage       *string       `json:"model_stage"`
	DeploymentRegion *string       `json:"deployment_region"`
	CreatedBy        *string       `json:"created_by"`
	CreatedAt        time.Time     `json:"created_at"`
	ScoringVersion   string        `json:"scoring_version"`

	FactorSelections map[string]string `json:"-"`

	InherentRiskScore       int                       `json:"inherent_risk_score"`
	ProposedRiskTier        string                    `json:"proposed_risk_tier"`
	ProposedTierDescription string                    `json:"proposed_tier_description"`
	ScoreBreakdown          map[string]BreakdownValue `json:"score_breakdown"`

	OwnerRiskNarrative  string  `json:"owner_risk_narrative"`
	MitigationsProposed *string `json:"mitigations_proposed"`
	OpenQuestions       *string `json:"open_questions"`

	ExportFormatVersion string `json:"export_format_version"`
}

// NewExportArtifact snapshots a scored record and its narrative into an
// immutable artifact. Callers must check exportability first; this
// constructor only merges.
func NewExportArtifact(record *ModelRecord) *ExportArtifact {
	breakdown := make(map[string]BreakdownValue, len(record.Breakdown))
	for _, entry := range record.Breakdown {
		breakdown[entry.FactorID.String()] = BreakdownValue{
			Value:  entry.Value,
			Points: entry.Points,
		}
	}

	selections := make(map[string]string, len(record.FactorSelections))
	for id, value := range record.FactorSelections {
		selections[id.String()] = value
	}

	return &ExportArtifact{
		ModelID:          record.ID,
		ModelName:        record.ModelName,
		BusinessUse:      record.BusinessUse,
		Domain:           record.Domain,
		ModelType:        record.ModelType,
		DeploymentMode:   record.DeploymentMode,
		OwnerTeam:        optional(record.OwnerTeam),
		ModelStage:       optional(record.ModelStage),
		DeploymentRegion: optional(record.DeploymentRegion),
		CreatedBy:        optional(record.CreatedBy),
		CreatedAt:        record.CreatedAt,
		ScoringVersion:   record.ScoringVersion,

		FactorSelections: selections,

		InherentRiskScore:       record.TotalScore,
		ProposedRiskTier:        record.TierName,
		ProposedTierDescription: record.TierDescription,
		ScoreBreakdown:          breakdown,

		OwnerRiskNarrative:  record.Narrative.OwnerRiskNarrative,
		MitigationsProposed: optional(record.Narrative.MitigationsProposed),
		OpenQuestions:       optional(record.Narrative.OpenQuestions),

		ExportFormatVersion: ExportFormatVersion,
	}
}

// artifactFields are the fixed top-level keys of the artifact schema.
// Any other top-level string key is a flattened factor selection.
var artifactFields = map[string]bool{
	"model_id":                  true,
	"model_name":                true,
	"business_use":              true,
	"domain":                    true,
	"model_type":                true,
	"deployment_mode":           true,
	"owner_team":                true,
	"model_stage":               true,
	"deployment_region":         true,
	"created_by":                true,
	"created_at":                true,
	"registered_at":             true,
	"scoring_version":           true,
	"inherent_risk_score":       true,
	"proposed_risk_tier":        true,
	"proposed_tier_description": true,
	"score_breakdown":           true,
	"owner_risk_narrative":      true,
	"mitigations_proposed":      true,
	"open_questions":            true,
	"export_format_version":     true,
}

// MarshalJSON emits factor selections as top-level keys alongside the
// fixed fields, keyed by factor ID.
func (a *ExportArtifact) MarshalJSON() ([]byte, error) {
	type plain ExportArtifact
	base, err := json.Marshal((*plain)(a))
	if err != nil {
		return nil, err
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for id, value := range a.FactorSelections {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		fields[id] = raw
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reverses the flattening: top-level string keys outside
// the fixed schema are collected as factor selections. Artifacts that
// carry a registered_at timestamp instead of created_at are accepted.
func (a *ExportArtifact) UnmarshalJSON(data []byte) error {
	type plain ExportArtifact
	var aux plain
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = ExportArtifact(aux)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	a.FactorSelections = make(map[string]string)
	for key, raw := range fields {
		if artifactFields[key] {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		a.FactorSelections[key] = value
	}

	if a.CreatedAt.IsZero() {
		if raw, ok := fields["registered_at"]; ok {
			var ts time.Time
			if err := json.Unmarshal(raw, &ts); err == nil {
				a.CreatedAt = ts
			}
		}
	}
	return nil
}

// ParseExportArtifact decodes a previously exported artifact and checks
// its format version. Used by the import/resume path.
func ParseExportArtifact(data []byte) (*ExportArtifact, error) {
	var artifact ExportArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, goerr.Wrap(err, "failed to decode export artifact")
	}
	if artifact.ExportFormatVersion != ExportFormatVersion {
		return nil, goerr.Wrap(ErrFormatVersionMismatch, "cannot import artifact",
			goerr.V("expected", ExportFormatVersion),
			goerr.V("actual", artifact.ExportFormatVersion))
	}
	if artifact.ModelID == "" || artifact.ModelName == "" {
		return nil, goerr.New("invalid artifact: missing model_id or model_name")
	}
	return &artifact, nil
}

// ToSubmission converts an imported artifact back into a submission so
// it can be re-registered under the same identity.
func (a *ExportArtifact) ToSubmission() Submission {
	selections := make(map[types.FactorID]string, len(a.FactorSelections))
	for id, value := range a.FactorSelections {
		selections[types.FactorID(id)] = value
	}
	return Submission{
		ModelID:          a.ModelID,
		ModelName:        a.ModelName,
		BusinessUse:      a.BusinessUse,
		Domain:           a.Domain,
		ModelType:        a.ModelType,
		DeploymentMode:   a.DeploymentMode,
		OwnerTeam:        fromOptional(a.OwnerTeam),
		ModelStage:       fromOptional(a.ModelStage),
		DeploymentRegion: fromOptional(a.DeploymentRegion),
		CreatedBy:        fromOptional(a.CreatedBy),
		FactorSelections: selections,
	}
}

// ToNarrative extracts the narrative fields of an imported artifact
func (a *ExportArtifact) ToNarrative() Narrative {
	return Narrative{
		OwnerRiskNarrative:  a.OwnerRiskNarrative,
		MitigationsProposed: fromOptional(a.MitigationsProposed),
		OpenQuestions:       fromOptional(a.OpenQuestions),
	}
}

// FileStem normalizes a model name into the artifact's suggested file
// stem: lowercase, each whitespace character replaced with an
// underscore. The substitution is positional, so runs of whitespace
// produce runs of underscores.
func FileStem(modelName string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return unicode.ToLower(r)
	}, modelName)
}

// FileName returns the suggested download file name for the artifact
func (a *ExportArtifact) FileName() string {
	return FileStem(a.ModelName) + ".json"
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromOptional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
