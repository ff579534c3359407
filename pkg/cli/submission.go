package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/domain/types"
)

// submissionFile is the JSON shape of a raw submission read from disk.
// It matches the HTTP API's registration body.
type submissionFile struct {
	ModelID          string            `json:"model_id"`
	ModelName        string            `json:"model_name"`
	BusinessUse      string            `json:"business_use"`
	Domain           string            `json:"domain"`
	ModelType        string            `json:"model_type"`
	DeploymentMode   string            `json:"deployment_mode"`
	OwnerTeam        string            `json:"owner_team"`
	ModelStage       string            `json:"model_stage"`
	DeploymentRegion string            `json:"deployment_region"`
	CreatedBy        string            `json:"created_by"`
	FactorSelections map[string]string `json:"factor_selections"`
}

func readSubmission(path string) (model.Submission, error) {
	data, err := readInput(path)
	if err != nil {
		return model.Submission{}, err
	}

	var file submissionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return model.Submission{}, goerr.Wrap(err, "failed to decode submission", goerr.V("path", path))
	}

	selections := make(map[types.FactorID]string, len(file.FactorSelections))
	for id, value := range file.FactorSelections {
		selections[types.FactorID(id)] = value
	}

	return model.Submission{
		ModelID:          types.ModelID(file.ModelID),
		ModelName:        file.ModelName,
		BusinessUse:      file.BusinessUse,
		Domain:           file.Domain,
		ModelType:        file.ModelType,
		DeploymentMode:   file.DeploymentMode,
		OwnerTeam:        file.OwnerTeam,
		ModelStage:       file.ModelStage,
		DeploymentRegion: file.DeploymentRegion,
		CreatedBy:        file.CreatedBy,
		FactorSelections: selections,
	}, nil
}

// readInput reads from a file path, or stdin when path is "-"
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read stdin")
		}
		return data, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
	}
	return data, nil
}
