package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ModelID is the opaque identifier of a registered model. It is assigned
// once at first registration and preserved across re-submissions.
type ModelID string

// NewModelID generates a new globally unique model ID
func NewModelID() ModelID {
	return ModelID(uuid.NewString())
}

// Validate checks if the ModelID is valid
func (m ModelID) Validate() error {
	if m == "" {
		return goerr.New("model ID cannot be empty")
	}
	return nil
}

// String returns the string representation of ModelID
func (m ModelID) String() string {
	return string(m)
}
