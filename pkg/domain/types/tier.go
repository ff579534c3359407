package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// TierID represents a unique identifier for a risk tier
type TierID string

// Validate checks if the TierID is valid
func (t TierID) Validate() error {
	if t == "" {
		return goerr.New("tier ID cannot be empty")
	}
	if !idPattern.MatchString(string(t)) {
		return goerr.New("tier ID must be lowercase alphanumeric with underscores", goerr.V("id", t))
	}
	return nil
}

// String returns the string representation of TierID
func (t TierID) String() string {
	return string(t)
}
