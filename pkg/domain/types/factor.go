package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// FactorID represents a unique identifier for a risk factor
type FactorID string

// Validate checks if the FactorID is valid
func (f FactorID) Validate() error {
	if f == "" {
		return goerr.New("factor ID cannot be empty")
	}
	if !idPattern.MatchString(string(f)) {
		return goerr.New("factor ID must be lowercase alphanumeric with underscores", goerr.V("id", f))
	}
	return nil
}

// String returns the string representation of FactorID
func (f FactorID) String() string {
	return string(f)
}
