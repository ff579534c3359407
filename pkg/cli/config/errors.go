package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for policy validation
var (
	ErrDuplicateFactorID = goerr.New("duplicate factor ID")
	ErrDuplicateValue    = goerr.New("duplicate value within factor")
	ErrDuplicateTierID   = goerr.New("duplicate tier ID")
	ErrEmptyFactorValues = goerr.New("factor requires at least one value")
	ErrNegativePoints    = goerr.New("points must be non-negative")
	ErrInvalidTierRange  = goerr.New("tier min_score must not exceed max_score")
	ErrTierRangeGap      = goerr.New("tier ranges must partition the score line without gaps or overlaps")
	ErrNoTiersDefined    = goerr.New("policy requires at least one tier")
	ErrNoFactorsDefined  = goerr.New("policy requires at least one factor")
	ErrMissingVersion    = goerr.New("scoring_version is required")
)

// Context keys for error values
const (
	PolicyPathKey = "policy_path"
	FactorIDKey   = "factor_id"
	TierIDKey     = "tier_id"
	ValueKey      = "value"
)
