package config

import (
	_ "embed"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	domainConfig "github.com/apexfs/firstline/pkg/domain/model/config"
	"github.com/apexfs/firstline/pkg/domain/types"
)

//go:embed policy.toml
var defaultPolicy []byte

// Policy holds CLI flags for scoring policy configuration
type Policy struct {
	path string
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to the scoring policy TOML file (default: built-in policy)",
			Sources:     cli.EnvVars("FIRSTLINE_POLICY"),
			Destination: &p.path,
		},
	}
}

// Path returns the configured policy file path, empty for the built-in policy
func (p *Policy) Path() string {
	return p.path
}

// Configure loads, validates and converts the policy. Without a --policy
// flag the embedded default policy is used.
func (p *Policy) Configure() (*domainConfig.Policy, error) {
	if p.path == "" {
		return LoadPolicyBytes(defaultPolicy)
	}
	return LoadPolicyFile(p.path)
}

// PolicyFile is the TOML shape of the scoring policy
type PolicyFile struct {
	ScoringVersion string          `toml:"scoring_version"`
	Factors        []Factor        `toml:"factor"`
	Tiers          []Tier          `toml:"tier"`
	Options        MetadataOptions `toml:"options"`
}

// Factor represents one risk factor configuration
type Factor struct {
	ID     string        `toml:"id"`
	Name   string        `toml:"name"`
	Values []FactorValue `toml:"value"`
}

// FactorValue represents one allowed value of a factor
type FactorValue struct {
	Value  string `toml:"value"`
	Points int    `toml:"points"`
}

// Tier represents one risk tier configuration
type Tier struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	MinScore    int    `toml:"min_score"`
	MaxScore    int    `toml:"max_score"`
	Description string `toml:"description"`
}

// MetadataOptions represents the option lists for enum metadata fields
type MetadataOptions struct {
	Domains         []string `toml:"domains"`
	ModelTypes      []string `toml:"model_types"`
	DeploymentModes []string `toml:"deployment_modes"`
	ModelStages     []string `toml:"model_stages"`
}

// Validate checks if the Factor is valid
func (f *Factor) Validate() error {
	id := types.FactorID(f.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid factor ID")
	}
	if f.Name == "" {
		return goerr.New("factor name is required", goerr.V(FactorIDKey, f.ID))
	}
	if len(f.Values) == 0 {
		return goerr.Wrap(ErrEmptyFactorValues, "factor has no values", goerr.V(FactorIDKey, f.ID))
	}

	seen := make(map[string]bool)
	for _, v := range f.Values {
		if v.Value == "" {
			return goerr.New("factor value cannot be empty", goerr.V(FactorIDKey, f.ID))
		}
		if seen[v.Value] {
			return goerr.Wrap(ErrDuplicateValue, "factor value duplicated",
				goerr.V(FactorIDKey, f.ID), goerr.V(ValueKey, v.Value))
		}
		seen[v.Value] = true
		if v.Points < 0 {
			return goerr.Wrap(ErrNegativePoints, "factor value has negative points",
				goerr.V(FactorIDKey, f.ID), goerr.V(ValueKey, v.Value))
		}
	}
	return nil
}

// Validate checks if the Tier is valid
func (t *Tier) Validate() error {
	id := types.TierID(t.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tier ID")
	}
	if t.Name == "" {
		return goerr.New("tier name is required", goerr.V(TierIDKey, t.ID))
	}
	if t.Description == "" {
		return goerr.New("tier description is required", goerr.V(TierIDKey, t.ID))
	}
	if t.MinScore > t.MaxScore {
		return goerr.Wrap(ErrInvalidTierRange, "tier range is inverted",
			goerr.V(TierIDKey, t.ID))
	}
	return nil
}

// Validate checks if the PolicyFile is valid. Tier ranges must form a
// contiguous, non-overlapping partition in ascending order so the
// classifier's totality holds by construction.
func (p *PolicyFile) Validate() error {
	if p.ScoringVersion == "" {
		return ErrMissingVersion
	}
	if len(p.Factors) == 0 {
		return ErrNoFactorsDefined
	}
	if len(p.Tiers) == 0 {
		return ErrNoTiersDefined
	}

	factorIDs := make(map[string]bool)
	for _, f := range p.Factors {
		if err := f.Validate(); err != nil {
			return goerr.Wrap(err, "invalid factor")
		}
		if factorIDs[f.ID] {
			return goerr.Wrap(ErrDuplicateFactorID, "factor ID duplicated", goerr.V(FactorIDKey, f.ID))
		}
		factorIDs[f.ID] = true
	}

	tierIDs := make(map[string]bool)
	for i, t := range p.Tiers {
		if err := t.Validate(); err != nil {
			return goerr.Wrap(err, "invalid tier")
		}
		if tierIDs[t.ID] {
			return goerr.Wrap(ErrDuplicateTierID, "tier ID duplicated", goerr.V(TierIDKey, t.ID))
		}
		tierIDs[t.ID] = true

		if i > 0 && t.MinScore != p.Tiers[i-1].MaxScore+1 {
			return goerr.Wrap(ErrTierRangeGap, "tier range does not continue the previous one",
				goerr.V(TierIDKey, t.ID),
				goerr.V("previous_max", p.Tiers[i-1].MaxScore),
				goerr.V("min", t.MinScore))
		}
	}

	return nil
}

// LoadPolicyFile loads the policy from a TOML file
func LoadPolicyFile(path string) (*domainConfig.Policy, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V(PolicyPathKey, path))
	}

	policy, err := LoadPolicyBytes(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid policy file", goerr.V(PolicyPathKey, path))
	}
	return policy, nil
}

// LoadPolicyBytes parses and validates TOML policy data
func LoadPolicyBytes(data []byte) (*domainConfig.Policy, error) {
	var file PolicyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML policy")
	}

	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "policy validation failed")
	}

	return file.ToDomain(), nil
}

// ToDomain converts the TOML shape into the domain policy objects
func (p *PolicyFile) ToDomain() *domainConfig.Policy {
	factors := make([]domainConfig.Factor, len(p.Factors))
	for i, f := range p.Factors {
		values := make([]domainConfig.FactorValue, len(f.Values))
		for j, v := range f.Values {
			values[j] = domainConfig.FactorValue{
				Value:  v.Value,
				Points: v.Points,
			}
		}
		factors[i] = domainConfig.Factor{
			ID:     types.FactorID(f.ID),
			Name:   f.Name,
			Values: values,
		}
	}

	tiers := make([]domainConfig.Tier, len(p.Tiers))
	for i, t := range p.Tiers {
		tiers[i] = domainConfig.Tier{
			ID:          types.TierID(t.ID),
			Name:        t.Name,
			MinScore:    t.MinScore,
			MaxScore:    t.MaxScore,
			Description: t.Description,
		}
	}

	return &domainConfig.Policy{
		Catalog: domainConfig.Catalog{
			ScoringVersion: p.ScoringVersion,
			Factors:        factors,
		},
		TierTable: domainConfig.TierTable{
			Tiers: tiers,
		},
		Options: domainConfig.MetadataOptions{
			Domains:         p.Options.Domains,
			ModelTypes:      p.Options.ModelTypes,
			DeploymentModes: p.Options.DeploymentModes,
			ModelStages:     p.Options.ModelStages,
		},
	}
}
