package config

import "github.com/apexfs/firstline/pkg/domain/types"

// FactorValue represents one allowed value of a risk factor and its points
type FactorValue struct {
	Value  string
	Points int
}

// Factor represents one risk factor with its ordered allowed values
type Factor struct {
	ID     types.FactorID
	Name   string
	Values []FactorValue
}

// Points returns the points for the given value. The second return value
// is false when the value is not in the factor's allowed set.
func (f *Factor) Points(value string) (int, bool) {
	for _, v := range f.Values {
		if v.Value == value {
			return v.Points, true
		}
	}
	return 0, false
}

// Catalog holds the full risk factor catalog in canonical factor order.
// Immutable after load.
type Catalog struct {
	ScoringVersion string
	Factors        []Factor
}

// Factor returns the factor definition for the given ID
func (c *Catalog) Factor(id types.FactorID) (*Factor, bool) {
	for i := range c.Factors {
		if c.Factors[i].ID == id {
			return &c.Factors[i], true
		}
	}
	return nil, false
}

// Tier represents one risk tier with an inclusive score range
type Tier struct {
	ID          types.TierID
	Name        string
	MinScore    int
	MaxScore    int
	Description string
}

// Contains reports whether the score falls within the tier's range,
// bounds inclusive.
func (t *Tier) Contains(score int) bool {
	return score >= t.MinScore && score <= t.MaxScore
}

// TierTable holds the ordered tier definitions, ascending by MinScore.
// The CLI config layer validates that the ranges partition the score line
// without gaps or overlaps before a table reaches this package.
type TierTable struct {
	Tiers []Tier
}

// Lowest returns the tier with the smallest range. Scores below every
// range saturate to it.
func (t *TierTable) Lowest() *Tier {
	if len(t.Tiers) == 0 {
		return nil
	}
	return &t.Tiers[0]
}

// Highest returns the tier with the largest range. Scores above every
// range saturate to it.
func (t *TierTable) Highest() *Tier {
	if len(t.Tiers) == 0 {
		return nil
	}
	return &t.Tiers[len(t.Tiers)-1]
}

// MetadataOptions holds the option lists for enum-constrained metadata
// fields. An empty list means the field accepts free text.
type MetadataOptions struct {
	Domains         []string
	ModelTypes      []string
	DeploymentModes []string
	ModelStages     []string
}

// Policy aggregates all static configuration loaded at process start.
// It is constructed once and passed by reference into the registrar,
// scoring engine and classifier.
type Policy struct {
	Catalog   Catalog
	TierTable TierTable
	Options   MetadataOptions
}
