package scoring

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/apexfs/firstline/pkg/domain/model/config"
)

// Classifier maps a total score to a risk tier using explicit [min,max]
// ranges. Scores outside every range saturate: below the lowest range
// they map to the lowest tier, above the highest range to the highest
// tier, so classification is total and predictable.
type Classifier struct {
	table *config.TierTable
}

// NewClassifier creates a tier classifier for the given threshold table
func NewClassifier(table *config.TierTable) (*Classifier, error) {
	if table == nil || len(table.Tiers) == 0 {
		return nil, goerr.New("tier table must define at least one tier")
	}
	return &Classifier{table: table}, nil
}

// Classify returns the tier containing the score. Bounds are inclusive,
// so a score exactly at a tier's minimum resolves to that tier, never
// the tier below. The returned tier's name and description come verbatim
// from the threshold table.
func (c *Classifier) Classify(totalScore int) config.Tier {
	for _, tier := range c.table.Tiers {
		if tier.Contains(totalScore) {
			return tier
		}
	}

	if totalScore < c.table.Lowest().MinScore {
		return *c.table.Lowest()
	}
	return *c.table.Highest()
}
