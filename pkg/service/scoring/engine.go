package scoring

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/domain/model/config"
	"github.com/apexfs/firstline/pkg/domain/types"
)

// Engine computes the inherent risk score of a record from its factor
// selections. Deterministic and pure: identical (record, catalog) pairs
// always yield identical output.
type Engine struct {
	catalog *config.Catalog
}

// NewEngine creates a scoring engine for the given catalog
func NewEngine(catalog *config.Catalog) (*Engine, error) {
	if catalog == nil || len(catalog.Factors) == 0 {
		return nil, goerr.New("scoring catalog must define at least one factor")
	}
	return &Engine{catalog: catalog}, nil
}

// Score iterates the catalog's factors in canonical order and sums the
// points of the record's selected values. A selection that is absent or
// outside the catalog contributes zero points and yields a breakdown
// entry with Valid=false; the registrar should have excluded this case
// already, so callers treat flagged entries as a recoverable warning.
//
// The returned total always equals the sum of the Points fields in the
// breakdown.
func (e *Engine) Score(selections map[types.FactorID]string) (int, []model.ScoreBreakdownEntry) {
	total := 0
	breakdown := make([]model.ScoreBreakdownEntry, 0, len(e.catalog.Factors))

	for _, factor := range e.catalog.Factors {
		entry := model.ScoreBreakdownEntry{FactorID: factor.ID}

		value, selected := selections[factor.ID]
		if selected {
			entry.Value = value
			if points, ok := factor.Points(value); ok {
				entry.Points = points
				entry.Valid = true
			}
		}

		total += entry.Points
		breakdown = append(breakdown, entry)
	}

	return total, breakdown
}
