package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/apexfs/firstline/pkg/cli/config"
	"github.com/apexfs/firstline/pkg/utils/logging"
)

func cmdValidate() *cli.Command {
	var policyCfg config.Policy

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a scoring policy file",
		Flags:   policyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "policy validation failed")
			}

			logger.Info("Policy validation passed",
				"path", policyCfg.Path(),
				"scoring_version", policy.Catalog.ScoringVersion,
			)
			for _, factor := range policy.Catalog.Factors {
				logger.Info("Factor validated",
					"id", factor.ID,
					"name", factor.Name,
					"values", len(factor.Values),
				)
			}
			for _, tier := range policy.TierTable.Tiers {
				logger.Info("Tier validated",
					"id", tier.ID,
					"name", tier.Name,
					"min", tier.MinScore,
					"max", tier.MaxScore,
				)
			}

			return nil
		},
	}
}
