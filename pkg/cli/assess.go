package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/apexfs/firstline/pkg/cli/config"
	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/repository/memory"
	"github.com/apexfs/firstline/pkg/usecase"
)

func cmdAssess() *cli.Command {
	var input string
	var fromArtifact string
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Submission JSON file ('-' for stdin)",
			Destination: &input,
		},
		&cli.StringFlag{
			Name:        "from",
			Usage:       "Resume from a previously exported artifact JSON file",
			Destination: &fromArtifact,
		},
	}
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "assess",
		Aliases: []string{"a"},
		Usage:   "Register a model submission and print its inherent risk assessment",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load policy")
			}

			repo := memory.New()
			uc, err := usecase.New(repo, policy)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			var record *model.ModelRecord
			switch {
			case fromArtifact != "":
				data, err := readInput(fromArtifact)
				if err != nil {
					return err
				}
				record, err = uc.Registrar.ImportArtifact(ctx, data)
				if err != nil {
					return err
				}
			case input != "":
				sub, err := readSubmission(input)
				if err != nil {
					return err
				}
				record, err = uc.Registrar.Register(ctx, sub)
				if err != nil {
					var verr *model.ValidationError
					if errors.As(err, &verr) {
						printValidationError(verr)
					}
					return err
				}
			default:
				return goerr.New("either --input or --from is required")
			}

			printAssessment(record)
			return nil
		},
	}
}

func printValidationError(verr *model.ValidationError) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintln(os.Stderr, "Submission rejected:")
	for _, issue := range verr.Issues {
		fmt.Fprintf(os.Stderr, "  - %s: %s\n", issue.Field, issue.Reason)
	}
}

func printAssessment(record *model.ModelRecord) {
	bold := color.New(color.Bold)
	tierColor := color.New(color.FgGreen, color.Bold)
	switch record.ProposedTier {
	case "high":
		tierColor = color.New(color.FgYellow, color.Bold)
	case "critical":
		tierColor = color.New(color.FgRed, color.Bold)
	case "medium":
		tierColor = color.New(color.FgCyan, color.Bold)
	}

	bold.Printf("%s\n", record.ModelName)
	fmt.Printf("  Model ID:        %s\n", record.ID)
	fmt.Printf("  Registered At:   %s\n", record.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("  Scoring Version: %s\n", record.ScoringVersion)
	fmt.Println()
	fmt.Printf("  Inherent Risk Score: %d\n", record.TotalScore)
	fmt.Printf("  Proposed Tier:       ")
	tierColor.Printf("%s", record.TierName)
	fmt.Printf(" - %s\n", record.TierDescription)
	fmt.Println()
	fmt.Println("  Score Breakdown:")
	for _, entry := range record.Breakdown {
		marker := ""
		if !entry.Valid {
			marker = "  (invalid selection, scored as 0)"
		}
		fmt.Printf("    %-24s %-18s %2d%s\n", entry.FactorID, entry.Value, entry.Points, marker)
	}
}
