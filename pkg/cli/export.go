package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/apexfs/firstline/pkg/cli/config"
	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/repository/memory"
	"github.com/apexfs/firstline/pkg/usecase"
	"github.com/apexfs/firstline/pkg/utils/logging"
)

func cmdExport() *cli.Command {
	var input string
	var narrative string
	var narrativeFile string
	var mitigations string
	var openQuestions string
	var outputDir string
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Submission JSON file ('-' for stdin)",
			Required:    true,
			Destination: &input,
		},
		&cli.StringFlag{
			Name:        "narrative",
			Usage:       "Owner risk narrative text (min 50 characters)",
			Destination: &narrative,
		},
		&cli.StringFlag{
			Name:        "narrative-file",
			Usage:       "File containing the owner risk narrative",
			Destination: &narrativeFile,
		},
		&cli.StringFlag{
			Name:        "mitigations",
			Usage:       "Proposed mitigations (optional)",
			Destination: &mitigations,
		},
		&cli.StringFlag{
			Name:        "open-questions",
			Usage:       "Open questions / unresolved items (optional)",
			Destination: &openQuestions,
		},
		&cli.StringFlag{
			Name:        "output-dir",
			Aliases:     []string{"o"},
			Usage:       "Directory for the exported artifact",
			Value:       ".",
			Destination: &outputDir,
		},
	}
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "export",
		Aliases: []string{"e"},
		Usage:   "Assess a submission, attach the narrative and write the export artifact",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load policy")
			}

			if narrativeFile != "" {
				data, err := readInput(narrativeFile)
				if err != nil {
					return err
				}
				narrative = string(data)
			}

			repo := memory.New()
			uc, err := usecase.New(repo, policy)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			sub, err := readSubmission(input)
			if err != nil {
				return err
			}

			record, err := uc.Registrar.Register(ctx, sub)
			if err != nil {
				var verr *model.ValidationError
				if errors.As(err, &verr) {
					printValidationError(verr)
				}
				return err
			}

			if _, err := uc.Narrative.Update(ctx, record.ID, model.Narrative{
				OwnerRiskNarrative:  narrative,
				MitigationsProposed: mitigations,
				OpenQuestions:       openQuestions,
			}); err != nil {
				return err
			}

			artifact, err := uc.Export.Assemble(ctx, record.ID)
			if err != nil {
				if errors.Is(err, usecase.ErrNotExportable) {
					return goerr.Wrap(err, "narrative must be at least 50 characters")
				}
				return err
			}

			data, err := json.MarshalIndent(artifact, "", "    ")
			if err != nil {
				return goerr.Wrap(err, "failed to marshal artifact")
			}

			path := filepath.Join(outputDir, artifact.FileName())
			if err := os.WriteFile(path, data, 0600); err != nil {
				return goerr.Wrap(err, "failed to write artifact", goerr.V("path", path))
			}

			logging.From(ctx).Info("Export artifact written",
				"path", path,
				"model_id", record.ID,
				"score", record.TotalScore,
				"tier", record.TierName,
			)
			return nil
		},
	}
}
