package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/apexfs/firstline/pkg/cli/config"
	httpctrl "github.com/apexfs/firstline/pkg/controller/http"
	"github.com/apexfs/firstline/pkg/repository/memory"
	"github.com/apexfs/firstline/pkg/usecase"
	"github.com/apexfs/firstline/pkg/utils/logging"
	"github.com/apexfs/firstline/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("FIRSTLINE_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the registration API server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load policy")
			}
			logging.Default().Info("Policy loaded",
				"path", policyCfg.Path(),
				"scoring_version", policy.Catalog.ScoringVersion,
				"factors", len(policy.Catalog.Factors),
				"tiers", len(policy.TierTable.Tiers),
			)

			// Records live for the process lifetime only; policy changes
			// require a restart.
			repo := memory.New()
			defer safe.Close(ctx, repo)

			uc, err := usecase.New(repo, policy)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, policy),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return goerr.Wrap(err, "HTTP server failed")
			case <-ctx.Done():
				logging.Default().Info("Shutting down HTTP server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shut down HTTP server")
				}
			}

			return nil
		},
	}
}
