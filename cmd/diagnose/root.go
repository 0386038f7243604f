package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"newsdesk/internal/app"
	"newsdesk/internal/domain/entity"
	"newsdesk/internal/health"
	"newsdesk/internal/infra/feed"
	aiUC "newsdesk/internal/usecase/ai"
)

// errChecksFailed makes the process exit 1 without printing usage.
var errChecksFailed = errors.New("checks failed")

type feedFetcher interface {
	Fetch(ctx context.Context, url string) (*feed.Result, error)
}

type modelTester interface {
	Test(ctx context.Context, models []string) (*aiUC.ModelTestResult, error)
}

type healthRunner interface {
	Run(ctx context.Context) health.Report
}

// env is what the subcommands need from the wired application.
type env struct {
	Fetcher     feedFetcher
	Tester      modelTester // nil when no AI provider is configured
	Runner      healthRunner
	Sources     []entity.SourceCollection
	Models      []string
	Parallelism int
	Close       func()
}

type envKey struct{}

// newEnv builds the environment. Tests replace it.
var newEnv = func(ctx context.Context, logger *slog.Logger) (*env, error) {
	a, err := app.New(ctx, logger, app.Options{Component: "diagnose"})
	if err != nil {
		return nil, err
	}
	e := &env{
		Fetcher:     a.Fetcher,
		Runner:      a.Probes,
		Sources:     a.Config.Sources,
		Models:      a.Config.AI.Models,
		Parallelism: a.Config.Health.RSSParallelism,
		Close: func() {
			if err := a.Close(context.Background()); err != nil {
				logger.Warn("cleanup failed", slog.Any("error", err))
			}
		},
	}
	if a.Tester != nil {
		e.Tester = a.Tester
	}
	return e, nil
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Run newsdesk health checks from the command line",
		Long: `diagnose runs the same checks the API serves, without starting a server.
It reads the same environment variables as cmd/api.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Context(), logger)
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if e := envFrom(cmd); e != nil && e.Close != nil {
				e.Close()
			}
		},
	}

	cmd.AddCommand(newFeedsCmd(), newModelsCmd(), newHealthCmd())
	return cmd
}

func envFrom(cmd *cobra.Command) *env {
	e, _ := cmd.Context().Value(envKey{}).(*env)
	return e
}
