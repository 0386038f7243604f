package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"newsdesk/internal/resilience/fallback"
	aiUC "newsdesk/internal/usecase/ai"
)

func newModelsCmd() *cobra.Command {
	var (
		models []string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Find the first AI model that answers",
		Long: `Send the probe prompt to each model in priority order (AI_MODELS, or
--model flags in the order given) and report the first one that answers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := envFrom(cmd)
			if e.Tester == nil {
				return errors.New("no AI provider configured: set AI_PROVIDER and AI_API_KEY")
			}
			if len(models) == 0 {
				models = e.Models
			}

			res, err := e.Tester.Test(cmd.Context(), models)
			out := cmd.OutOrStdout()
			if err != nil {
				if errors.Is(err, aiUC.ErrNoModelsConfigured) {
					return err
				}
				var exhausted *fallback.ExhaustedError[string]
				errors.As(err, &exhausted)
				if asJSON {
					var attempts []fallback.Attempt[string]
					if exhausted != nil {
						attempts = exhausted.Attempts
					}
					if werr := writeJSON(out, map[string]any{"error": err.Error(), "models": models, "attempts": attempts}); werr != nil {
						return werr
					}
					return errChecksFailed
				}
				if exhausted != nil {
					writeAttempts(out, exhausted.Attempts)
				}
				fmt.Fprintf(out, "no working model among %d: %v\n", len(models), err)
				return errChecksFailed
			}

			if asJSON {
				return writeJSON(out, res)
			}
			writeAttempts(out, res.Attempts)
			_, err = fmt.Fprintf(out, "working model: %s (%s, attempt %d of %d)\n",
				res.Model, res.Latency.Round(time.Millisecond), len(res.Attempts), len(models))
			return err
		},
	}
	cmd.Flags().StringArrayVar(&models, "model", nil, "model to try; repeat to set the order")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeAttempts(w io.Writer, attempts []fallback.Attempt[string]) {
	for i, a := range attempts {
		line := fmt.Sprintf("%d. %-32s %-7s %s", i+1, a.Candidate, a.Outcome, a.Elapsed.Round(time.Millisecond))
		if a.Err != nil {
			line += "  " + a.Err.Error()
		}
		fmt.Fprintln(w, line)
	}
}
