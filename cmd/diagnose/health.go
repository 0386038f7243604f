package main

import (
	"github.com/spf13/cobra"

	"newsdesk/internal/health"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Run every probe once and print the report as JSON",
		Long:  `Run the full probe set once. Exits 1 when the aggregate status is unhealthy.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := envFrom(cmd).Runner.Run(cmd.Context())
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if report.Status == health.StatusUnhealthy {
				return errChecksFailed
			}
			return nil
		},
	}
}
