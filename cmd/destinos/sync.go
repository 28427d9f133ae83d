package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/server/endpoints"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push every destination to the sheet",
	Long: `Push the full set of destinations to the Google Sheets mirror.

A failed push is reported as local_only; the local store is unchanged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			res, err := a.Orchestrator.Sync(ctx)
			if err != nil {
				return err
			}
			return api.Output(endpoints.MutationResponse(*res))
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync state, record count and provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			resp, err := endpoints.BuildStatus(ctx)
			if err != nil {
				return err
			}
			resp.Server = "local"
			return api.Output(resp)
		})
	},
}

func init() {
	rootCmd.AddCommand(syncCmd, statusCmd)
}
