package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/server/endpoints"
	"github.com/crisrod14/destinosAI/internal/store"
)

var listFull bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List destinations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			entries, err := a.Store.List(ctx)
			if err != nil {
				return err
			}
			resp := endpoints.DestinationsResponse{Destinations: entries, Total: len(entries)}
			if listFull {
				recs, err := a.Orchestrator.Records(ctx)
				var corrupt *store.CorruptError
				switch {
				case errors.As(err, &corrupt):
					resp.Warnings = append(resp.Warnings, err.Error())
				case err != nil:
					return err
				}
				resp.Records = recs
			}
			return api.Output(resp)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <location>",
	Short: "Show one destination grouped by section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			rec, err := a.Orchestrator.Record(ctx, args[0])
			if err != nil {
				return err
			}
			return api.Output(endpoints.DestinationResponse{Record: rec})
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <location>",
	Short: "Delete a destination and push the remaining set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			res, err := a.Orchestrator.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			return api.Output(endpoints.MutationResponse(*res))
		})
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every destination and push the empty set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return errors.New("reset deletes every destination; pass --yes to confirm")
		}
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			res, err := a.Orchestrator.Reset(ctx)
			if err != nil {
				return err
			}
			return api.Output(endpoints.MutationResponse(*res))
		})
	},
}

func init() {
	listCmd.Flags().BoolVar(&listFull, "full", false, "include every record's fields")
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm deleting every destination")

	rootCmd.AddCommand(listCmd, showCmd, deleteCmd, resetCmd)
}
