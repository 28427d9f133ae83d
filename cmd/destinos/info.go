package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/llmcall"
	"github.com/crisrod14/destinosAI/internal/server/endpoints"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the destination fields by section",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.Output(endpoints.NewSchemaResponse())
	},
}

var (
	genLocation  string
	genPromptKey string
	genProvider  string
	genModel     string
	genSuccess   bool
	genFailed    bool
	genLimit     int
	genOffset    int
)

var generationsCmd = &cobra.Command{
	Use:   "generations",
	Short: "List recorded generation calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := endpoints.GenerationsQuery(genLocation, genPromptKey, genProvider, genModel, genSuccess, genFailed, genLimit, genOffset)
		filter, err := endpoints.ParseGenerationsQuery(q)
		if err != nil {
			return err
		}
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			calls, err := a.LLMCallStore.List(ctx, filter)
			if err != nil {
				return err
			}
			if calls == nil {
				calls = []llmcall.Call{}
			}
			return api.Output(endpoints.GenerationsResponse{Calls: calls, Total: len(calls)})
		})
	},
}

var promptsCmd = &cobra.Command{
	Use:   "prompts [key]",
	Short: "List prompts, or print the effective text of one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			if len(args) == 0 {
				return api.Output(endpoints.PromptsListResponse{Prompts: a.Prompts.List()})
			}
			if _, ok := a.Prompts.GetEmbedded(args[0]); !ok {
				return fmt.Errorf("prompt not found: %s", args[0])
			}
			resolved, err := a.Prompts.Resolve(args[0])
			if err != nil {
				return err
			}
			if api.GetOutputFormat() == api.OutputFormatText {
				fmt.Println(resolved.Text)
				return nil
			}
			return api.Output(resolved)
		})
	},
}

func init() {
	f := generationsCmd.Flags()
	f.StringVar(&genLocation, "location", "", "filter by destination")
	f.StringVar(&genPromptKey, "prompt-key", "", "filter by prompt key")
	f.StringVar(&genProvider, "provider", "", "filter by provider")
	f.StringVar(&genModel, "model", "", "filter by model")
	f.BoolVar(&genSuccess, "success", false, "only successful calls")
	f.BoolVar(&genFailed, "failed", false, "only failed calls")
	f.IntVar(&genLimit, "limit", 50, "max results")
	f.IntVar(&genOffset, "offset", 0, "result offset")

	rootCmd.AddCommand(schemaCmd, generationsCmd, promptsCmd)
}
