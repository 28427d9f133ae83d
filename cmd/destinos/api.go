package main

import (
	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call a running server",
	Long: `API commands call a running destinos server over HTTP.

These commands require a running server (destinos serve).
Use --server to point at another address.

Examples:
  destinos api health                      # liveness
  destinos api destinations list           # list destinations
  destinos api destinations get ARICA      # one record
  destinos api generate ARICA IQUIQUE      # generate on the server`,
}

var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "Destination commands",
}

var apiGenerationsCmd = &cobra.Command{
	Use:   "generations",
	Short: "Generation call history commands",
}

var apiPromptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Prompt commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "server URL",
	)

	api.NewRegistry(
		&endpoints.HealthEndpoint{},
		&endpoints.ReadyEndpoint{},
		&endpoints.StatusEndpoint{},
		&endpoints.MetricsEndpoint{},
		&endpoints.SchemaEndpoint{},
		&endpoints.GenerateEndpoint{},
		&endpoints.SyncEndpoint{},
	).AddCommands(apiCmd, getServerURL)
	api.NewRegistry(endpoints.DestinationCommands()...).AddCommands(destinationsCmd, getServerURL)
	api.NewRegistry(endpoints.GenerationCommands()...).AddCommands(apiGenerationsCmd, getServerURL)
	api.NewRegistry(endpoints.PromptCommands()...).AddCommands(apiPromptsCmd, getServerURL)

	apiCmd.AddCommand(destinationsCmd, apiGenerationsCmd, apiPromptsCmd)
	rootCmd.AddCommand(apiCmd)
}
