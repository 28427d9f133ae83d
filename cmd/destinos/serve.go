package main

import (
	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the destinos HTTP server",
	Long: `Start the destinos HTTP server.

The working set is bootstrapped once at startup and shared by every
request. Config file changes reload the provider and generation
settings without a restart.

The server provides:
  - /health           liveness
  - /ready            store reachable
  - /api/...          destinations, generate, sync, schema, prompts
  - /metrics          Prometheus metrics

Examples:
  destinos serve                    # listen on server.host:server.port
  destinos serve --port 3000        # custom port
  destinos serve --host 0.0.0.0     # bind to all interfaces`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := a.Config.Get()
		host, port := cfg.Server.Host, cfg.Server.Port
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		a.Config.WatchConfig()

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			Services:      a.Services,
			ConfigManager: a.Config,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Blocks until ctx is cancelled
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "port to listen on")
	rootCmd.AddCommand(serveCmd)
}
