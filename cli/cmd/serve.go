package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/malusev998/gas-fetcher/api"
	"github.com/malusev998/gas-fetcher/services"
)

func serve(config *Config, flags *rootFlags) *cobra.Command {
	var port int

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Poll gas prices and expose them over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(config, cmd)

			settings, logger, err := flags.load(ctx, cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("port") {
				settings.APIPort = port
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			metrics, err := services.NewMetrics(registry)
			if err != nil {
				return err
			}

			a, err := createService(settings, logger, metrics)
			if err != nil {
				return err
			}
			defer a.close()

			server := api.NewServer(logger, settings.APIPort, a.service, registry)
			if err := server.Start(); err != nil {
				return err
			}

			a.service.Start(ctx)

			<-ctx.Done()

			logger.Info().Msg("shutting down")

			return server.Stop()
		},
	}

	serveCmd.Flags().IntVar(&port, "port", 8080, "Port for the HTTP API, overrides the config")

	return serveCmd
}
