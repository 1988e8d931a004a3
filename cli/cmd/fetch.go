package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

func printQuote(out io.Writer, quote gasFetcher.Quote) {
	if indicator := quote.ErrorIndicator(); indicator != nil {
		_, _ = fmt.Fprintf(out, "Gas price: %s (%s)\n", quote.DisplayValue(), *indicator)
		return
	}

	_, _ = fmt.Fprintf(out, "Gas price: %s %s (%s)\n", quote.DisplayValue(), quote.Unit, quote.Endpoint)
}

func fetchStandalone(ctx context.Context, a *app, out io.Writer) {
	quotes, unsubscribe := a.service.Subscribe(1)
	defer unsubscribe()

	a.service.Start(ctx)

	for {
		select {
		case quote := <-quotes:
			printQuote(out, quote)
		case <-ctx.Done():
			return
		}
	}
}

func fetch(config *Config, flags *rootFlags) *cobra.Command {
	var standalone bool

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the current gas price",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(config, cmd)

			settings, logger, err := flags.load(ctx, cmd)
			if err != nil {
				return err
			}

			if after, _ := cmd.Flags().GetDuration("after"); after > 0 {
				settings.Interval = after
			}

			a, err := createService(settings, logger, nil)
			if err != nil {
				return err
			}
			defer a.close()

			if standalone {
				fetchStandalone(ctx, a, cmd.OutOrStdout())
				return nil
			}

			printQuote(cmd.OutOrStdout(), a.service.RunOneCycle(ctx))

			return nil
		},
	}

	fetchCmd.Flags().BoolVar(&standalone, "standalone", false, "Start up a long running fetching service")
	fetchCmd.Flags().Duration("after", 0, "Polling interval for the standalone process, overrides the config")

	return fetchCmd
}

func commandContext(config *Config, cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	if config != nil && config.Ctx != nil {
		return config.Ctx
	}

	return context.Background()
}
