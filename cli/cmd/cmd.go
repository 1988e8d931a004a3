package cmd

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/malusev998/gas-fetcher/logger"
)

const Version = "v1.0.0"

type (
	Config struct {
		Ctx context.Context
	}

	rootFlags struct {
		debug      bool
		configFile string
	}
)

// NewRootCommand builds the gas-fetcher command tree.
func NewRootCommand(config *Config) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:          "gas-fetcher",
		Short:        "Base network gas fee fetcher",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Debug flag")
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "./config.yml", "Path to config file")

	rootCmd.AddCommand(
		fetch(config, flags),
		serve(config, flags),
		migrate(config, flags),
	)

	return rootCmd
}

func Execute(config *Config) error {
	return NewRootCommand(config).ExecuteContext(config.Ctx)
}

// load reads the configuration and builds the logger every command shares.
func (f *rootFlags) load(ctx context.Context, cmd *cobra.Command) (*Settings, zerolog.Logger, error) {
	v, err := newViper(f.configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	settings, err := getSettings(ctx, v)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	if f.debug {
		settings.LogLevel = zerolog.LevelDebugValue
	}

	log := logger.New(cmd.ErrOrStderr(), settings.LogLevel, settings.LogFormat)

	return settings, log, nil
}
