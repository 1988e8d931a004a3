package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malusev998/gas-fetcher/storage"
)

func migrate(config *Config, flags *rootFlags) *cobra.Command {
	var drop bool

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and indexes of the configured storages",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(config, cmd)

			settings, logger, err := flags.load(ctx, cmd)
			if err != nil {
				return err
			}

			if len(settings.Storage) == 0 {
				return fmt.Errorf("no storage configured")
			}

			for provider, c := range settings.StorageConfig {
				switch c := c.(type) {
				case storage.MySQLConfig:
					c.Migrate = false
					settings.StorageConfig[provider] = c
				case storage.MongoDBConfig:
					c.Migrate = false
					settings.StorageConfig[provider] = c
				case storage.SQLiteConfig:
					c.Migrate = false
					settings.StorageConfig[provider] = c
				}
			}

			storages, err := createStorages(settings)
			if err != nil {
				return err
			}
			defer closeStorages(storages)

			for _, st := range storages {
				if drop {
					if err := st.Drop(); err != nil {
						return fmt.Errorf("error while dropping %s storage: %w", st.GetStorageProviderName(), err)
					}
				}

				if err := st.Migrate(); err != nil {
					return fmt.Errorf("error while migrating %s storage: %w", st.GetStorageProviderName(), err)
				}

				logger.Info().Str("storage", st.GetStorageProviderName()).Msg("migrated")
			}

			return nil
		},
	}

	migrateCmd.Flags().BoolVar(&drop, "drop", false, "Drop existing tables and collections first")

	return migrateCmd
}
