package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"

	gasFetcher "github.com/malusev998/gas-fetcher"
	"github.com/malusev998/gas-fetcher/fetchers"
	"github.com/malusev998/gas-fetcher/services"
	"github.com/malusev998/gas-fetcher/storage"
)

const envPrefix = "GAS_FETCHER"

type (
	StorageConfig map[storage.Provider]interface{}

	Settings struct {
		Endpoints       []string
		ChainID         int64
		Interval        time.Duration
		EndpointTimeout time.Duration
		Unit            gasFetcher.Unit
		Precision       int32
		Storage         []storage.Provider
		StorageConfig   StorageConfig
		LogLevel        string
		LogFormat       string
		APIPort         int
	}
)

func newViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("endpoints", fetchers.DefaultEndpoints())
	v.SetDefault("chain_id", fetchers.BaseMainnetChainID)
	v.SetDefault("interval", services.DefaultInterval)
	v.SetDefault("endpoint_timeout", services.DefaultEndpointTimeout)
	v.SetDefault("unit", string(gasFetcher.Gwei))
	v.SetDefault("precision", services.DefaultPrecision)
	v.SetDefault("storage", []string{})
	v.SetDefault("migrate", false)
	v.SetDefault("databases.mysql.addr", "localhost:3306")
	v.SetDefault("databases.mysql.table", "gas_quotes")
	v.SetDefault("databases.mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("databases.mongodb.database", "gas_fetcher")
	v.SetDefault("databases.mongodb.collection", "quotes")
	v.SetDefault("databases.sqlite.path", "gas_fetcher.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("api.port", 8080)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	absolutePath, err := filepath.Abs(configFile)
	if err != nil {
		return nil, err
	}

	v.SetConfigFile(absolutePath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error while reading config file %s: %w", absolutePath, err)
		}
	}

	return v, nil
}

func getMysqlDSN(config map[string]string) string {
	mysqlDriverConfig := mysql.NewConfig()
	mysqlDriverConfig.User = config["user"]
	mysqlDriverConfig.Passwd = config["password"]
	mysqlDriverConfig.Addr = config["addr"]
	mysqlDriverConfig.Net = "tcp"
	mysqlDriverConfig.DBName = config["db"]

	return mysqlDriverConfig.FormatDSN()
}

func getSettings(ctx context.Context, v *viper.Viper) (*Settings, error) {
	unit, err := gasFetcher.ConvertToUnitFromString(v.GetString("unit"))
	if err != nil {
		return nil, err
	}

	storages, err := storage.ConvertToProvidersFromStringSlice(v.GetStringSlice("storage"))
	if err != nil {
		return nil, err
	}

	precision := v.GetInt32("precision")
	if precision < 0 {
		return nil, fmt.Errorf("precision must not be negative, got %d", precision)
	}

	mysqlConfig := map[string]string{
		"user":     v.GetString("databases.mysql.user"),
		"password": v.GetString("databases.mysql.password"),
		"addr":     v.GetString("databases.mysql.addr"),
		"db":       v.GetString("databases.mysql.db"),
	}

	// sinks outlive the command context so in-flight cycles can still be stored
	storageBaseConfig := storage.BaseConfig{
		Ctx:     context.WithoutCancel(ctx),
		Migrate: v.GetBool("migrate"),
	}

	return &Settings{
		Endpoints:       v.GetStringSlice("endpoints"),
		ChainID:         v.GetInt64("chain_id"),
		Interval:        v.GetDuration("interval"),
		EndpointTimeout: v.GetDuration("endpoint_timeout"),
		Unit:            unit,
		Precision:       precision,
		Storage:         storages,
		StorageConfig: StorageConfig{
			storage.MySQL: storage.MySQLConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: getMysqlDSN(mysqlConfig),
				TableName:        v.GetString("databases.mysql.table"),
			},
			storage.MongoDB: storage.MongoDBConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: v.GetString("databases.mongodb.uri"),
				Database:         v.GetString("databases.mongodb.database"),
				Collection:       v.GetString("databases.mongodb.collection"),
			},
			storage.SQLite: storage.SQLiteConfig{
				BaseConfig: storageBaseConfig,
				Path:       v.GetString("databases.sqlite.path"),
			},
		},
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		APIPort:   v.GetInt("api.port"),
	}, nil
}
