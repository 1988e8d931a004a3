package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

type (
	Provider   string
	BaseConfig struct {
		Ctx     context.Context
		Migrate bool
	}
	MySQLConfig struct {
		BaseConfig
		ConnectionString string
		TableName        string
		IDGenerator      IDGenerator
	}
	MongoDBConfig struct {
		BaseConfig
		ConnectionString string
		Database         string
		Collection       string
	}
	SQLiteConfig struct {
		BaseConfig
		Path string
	}
)

const (
	MySQL   Provider = "mysql"
	MongoDB Provider = "mongodb"
	SQLite  Provider = "sqlite"
)

var (
	ErrStorageNotFound = errors.New("storage is not found")
)

func ConvertToProvidersFromStringSlice(strings []string) ([]Provider, error) {
	providers := make([]Provider, 0, len(strings))

	for _, str := range strings {
		provider, err := ConvertToProviderFromString(str)
		if err != nil {
			return nil, err
		}

		providers = append(providers, provider)
	}

	return providers, nil
}

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(str) {
	case "mysql":
		return MySQL, nil
	case "mongodb", "mongo":
		return MongoDB, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}

	return "", fmt.Errorf("value %s is not valid Provider", str)
}

func NewStorage(provider Provider, config interface{}) (gasFetcher.Storage, error) {
	switch provider {
	case MySQL:
		c, ok := config.(MySQLConfig)
		if !ok {
			return nil, fmt.Errorf("%w: expected MySQLConfig for %s", ErrStorageNotFound, provider)
		}

		return NewMySQLStorage(c)
	case MongoDB:
		c, ok := config.(MongoDBConfig)
		if !ok {
			return nil, fmt.Errorf("%w: expected MongoDBConfig for %s", ErrStorageNotFound, provider)
		}

		return NewMongoStorage(c)
	case SQLite:
		c, ok := config.(SQLiteConfig)
		if !ok {
			return nil, fmt.Errorf("%w: expected SQLiteConfig for %s", ErrStorageNotFound, provider)
		}

		return NewSQLiteStorage(c)
	}

	return nil, ErrStorageNotFound
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}

	return ctx
}

func rawValue(quote gasFetcher.Quote) string {
	if quote.Raw == nil {
		return ""
	}

	return quote.Raw.String()
}
