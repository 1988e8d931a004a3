package storage_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	gasFetcher "github.com/malusev998/gas-fetcher"
	"github.com/malusev998/gas-fetcher/storage"
)

func TestConvertToProviderFromString(t *testing.T) {
	assert := require.New(t)
	values := []struct {
		value    string
		expected interface{}
		err      error
	}{
		{"mysql", storage.MySQL, nil},
		{"MongoDB", storage.MongoDB, nil},
		{"mongo", storage.MongoDB, nil},
		{"SQLite", storage.SQLite, nil},
		{"", storage.Provider(""), errors.New("value  is not valid Provider")},
		{"postgres", storage.Provider(""), errors.New("value postgres is not valid Provider")},
	}

	for _, value := range values {
		provider, err := storage.ConvertToProviderFromString(value.value)
		assert.Equal(value.expected, provider)
		assert.Equal(value.err, err)
	}

	providers, err := storage.ConvertToProvidersFromStringSlice([]string{"mysql", "mongodb"})
	assert.Nil(err)
	assert.Equal([]storage.Provider{storage.MySQL, storage.MongoDB}, providers)

	providers, err = storage.ConvertToProvidersFromStringSlice([]string{"mysql", "redis"})
	assert.Nil(providers)
	assert.Error(err)
}

func TestNewStorage_InvalidConfig(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	st, err := storage.NewStorage(storage.MySQL, storage.MongoDBConfig{})
	asserts.Nil(st)
	asserts.True(errors.Is(err, storage.ErrStorageNotFound))

	st, err = storage.NewStorage(storage.MongoDB, storage.MySQLConfig{})
	asserts.Nil(st)
	asserts.True(errors.Is(err, storage.ErrStorageNotFound))

	st, err = storage.NewStorage(storage.SQLite, storage.MySQLConfig{})
	asserts.Nil(st)
	asserts.True(errors.Is(err, storage.ErrStorageNotFound))

	st, err = storage.NewStorage(storage.Provider("redis"), nil)
	asserts.Nil(st)
	asserts.True(errors.Is(err, storage.ErrStorageNotFound))
}

func TestStoreInMongo(t *testing.T) {
	uri := os.Getenv("GAS_FETCHER_MONGO_URI")
	if uri == "" {
		t.Skip("GAS_FETCHER_MONGO_URI is not set")
	}

	t.Parallel()
	asserts := require.New(t)
	ctx := context.Background()

	st, err := storage.NewMongoStorage(storage.MongoDBConfig{
		BaseConfig:       storage.BaseConfig{Ctx: ctx, Migrate: true},
		ConnectionString: uri,
		Database:         "gas_fetcher_store",
		Collection:       "quotes_" + faker.Word(),
	})
	asserts.Nil(err)

	defer st.Close()
	defer st.Drop()

	stored, err := st.Store([]gasFetcher.Quote{
		gasFetcher.ReadyQuote(big.NewInt(1_500_000_000), gasFetcher.Gwei, 3, faker.URL(), time.Now()),
	})

	asserts.Nil(err)
	asserts.Len(stored, 1)
	asserts.IsType(primitive.ObjectID{}, stored[0].ID)
	asserts.Equal("1.500", stored[0].Formatted)
	asserts.Equal("mongodb", st.GetStorageProviderName())
}
