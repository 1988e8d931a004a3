package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

type mongoStorage struct {
	ctx        context.Context
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoStorage(config MongoDBConfig) (gasFetcher.Storage, error) {
	ctx := ctxOrBackground(config.Ctx)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.ConnectionString))
	if err != nil {
		return nil, err
	}

	if config.Database == "" {
		config.Database = "gas_fetcher"
	}

	if config.Collection == "" {
		config.Collection = "quotes"
	}

	st := mongoStorage{
		ctx:        ctx,
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
	}

	if config.Migrate {
		if err := st.Migrate(); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}

	return st, nil
}

func (m mongoStorage) Store(quotes []gasFetcher.Quote) ([]gasFetcher.QuoteWithID, error) {
	if len(quotes) == 0 {
		return []gasFetcher.QuoteWithID{}, nil
	}

	documents := make([]interface{}, 0, len(quotes))
	copies := make([]gasFetcher.Quote, 0, len(quotes))

	for _, quote := range quotes {
		if quote.FetchedAt.IsZero() {
			quote.FetchedAt = time.Now()
		}

		copies = append(copies, quote)
		documents = append(documents, bson.M{
			"endpoint":     quote.Endpoint,
			"status":       quote.Status.String(),
			"rawValue":     rawValue(quote),
			"displayValue": quote.DisplayValue(),
			"unit":         string(quote.Unit),
			"error":        quote.Error,
			"createdAt":    quote.FetchedAt,
		})
	}

	result, err := m.collection.InsertMany(m.ctx, documents)
	if err != nil {
		return nil, err
	}

	stored := make([]gasFetcher.QuoteWithID, 0, len(quotes))

	for i, id := range result.InsertedIDs {
		stored = append(stored, gasFetcher.QuoteWithID{Quote: copies[i], ID: id})
	}

	return stored, nil
}

func (m mongoStorage) GetStorageProviderName() string {
	return string(MongoDB)
}

func (m mongoStorage) Migrate() error {
	_, err := m.collection.Indexes().CreateOne(m.ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})

	return err
}

func (m mongoStorage) Drop() error {
	return m.collection.Drop(m.ctx)
}

func (m mongoStorage) Close() error {
	return m.client.Disconnect(m.ctx)
}
