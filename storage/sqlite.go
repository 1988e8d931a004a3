package storage

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

// QuoteRecord is one stored quote in the SQLite sink.
type QuoteRecord struct {
	gorm.Model
	Endpoint     string    `gorm:"index"`
	Status       string    `gorm:"index;not null"`
	RawValue     string
	DisplayValue string    `gorm:"not null"`
	Unit         string    `gorm:"not null"`
	ErrorMsg     string    `gorm:"type:text"`
	FetchedAt    time.Time `gorm:"index"`
}

func (QuoteRecord) TableName() string {
	return "gas_quotes"
}

type sqliteStorage struct {
	ctx context.Context
	db  *gorm.DB
}

func NewSQLiteStorage(config SQLiteConfig) (gasFetcher.Storage, error) {
	if config.Path == "" {
		config.Path = "gas_fetcher.db"
	}

	db, err := gorm.Open(sqlite.Open(config.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// :memory: databases live on a single connection
	sqlDB.SetMaxOpenConns(1)

	st := sqliteStorage{
		ctx: ctxOrBackground(config.Ctx),
		db:  db,
	}

	if config.Migrate {
		if err := st.Migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	return st, nil
}

func (s sqliteStorage) Store(quotes []gasFetcher.Quote) ([]gasFetcher.QuoteWithID, error) {
	if len(quotes) == 0 {
		return []gasFetcher.QuoteWithID{}, nil
	}

	records := make([]QuoteRecord, 0, len(quotes))
	copies := make([]gasFetcher.Quote, 0, len(quotes))

	for _, quote := range quotes {
		if quote.FetchedAt.IsZero() {
			quote.FetchedAt = time.Now()
		}

		copies = append(copies, quote)
		records = append(records, QuoteRecord{
			Endpoint:     quote.Endpoint,
			Status:       quote.Status.String(),
			RawValue:     rawValue(quote),
			DisplayValue: quote.DisplayValue(),
			Unit:         string(quote.Unit),
			ErrorMsg:     quote.Error,
			FetchedAt:    quote.FetchedAt,
		})
	}

	if err := s.db.WithContext(s.ctx).Create(&records).Error; err != nil {
		return nil, err
	}

	stored := make([]gasFetcher.QuoteWithID, 0, len(records))
	for i, record := range records {
		stored = append(stored, gasFetcher.QuoteWithID{Quote: copies[i], ID: record.ID})
	}

	return stored, nil
}

func (s sqliteStorage) GetStorageProviderName() string {
	return string(SQLite)
}

func (s sqliteStorage) Migrate() error {
	return s.db.WithContext(s.ctx).AutoMigrate(&QuoteRecord{})
}

func (s sqliteStorage) Drop() error {
	return s.db.WithContext(s.ctx).Migrator().DropTable(&QuoteRecord{})
}

func (s sqliteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
