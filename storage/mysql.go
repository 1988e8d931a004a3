package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

const MySQLTimeFormat = "2006-01-02 15:04:05"

var ErrNotEnoughBytesInGenerator = errors.New("id generator must produce at least 16 bytes")

type (
	IDGenerator interface {
		Generate() []byte
	}

	uuidGenerator struct{}

	mysqlStorage struct {
		ctx         context.Context
		db          *sql.DB
		tableName   string
		idGenerator IDGenerator
	}
)

func (uuidGenerator) Generate() []byte {
	id := uuid.New()

	return id[:]
}

func NewMySQLStorage(config MySQLConfig) (gasFetcher.Storage, error) {
	db, err := sql.Open("mysql", config.ConnectionString)
	if err != nil {
		return nil, err
	}

	st, err := NewSQLStorage(config.Ctx, db, config.IDGenerator, config.TableName, config.Migrate)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return st, nil
}

// NewSQLStorage wraps an open database. It runs Migrate when migrate is set.
func NewSQLStorage(ctx context.Context, db *sql.DB, idGenerator IDGenerator, tableName string, migrate bool) (gasFetcher.Storage, error) {
	if idGenerator == nil {
		idGenerator = uuidGenerator{}
	}

	if tableName == "" {
		tableName = "gas_quotes"
	}

	st := mysqlStorage{
		ctx:         ctxOrBackground(ctx),
		db:          db,
		tableName:   tableName,
		idGenerator: idGenerator,
	}

	if migrate {
		if err := st.Migrate(); err != nil {
			return nil, err
		}
	}

	return st, nil
}

func (m mysqlStorage) generateID() (uuid.UUID, error) {
	bytes := m.idGenerator.Generate()

	if len(bytes) < 16 {
		return uuid.Nil, ErrNotEnoughBytesInGenerator
	}

	return uuid.FromBytes(bytes[:16])
}

func (m mysqlStorage) Store(quotes []gasFetcher.Quote) ([]gasFetcher.QuoteWithID, error) {
	stored := make([]gasFetcher.QuoteWithID, 0, len(quotes))
	ids := make([]uuid.UUID, 0, len(quotes))

	for range quotes {
		id, err := m.generateID()
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	tx, err := m.db.BeginTx(m.ctx, nil)
	if err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(m.ctx, fmt.Sprintf(
		"INSERT INTO %s(id, endpoint, status, raw_value, display_value, unit, error, created_at) VALUES (?,?,?,?,?,?,?,?);",
		m.tableName,
	))
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	defer stmt.Close()

	for i, quote := range quotes {
		if quote.FetchedAt.IsZero() {
			quote.FetchedAt = time.Now()
		}

		_, err := stmt.ExecContext(
			m.ctx,
			ids[i].String(),
			quote.Endpoint,
			quote.Status.String(),
			rawValue(quote),
			quote.DisplayValue(),
			string(quote.Unit),
			quote.Error,
			quote.FetchedAt.UTC().Format(MySQLTimeFormat),
		)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		stored = append(stored, gasFetcher.QuoteWithID{Quote: quote, ID: ids[i]})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return stored, nil
}

func (m mysqlStorage) GetStorageProviderName() string {
	return string(MySQL)
}

func (m mysqlStorage) Migrate() error {
	_, err := m.db.ExecContext(m.ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s(
	id CHAR(36) PRIMARY KEY,
	endpoint VARCHAR(255) NOT NULL,
	status VARCHAR(16) NOT NULL,
	raw_value VARCHAR(80) NOT NULL,
	display_value VARCHAR(80) NOT NULL,
	unit VARCHAR(16) NOT NULL,
	error VARCHAR(255) NOT NULL,
	created_at DATETIME NOT NULL
);`, m.tableName))

	return err
}

func (m mysqlStorage) Drop() error {
	_, err := m.db.ExecContext(m.ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", m.tableName))

	return err
}

func (m mysqlStorage) Close() error {
	return m.db.Close()
}
