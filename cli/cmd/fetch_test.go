package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/malusev998/gas-fetcher/storage"
)

type httpMock struct {
	baseFee *big.Int
	tipCap  *big.Int
	delay   time.Duration
}

func (h httpMock) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	var req struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
	}

	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}

	time.Sleep(h.delay)

	payload := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}

	switch req.Method {
	case "eth_chainId":
		payload["result"] = hexutil.EncodeBig(big.NewInt(8453))
	case "eth_getBlockByNumber":
		payload["result"] = &types.Header{
			Number:     big.NewInt(1),
			Difficulty: big.NewInt(0),
			BaseFee:    h.baseFee,
		}
	case "eth_gasPrice":
		payload["result"] = hexutil.EncodeBig(h.baseFee)
	case "eth_maxPriorityFeePerGas":
		payload["result"] = hexutil.EncodeBig(h.tipCap)
	default:
		payload["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
	}

	writer.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(writer).Encode(payload)
}

func failingServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	return server
}

func healthyServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(httpMock{
		baseFee: big.NewInt(12_000_000_000),
		tipCap:  big.NewInt(1_000_000_000),
	})
	t.Cleanup(server.Close)

	return server
}

func endpointsConfig(t *testing.T, urls ...string) string {
	var sb strings.Builder

	sb.WriteString("endpoints:\n")
	for _, url := range urls {
		sb.WriteString(fmt.Sprintf("  - %s\n", url))
	}
	sb.WriteString("endpoint_timeout: 2s\nlog:\n  level: error\n")

	return writeConfig(t, sb.String())
}

func run(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer

	root := NewRootCommand(&Config{Ctx: ctx})
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)

	return out.String(), err
}

func TestFetchCommand(t *testing.T) {
	t.Run("FirstHealthyEndpointWins", func(t *testing.T) {
		healthy := healthyServer(t)
		path := endpointsConfig(t, failingServer(t).URL, healthy.URL)

		out, err := run(context.Background(), "fetch", "--config", path)

		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("Gas price: 25.000 gwei (%s)\n", healthy.URL), out)
	})

	t.Run("AllEndpointsFail", func(t *testing.T) {
		path := endpointsConfig(t, failingServer(t).URL, failingServer(t).URL)

		out, err := run(context.Background(), "fetch", "--config", path)

		require.NoError(t, err)
		require.Equal(t, "Gas price: Error (Failed to fetch gas price)\n", out)
	})

	t.Run("Standalone", func(t *testing.T) {
		path := endpointsConfig(t, healthyServer(t).URL)
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		out, err := run(ctx, "fetch", "--config", path, "--standalone", "--after", "50ms")

		require.NoError(t, err)
		require.GreaterOrEqual(t, strings.Count(out, "Gas price: 25.000 gwei"), 2)
	})

	t.Run("NoEndpoints", func(t *testing.T) {
		path := writeConfig(t, "endpoints: []\n")

		_, err := run(context.Background(), "fetch", "--config", path)

		require.Error(t, err)
	})
}

func TestFetchCommand_StoresQuote(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "quotes.db")
	healthy := healthyServer(t)
	path := writeConfig(t, fmt.Sprintf(`
endpoints: [%s]
storage: [sqlite]
migrate: true
databases:
  sqlite:
    path: %s
log:
  level: error
`, healthy.URL, dbPath))

	_, err := run(context.Background(), "fetch", "--config", path)
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	require.NoError(t, err)

	var records []storage.QuoteRecord
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	require.Equal(t, "25.000", records[0].DisplayValue)
	require.Equal(t, healthy.URL, records[0].Endpoint)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestFetchCommand_StandaloneStoresInFlightCycle(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "quotes.db")
	slow := httptest.NewServer(httpMock{
		baseFee: big.NewInt(12_000_000_000),
		tipCap:  big.NewInt(1_000_000_000),
		delay:   150 * time.Millisecond,
	})
	t.Cleanup(slow.Close)

	path := writeConfig(t, fmt.Sprintf(`
endpoints: [%s]
storage: [sqlite]
migrate: true
databases:
  sqlite:
    path: %s
log:
  level: error
`, slow.URL, dbPath))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := run(ctx, "fetch", "--config", path, "--standalone")
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	require.NoError(t, err)

	var records []storage.QuoteRecord
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	require.Equal(t, "25.000", records[0].DisplayValue)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "quotes.db")
	path := writeConfig(t, fmt.Sprintf("storage: [sqlite]\ndatabases:\n  sqlite:\n    path: %s\n", dbPath))

	_, err := run(context.Background(), "migrate", "--config", path)
	require.NoError(t, err)

	_, err = run(context.Background(), "migrate", "--config", path, "--drop")
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	require.NoError(t, err)
	require.True(t, db.Migrator().HasTable(&storage.QuoteRecord{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestMigrateCommand_NoStorage(t *testing.T) {
	_, err := run(context.Background(), "migrate", "--config", endpointsConfig(t, "http://localhost:8545"))

	require.Error(t, err)
}
