package gasfetcher_test

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

func TestQuote_DisplayValue(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	now := time.Now()

	pending := gasFetcher.PendingQuote(gasFetcher.Gwei)
	asserts.Equal(gasFetcher.LoadingValue, pending.DisplayValue())
	asserts.Nil(pending.ErrorIndicator())

	ready := gasFetcher.ReadyQuote(big.NewInt(25_000_000_000), gasFetcher.Gwei, 3, "https://a", now)
	asserts.Equal(gasFetcher.StatusReady, ready.Status)
	asserts.Equal("25.000", ready.DisplayValue())
	asserts.Nil(ready.ErrorIndicator())

	failed := gasFetcher.FailedQuote(gasFetcher.Gwei, now)
	asserts.Equal(gasFetcher.ErrorValue, failed.DisplayValue())
	asserts.NotNil(failed.ErrorIndicator())
	asserts.Equal(gasFetcher.FailureMessage, *failed.ErrorIndicator())
}

func TestReadyQuote_CopiesRaw(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	raw := big.NewInt(10)
	quote := gasFetcher.ReadyQuote(raw, gasFetcher.Wei, 0, "", time.Now())
	raw.SetInt64(20)

	asserts.Equal(int64(10), quote.Raw.Int64())
}

func TestQuote_Clone(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	quote := gasFetcher.ReadyQuote(big.NewInt(10), gasFetcher.Wei, 0, "", time.Now())
	clone := quote.Clone()
	clone.Raw.SetInt64(20)

	asserts.Equal(int64(10), quote.Raw.Int64())
	asserts.Nil(gasFetcher.FailedQuote(gasFetcher.Wei, time.Now()).Clone().Raw)
}

func TestStatus_JSON(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	data, err := json.Marshal(gasFetcher.StatusFailed)
	asserts.Nil(err)
	asserts.Equal(`"failed"`, string(data))

	var status gasFetcher.Status
	asserts.Nil(json.Unmarshal([]byte(`"READY"`), &status))
	asserts.Equal(gasFetcher.StatusReady, status)
	asserts.Error(json.Unmarshal([]byte(`"unknown"`), &status))
}
