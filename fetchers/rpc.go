package fetchers

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

// RPCFetcher reads fee data from a single JSON-RPC endpoint. The client is
// dialed on first use and kept for later calls.
type RPCFetcher struct {
	url     string
	chainID int64
	dial    Dialer
	logger  zerolog.Logger

	mu       sync.Mutex
	client   RPCClient
	verified bool
}

func NewRPCFetcher(config RPCConfig, url string) *RPCFetcher {
	dial := config.Dial
	if dial == nil {
		dial = DialEthClient
	}

	return &RPCFetcher{
		url:     url,
		chainID: config.ChainID,
		dial:    dial,
		logger:  config.Logger.With().Str("component", "rpc_fetcher").Str("url", url).Logger(),
	}
}

func (f *RPCFetcher) Endpoint() string {
	return f.url
}

func (f *RPCFetcher) connect(ctx context.Context) (RPCClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil {
		client, err := f.dial(ctx, f.url)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", f.url, err)
		}

		f.client = client
		f.logger.Debug().Msg("connected to RPC endpoint")
	}

	if f.chainID == 0 || f.verified {
		return f.client, nil
	}

	chainID, err := f.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain ID of %s: %w", f.url, err)
	}

	if chainID.Int64() != f.chainID {
		return nil, fmt.Errorf("%w: expected %d, %s reports %s", ErrChainIDMismatch, f.chainID, f.url, chainID)
	}

	f.verified = true

	return f.client, nil
}

// FeeData queries the latest header, eth_gasPrice and eth_maxPriorityFeePerGas
// concurrently. Only a failed header query fails the call; the other two are
// left nil when the endpoint does not answer them. MaxFeePerGas is derived as
// twice the base fee plus the priority fee, and stays nil on pre-London chains.
func (f *RPCFetcher) FeeData(ctx context.Context) (gasFetcher.FeeData, error) {
	client, err := f.connect(ctx)
	if err != nil {
		return gasFetcher.FeeData{}, err
	}

	var (
		header   *types.Header
		gasPrice *big.Int
		tipCap   *big.Int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h, err := client.HeaderByNumber(gctx, nil)
		if err != nil {
			return fmt.Errorf("latest header from %s: %w", f.url, err)
		}

		header = h
		return nil
	})

	g.Go(func() error {
		price, err := client.SuggestGasPrice(gctx)
		if err != nil {
			f.logger.Debug().Err(err).Msg("eth_gasPrice failed")
			return nil
		}

		gasPrice = price
		return nil
	})

	g.Go(func() error {
		tip, err := client.SuggestGasTipCap(gctx)
		if err != nil {
			f.logger.Debug().Err(err).Msg("eth_maxPriorityFeePerGas failed")
			return nil
		}

		tipCap = tip
		return nil
	})

	if err := g.Wait(); err != nil {
		return gasFetcher.FeeData{}, err
	}

	if header == nil {
		return gasFetcher.FeeData{}, ErrNoHeader
	}

	data := gasFetcher.FeeData{GasPrice: gasPrice}

	if header.BaseFee != nil {
		priorityFee := tipCap
		if priorityFee == nil {
			priorityFee = new(big.Int).Set(DefaultPriorityFee)
		}

		maxFee := new(big.Int).Mul(header.BaseFee, big.NewInt(2))
		maxFee.Add(maxFee, priorityFee)

		data.MaxFeePerGas = maxFee
		data.MaxPriorityFeePerGas = priorityFee
	}

	return data, nil
}

func (f *RPCFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client != nil {
		f.client.Close()
		f.client = nil
		f.verified = false
	}
}
