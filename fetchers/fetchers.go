package fetchers

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	AnkrBaseURL     = "https://rpc.ankr.com/base"
	BaseMainnetURL  = "https://mainnet.base.org"
	BlastAPIBaseURL = "https://base-mainnet.public.blastapi.io"

	BaseMainnetChainID int64 = 8453
)

var (
	// DefaultPriorityFee is assumed when an endpoint does not answer
	// eth_maxPriorityFeePerGas. 1 gwei.
	DefaultPriorityFee = big.NewInt(1_000_000_000)

	ErrNoEndpoint      = errors.New("no RPC endpoint provided")
	ErrChainIDMismatch = errors.New("chain ID mismatch")
	ErrNoHeader        = errors.New("latest block header not returned")
)

type (
	// RPCClient is the subset of *ethclient.Client the fetchers use.
	RPCClient interface {
		ChainID(ctx context.Context) (*big.Int, error)
		HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
		SuggestGasPrice(ctx context.Context) (*big.Int, error)
		SuggestGasTipCap(ctx context.Context) (*big.Int, error)
		Close()
	}

	Dialer func(ctx context.Context, url string) (RPCClient, error)
)

// DefaultEndpoints returns the Base mainnet endpoints in priority order.
func DefaultEndpoints() []string {
	return []string{AnkrBaseURL, BaseMainnetURL, BlastAPIBaseURL}
}

func DialEthClient(ctx context.Context, url string) (RPCClient, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}

	return client, nil
}
