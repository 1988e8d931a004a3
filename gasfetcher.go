package gasfetcher

import (
	"context"
	"math/big"
)

type (
	// FeeData is the fee information a single endpoint reports. Any field may be
	// nil when the endpoint does not provide it.
	FeeData struct {
		GasPrice             *big.Int
		MaxFeePerGas         *big.Int
		MaxPriorityFeePerGas *big.Int
	}

	Source interface {
		Endpoint() string
		FeeData(ctx context.Context) (FeeData, error)
	}
)
