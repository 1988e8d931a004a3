package gasfetcher

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	Wei   Unit = "wei"
	Gwei  Unit = "gwei"
	Ether Unit = "ether"
)

func (u Unit) Decimals() int32 {
	switch u {
	case Gwei:
		return 9
	case Ether:
		return 18
	default:
		return 0
	}
}

func ConvertToUnitFromString(str string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "wei":
		return Wei, nil
	case "gwei":
		return Gwei, nil
	case "ether", "eth":
		return Ether, nil
	}

	return "", fmt.Errorf("value %s is not valid Unit", str)
}

// FormatUnits scales raw (in wei) down to unit and renders it with exactly
// places fractional digits. Halves round away from zero.
func FormatUnits(raw *big.Int, unit Unit, places int32) string {
	if raw == nil {
		raw = new(big.Int)
	}

	return decimal.NewFromBigInt(raw, -unit.Decimals()).StringFixed(places)
}
