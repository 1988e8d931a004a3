package api

import (
	"time"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

// GasResponse is the body of GET /api/v1/gas.
type GasResponse struct {
	DisplayValue string            `json:"displayValue"`
	Error        *string           `json:"error"`
	Status       gasFetcher.Status `json:"status"`
	RawValue     string            `json:"rawValue,omitempty"`
	Endpoint     string            `json:"endpoint,omitempty"`
	FetchedAt    *time.Time        `json:"fetchedAt,omitempty"`
	Unit         string            `json:"unit"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
