package api

import (
	"encoding/json"
	"net/http"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleGas handles GET /api/v1/gas
func (s *Server) handleGas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newGasResponse(s.quotes.Current()))
}

func newGasResponse(quote gasFetcher.Quote) GasResponse {
	response := GasResponse{
		DisplayValue: quote.DisplayValue(),
		Error:        quote.ErrorIndicator(),
		Status:       quote.Status,
		Endpoint:     quote.Endpoint,
		Unit:         string(quote.Unit),
	}

	if quote.Raw != nil {
		response.RawValue = quote.Raw.String()
	}

	if !quote.FetchedAt.IsZero() {
		at := quote.FetchedAt.UTC()
		response.FetchedAt = &at
	}

	return response
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
