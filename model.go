package gasfetcher

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"
)

type Status uint8

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

const (
	LoadingValue   = "Loading..."
	ErrorValue     = "Error"
	FailureMessage = "Failed to fetch gas price"
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	switch strings.ToLower(str) {
	case "pending":
		*s = StatusPending
	case "ready":
		*s = StatusReady
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("value %s is not valid Status", str)
	}

	return nil
}

// Quote is the outcome of one fetch cycle. Raw is denominated in wei and is
// only set when Status is StatusReady.
type Quote struct {
	Raw       *big.Int
	Formatted string
	Unit      Unit
	Status    Status
	Error     string
	Endpoint  string
	FetchedAt time.Time
}

type QuoteWithID struct {
	Quote
	ID interface{}
}

func PendingQuote(unit Unit) Quote {
	return Quote{Unit: unit, Status: StatusPending}
}

func ReadyQuote(raw *big.Int, unit Unit, places int32, endpoint string, at time.Time) Quote {
	return Quote{
		Raw:       new(big.Int).Set(raw),
		Formatted: FormatUnits(raw, unit, places),
		Unit:      unit,
		Status:    StatusReady,
		Endpoint:  endpoint,
		FetchedAt: at,
	}
}

func FailedQuote(unit Unit, at time.Time) Quote {
	return Quote{
		Unit:      unit,
		Status:    StatusFailed,
		Error:     FailureMessage,
		FetchedAt: at,
	}
}

// Clone returns a copy of q that shares no memory with it.
func (q Quote) Clone() Quote {
	if q.Raw != nil {
		q.Raw = new(big.Int).Set(q.Raw)
	}

	return q
}

// DisplayValue is the string a consumer renders in place of the price.
func (q Quote) DisplayValue() string {
	switch q.Status {
	case StatusReady:
		return q.Formatted
	case StatusFailed:
		return ErrorValue
	default:
		return LoadingValue
	}
}

// ErrorIndicator is nil unless the quote failed.
func (q Quote) ErrorIndicator() *string {
	if q.Status != StatusFailed {
		return nil
	}

	msg := q.Error
	if msg == "" {
		msg = FailureMessage
	}

	return &msg
}
