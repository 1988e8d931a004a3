package fetchers

import (
	"strings"

	"github.com/rs/zerolog"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

type RPCConfig struct {
	// ChainID is verified once per endpoint when non-zero.
	ChainID int64
	Dial    Dialer
	Logger  zerolog.Logger
}

// NewSources builds one fetcher per URL, keeping the order of urls. Blank
// entries are skipped.
func NewSources(urls []string, config RPCConfig) ([]gasFetcher.Source, error) {
	sources := make([]gasFetcher.Source, 0, len(urls))

	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}

		sources = append(sources, NewRPCFetcher(config, url))
	}

	if len(sources) == 0 {
		return nil, ErrNoEndpoint
	}

	return sources, nil
}

// CloseSources releases every source that holds a connection.
func CloseSources(sources []gasFetcher.Source) {
	for _, s := range sources {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
