package api

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

// Server exposes the current quote over HTTP.
type Server struct {
	logger   zerolog.Logger
	quotes   gasFetcher.QuoteReader
	gatherer prometheus.Gatherer
	router   *mux.Router
	server   *http.Server
}

// NewServer creates a new Server. A nil gatherer disables /metrics.
func NewServer(logger zerolog.Logger, port int, quotes gasFetcher.QuoteReader, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		logger:   logger.With().Str("component", "api").Logger(),
		quotes:   quotes,
		gatherer: gatherer,
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("api server is nil")
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind to address %s: %w", s.server.Addr, err)
	}

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("API server listening")

	go func() {
		err := s.server.Serve(ln)
		switch err {
		case nil:
			s.logger.Info().Msg("API server stopped normally")
		case http.ErrServerClosed:
			s.logger.Info().Msg("API server closed gracefully")
		default:
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()

	return nil
}

// Stop shuts down the HTTP server
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
