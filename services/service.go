package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

const (
	DefaultInterval        = 15 * time.Second
	DefaultEndpointTimeout = 5 * time.Second
)

const DefaultPrecision int32 = 3

var (
	ErrNoSources      = errors.New("no fee data sources provided")
	ErrNoFeeData      = errors.New("endpoint returned no fee data")
	ErrNonPositiveFee = errors.New("endpoint returned a non-positive fee")
)

type (
	Config struct {
		// Sources are tried in order on every cycle.
		Sources  []gasFetcher.Source
		Storage  []gasFetcher.Storage
		Interval time.Duration

		// EndpointTimeout bounds each source attempt; 0 selects
		// DefaultEndpointTimeout and a negative value disables it.
		EndpointTimeout time.Duration
		Unit            gasFetcher.Unit

		// Precision of the formatted value; 0 selects DefaultPrecision.
		Precision int32
		Metrics   *Metrics
		Logger    zerolog.Logger
		Now       func() time.Time
	}

	// Service polls its sources and keeps the latest quote. Cycles may
	// overlap; whichever finishes last owns the current quote.
	Service struct {
		sources         []gasFetcher.Source
		storage         []gasFetcher.Storage
		interval        time.Duration
		endpointTimeout time.Duration
		unit            gasFetcher.Unit
		precision       int32
		metrics         *Metrics
		logger          zerolog.Logger
		now             func() time.Time

		current atomic.Pointer[gasFetcher.Quote]

		mu      sync.Mutex
		running bool
		stopCh  chan struct{}
		wg      sync.WaitGroup

		subMu   sync.Mutex
		subs    map[int]chan gasFetcher.Quote
		nextSub int
	}
)

var _ gasFetcher.Service = (*Service)(nil)

func NewService(config Config) (*Service, error) {
	if len(config.Sources) == 0 {
		return nil, ErrNoSources
	}

	s := &Service{
		sources:         append([]gasFetcher.Source(nil), config.Sources...),
		storage:         append([]gasFetcher.Storage(nil), config.Storage...),
		interval:        config.Interval,
		endpointTimeout: config.EndpointTimeout,
		unit:            config.Unit,
		precision:       config.Precision,
		metrics:         config.Metrics,
		logger:          config.Logger.With().Str("component", "quote_service").Logger(),
		now:             config.Now,
		subs:            make(map[int]chan gasFetcher.Quote),
	}

	if s.interval <= 0 {
		s.interval = DefaultInterval
	}

	if s.endpointTimeout == 0 {
		s.endpointTimeout = DefaultEndpointTimeout
	}

	if s.unit == "" {
		s.unit = gasFetcher.Gwei
	}

	if s.precision <= 0 {
		s.precision = DefaultPrecision
	}

	if s.now == nil {
		s.now = time.Now
	}

	pending := gasFetcher.PendingQuote(s.unit)
	s.current.Store(&pending)

	return s, nil
}

// Start runs a cycle right away and then one per interval until Stop is
// called or ctx is done. Calling Start on a running service does nothing.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.running = true
	stopCh := make(chan struct{})
	s.stopCh = stopCh

	// in-flight cycles outlive Stop and ctx
	cycleCtx := context.WithoutCancel(ctx)

	s.wg.Add(2)
	go s.cycle(cycleCtx)
	go s.poll(ctx, cycleCtx, stopCh)

	s.logger.Info().
		Dur("interval", s.interval).
		Int("endpoints", len(s.sources)).
		Msg("started gas price polling")
}

// Stop cancels future cycles. A cycle already running still publishes its
// result.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	close(s.stopCh)
	s.stopCh = nil

	s.logger.Info().Msg("stopped gas price polling")
}

// Wait blocks until the polling loop and every in-flight cycle have returned.
// Call it after Stop or after cancelling the context passed to Start.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) poll(ctx, cycleCtx context.Context, stopCh chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.stopped(stopCh)
			return
		case <-stopCh:
			return
		case <-ticker.C:
			select {
			case <-stopCh:
				return
			case <-ctx.Done():
				s.stopped(stopCh)
				return
			default:
			}

			s.wg.Add(1)
			go s.cycle(cycleCtx)
		}
	}
}

func (s *Service) stopped(stopCh chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh == stopCh {
		s.running = false
		s.stopCh = nil
		close(stopCh)
	}
}

func (s *Service) cycle(ctx context.Context) {
	defer s.wg.Done()
	s.RunOneCycle(ctx)
}

// RunOneCycle tries every source in order and publishes a quote built from
// the first positive max fee per gas. Failing sources are skipped silently;
// only the exhaustion of all of them is reported, as a failed quote.
func (s *Service) RunOneCycle(ctx context.Context) gasFetcher.Quote {
	quote := s.fetch(ctx)

	published := quote.Clone()
	s.current.Store(&published)
	s.notify(quote)
	s.store(quote)

	return quote
}

func (s *Service) fetch(ctx context.Context) gasFetcher.Quote {
	for _, source := range s.sources {
		raw, err := s.try(ctx, source)
		if err != nil {
			s.metrics.endpointFailed(source.Endpoint())
			s.logger.Debug().
				Err(err).
				Str("endpoint", source.Endpoint()).
				Msg("endpoint failed, trying next")
			continue
		}

		quote := gasFetcher.ReadyQuote(raw, s.unit, s.precision, source.Endpoint(), s.now())
		s.metrics.cycleReady(quote)
		s.logger.Debug().
			Str("endpoint", quote.Endpoint).
			Str("max_fee_per_gas_wei", raw.String()).
			Str("display", quote.Formatted).
			Msg("fetched gas price")

		return quote
	}

	s.metrics.cycleFailed()
	s.logger.Error().
		Int("endpoints", len(s.sources)).
		Msg("gas fetch failed: no valid fee data")

	return gasFetcher.FailedQuote(s.unit, s.now())
}

func (s *Service) try(ctx context.Context, source gasFetcher.Source) (fee *big.Int, err error) {
	defer func() {
		if r := recover(); r != nil {
			fee, err = nil, fmt.Errorf("source %s panicked: %v", source.Endpoint(), r)
		}
	}()

	if s.endpointTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.endpointTimeout)
		defer cancel()
	}

	data, err := source.FeeData(ctx)
	if err != nil {
		return nil, err
	}

	if data.MaxFeePerGas == nil {
		return nil, ErrNoFeeData
	}

	if data.MaxFeePerGas.Sign() <= 0 {
		return nil, ErrNonPositiveFee
	}

	return data.MaxFeePerGas, nil
}

func (s *Service) store(quote gasFetcher.Quote) {
	for _, st := range s.storage {
		if _, err := st.Store([]gasFetcher.Quote{quote}); err != nil {
			s.logger.Error().
				Err(err).
				Str("storage", st.GetStorageProviderName()).
				Msg("failed to store quote")
		}
	}
}

// Current returns a copy of the latest published quote. Raw is cloned so
// callers cannot change what other readers see.
func (s *Service) Current() gasFetcher.Quote {
	return s.current.Load().Clone()
}

// Subscribe delivers every published quote to the returned channel until
// the cancel func is called. A subscriber that falls behind misses quotes.
func (s *Service) Subscribe(buffer int) (<-chan gasFetcher.Quote, func()) {
	if buffer < 1 {
		buffer = 1
	}

	ch := make(chan gasFetcher.Quote, buffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) notify(quote gasFetcher.Quote) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- quote:
		default:
		}
	}
}
