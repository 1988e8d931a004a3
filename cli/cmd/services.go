package cmd

import (
	"fmt"

	"github.com/rs/zerolog"

	gasFetcher "github.com/malusev998/gas-fetcher"
	"github.com/malusev998/gas-fetcher/fetchers"
	"github.com/malusev998/gas-fetcher/services"
	"github.com/malusev998/gas-fetcher/storage"
)

// app holds everything a command needs and releases it on close.
type app struct {
	settings *Settings
	logger   zerolog.Logger
	sources  []gasFetcher.Source
	storages []gasFetcher.Storage
	service  *services.Service
}

func createStorages(settings *Settings) ([]gasFetcher.Storage, error) {
	storages := make([]gasFetcher.Storage, 0, len(settings.Storage))
	for _, s := range settings.Storage {
		c, ok := settings.StorageConfig[s]
		if !ok {
			closeStorages(storages)
			return nil, fmt.Errorf("storage %s does not exist", s)
		}

		st, err := storage.NewStorage(s, c)
		if err != nil {
			closeStorages(storages)
			return nil, fmt.Errorf("error while creating %s storage: %w", s, err)
		}

		storages = append(storages, st)
	}

	return storages, nil
}

func closeStorages(storages []gasFetcher.Storage) {
	for _, st := range storages {
		_ = st.Close()
	}
}

func createService(settings *Settings, logger zerolog.Logger, metrics *services.Metrics) (*app, error) {
	sources, err := fetchers.NewSources(settings.Endpoints, fetchers.RPCConfig{
		ChainID: settings.ChainID,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	storages, err := createStorages(settings)
	if err != nil {
		fetchers.CloseSources(sources)
		return nil, err
	}

	service, err := services.NewService(services.Config{
		Sources:         sources,
		Storage:         storages,
		Interval:        settings.Interval,
		EndpointTimeout: settings.EndpointTimeout,
		Unit:            settings.Unit,
		Precision:       settings.Precision,
		Metrics:         metrics,
		Logger:          logger,
	})
	if err != nil {
		fetchers.CloseSources(sources)
		closeStorages(storages)
		return nil, err
	}

	return &app{
		settings: settings,
		logger:   logger,
		sources:  sources,
		storages: storages,
		service:  service,
	}, nil
}

func (a *app) close() {
	a.service.Stop()
	a.service.Wait()

	fetchers.CloseSources(a.sources)
	for _, st := range a.storages {
		if err := st.Close(); err != nil {
			a.logger.Warn().Err(err).Str("storage", st.GetStorageProviderName()).Msg("error while closing storage")
		}
	}
}
