package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ecoatlas/ecoatlas/internal/common"
	"github.com/ecoatlas/ecoatlas/internal/handlers"
	"github.com/ecoatlas/ecoatlas/internal/interfaces"
	"github.com/ecoatlas/ecoatlas/internal/services/llm"
	"github.com/ecoatlas/ecoatlas/internal/services/summaries"
	badgerstore "github.com/ecoatlas/ecoatlas/internal/storage/badger"
	"github.com/ecoatlas/ecoatlas/internal/storage/snapshot"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	CacheStore interfaces.CacheStore
	Generator  interfaces.Generator

	SummaryService *summaries.Service

	SummaryHandler *handlers.SummaryHandler
	StatusHandler  *handlers.StatusHandler
}

// New wires all services from configuration. The cache store backend is
// selected by storage.backend: "snapshot" (default) or "badger".
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	store, err := newCacheStore(config, logger)
	if err != nil {
		return nil, err
	}

	generator, err := llm.NewClient(config, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	summaryService := summaries.NewService(store, generator, config.LLM.Style, logger)

	a := &App{
		Config:         config,
		Logger:         logger,
		CacheStore:     store,
		Generator:      generator,
		SummaryService: summaryService,
		SummaryHandler: handlers.NewSummaryHandler(summaryService, logger),
		StatusHandler:  handlers.NewStatusHandler(config, logger),
	}

	logger.Info().
		Str("backend", config.Storage.Backend).
		Strs("models", config.LLM.Models).
		Msg("Application initialized")

	return a, nil
}

func newCacheStore(config *common.Config, logger arbor.ILogger) (interfaces.CacheStore, error) {
	switch config.Storage.Backend {
	case "badger":
		db, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		return badgerstore.NewSummaryStore(db, logger), nil
	default:
		return snapshot.NewStore(&config.Storage.Snapshot, logger), nil
	}
}

// Close releases all application resources
func (a *App) Close() {
	if a.Generator != nil {
		if err := a.Generator.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close generation client")
		}
	}
	if a.CacheStore != nil {
		if err := a.CacheStore.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close cache store")
		}
	}
}
