// Package app wires configuration, dataset loading and the REST controller
// into a runnable service.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/fireline/fireline/internal/controllers/restserver"
	"github.com/fireline/fireline/internal/dataset"
	"github.com/fireline/fireline/internal/geo"
	"github.com/fireline/fireline/internal/log"
	"github.com/fireline/fireline/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	cfg.ApplyDefaults()

	store, err := dataset.Load(cfg.Dataset)
	if err != nil {
		return fmt.Errorf("error loading dataset: %w", err)
	}
	minYear, maxYear := store.YearSpan()
	log.Infof("dataset loaded: %d records spanning %d-%d", store.Len(), minYear, maxYear)

	// The boundary and population references are optional. Without them the
	// geographic endpoint still serves borough aggregates, just without area
	// or density figures.
	var boroughs []geo.Borough
	if cfg.Geo.BoundariesPath != "" {
		boroughs, err = geo.LoadBoundaries(cfg.Geo.BoundariesPath)
		if err != nil {
			return fmt.Errorf("error loading borough boundaries: %w", err)
		}
		log.Infof("loaded %d borough boundaries", len(boroughs))
	} else {
		log.Info("geo.boundaries_path not provided; area statistics disabled")
	}

	var population map[string]int
	if cfg.Geo.PopulationPath != "" {
		population, err = geo.LoadPopulation(cfg.Geo.PopulationPath)
		if err != nil {
			return fmt.Errorf("error loading population reference: %w", err)
		}
	}

	ctrl, err := restserver.NewController(ctx, &wg, cfg, store, boroughs, population, a.logger)
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
