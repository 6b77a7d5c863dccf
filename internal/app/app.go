// Package app wires configuration into the dashboard components and runs the server.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/climatewatch/internal/controllers/restserver"
	"github.com/chrissnell/climatewatch/internal/dashboard"
	"github.com/chrissnell/climatewatch/internal/log"
	"github.com/chrissnell/climatewatch/internal/memo"
	"github.com/chrissnell/climatewatch/internal/retrieval"
	"github.com/chrissnell/climatewatch/internal/rooms"
	"github.com/chrissnell/climatewatch/internal/snapshot"
	"github.com/chrissnell/climatewatch/internal/upstream"
	"github.com/chrissnell/climatewatch/pkg/config"
	"go.uber.org/zap"
)

// Components are the long-lived objects shared by the server and the CLI
type Components struct {
	Upstream  upstream.Store
	Snapshots *snapshot.Store
	Retriever *retrieval.Retriever
	Memo      *memo.Cache[*dashboard.Result]
	Service   *dashboard.Service
}

// Close releases the upstream connection and the memo cache
func (c *Components) Close() error {
	c.Memo.Close()
	return c.Upstream.Close()
}

// Build connects to the upstream database and assembles the dashboard service
func Build(ctx context.Context, cfg *config.ConfigData, logger *zap.SugaredLogger) (*Components, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.MemoTTL()
	if err != nil {
		return nil, err
	}
	tables, err := roomTables(cfg)
	if err != nil {
		return nil, err
	}

	store, err := upstream.New(ctx, cfg.Upstream, logger)
	if err != nil {
		return nil, fmt.Errorf("error connecting to upstream: %w", err)
	}

	cache, err := memo.New(memo.Options[*dashboard.Result]{
		TTL:     ttl,
		MaxCost: cfg.Cache.MemoMaxMiB << 20,
		Cost:    dashboard.ResultCost,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	snapshots := snapshot.New(cfg.Cache.Root)
	r := retrieval.New(store, snapshots, logger, retrieval.WithLocation(loc))

	return &Components{
		Upstream:  store,
		Snapshots: snapshots,
		Retriever: r,
		Memo:      cache,
		Service:   dashboard.NewService(r, cache, tables, logger),
	}, nil
}

// roomTables resolves the configured room -> table overrides
func roomTables(cfg *config.ConfigData) (map[rooms.Room]string, error) {
	tables := make(map[rooms.Room]string)
	for name, t := range cfg.RoomTables() {
		room, err := rooms.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("invalid room in configuration: %w", err)
		}
		if err := upstream.ValidateTableName(t); err != nil {
			return nil, fmt.Errorf("room %s: %w", room, err)
		}
		tables[room] = t
	}
	return tables, nil
}

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	components, err := Build(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer components.Close()

	rest, err := restserver.NewController(ctx, &wg, components.Service, components.Upstream, a.cfg.RESTServer, a.logger)
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
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

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
