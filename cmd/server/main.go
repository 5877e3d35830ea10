package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/priyadarshini/finadvisor/internal/analytics"
	"github.com/priyadarshini/finadvisor/internal/config"
	"github.com/priyadarshini/finadvisor/internal/ingest"
	"github.com/priyadarshini/finadvisor/internal/logging"
	"github.com/priyadarshini/finadvisor/internal/recommend"
	"github.com/priyadarshini/finadvisor/internal/repository"
	"github.com/priyadarshini/finadvisor/internal/server"
	"github.com/priyadarshini/finadvisor/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	backends, err := buildBackends(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := backends.close(context.Background()); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	pipeline := ingest.NewPipeline(
		backends.catalog,
		buildSources(cfg.Ingest),
		logger.With("component", "ingest"),
		ingest.WithFetchTimeout(cfg.Ingest.FetchTimeout),
		ingest.WithWorkers(cfg.Ingest.Workers),
	)
	engine, err := recommend.NewEngine(backends.reader, recommend.Options{
		Weights: cfg.Scoring.Weights,
		Rules:   cfg.Scoring.Loopholes,
	}, logger.With("component", "recommend"))
	if err != nil {
		logger.Error("failed to build scoring engine", "error", err)
		os.Exit(1)
	}
	tracker := analytics.NewTracker(backends.events, cfg.Scoring.Popularity, logger.With("component", "analytics"))

	apiHandlers := server.NewAPIHandlers(logger, engine, tracker, pipeline)
	router := server.NewRouter(logger, server.RouterDependencies{
		Health:         backends.health,
		API:            apiHandlers,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// backends groups the persistence views each service needs, backed either
// by MongoDB or by the in-memory repository when no URI is configured.
type backends struct {
	catalog ingest.CatalogWriter
	reader  recommend.CatalogReader
	events  analytics.Store
	health  server.HealthService
	close   func(context.Context) error
}

func buildBackends(ctx context.Context, logger *slog.Logger, cfg config.Config) (backends, error) {
	if cfg.Store.URI == "" {
		logger.Warn("no store URI configured, using in-memory catalog")
		mem := repository.NewMemory()
		return backends{
			catalog: mem,
			reader:  mem,
			events:  mem,
			close:   func(context.Context) error { return nil },
		}, nil
	}

	st, err := store.Connect(ctx, store.Options{
		URI:         cfg.Store.URI,
		Database:    cfg.Store.Database,
		Username:    cfg.Store.Username,
		Password:    cfg.Store.Password,
		MaxPoolSize: cfg.Store.MaxPoolSize,
	})
	if err != nil {
		return backends{}, err
	}
	logger.Info("connected to store", "database", cfg.Store.Database)

	repo := repository.New(st)
	return backends{
		catalog: repo,
		reader:  repo,
		events:  repo,
		health:  server.StoreHealthService{Store: st},
		close:   st.Close,
	}, nil
}

func buildSources(cfg config.IngestConfig) []ingest.Source {
	sources := make([]ingest.Source, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		if src.Path != "" {
			sources = append(sources, ingest.NewFileSource(src.Name, src.Kind, src.Path))
			continue
		}
		sources = append(sources, ingest.NewHTTPSource(src.Name, src.Kind, src.URL))
	}
	return sources
}
