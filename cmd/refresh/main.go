package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/priyadarshini/finadvisor/internal/config"
	"github.com/priyadarshini/finadvisor/internal/ingest"
	"github.com/priyadarshini/finadvisor/internal/logging"
	"github.com/priyadarshini/finadvisor/internal/repository"
	"github.com/priyadarshini/finadvisor/internal/store"
)

func main() {
	var (
		workers = flag.Int("workers", 0, "upsert worker-pool size (0 uses the configured value)")
		timeout = flag.Duration("timeout", 5*time.Minute, "overall refresh deadline")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "refresh")

	if len(cfg.Ingest.Sources) == 0 {
		logger.Error("no ingest sources configured")
		os.Exit(1)
	}
	if cfg.Store.URI == "" {
		logger.Error("a store URI is required for a catalog refresh")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	st, err := store.Connect(ctx, store.Options{
		URI:         cfg.Store.URI,
		Database:    cfg.Store.Database,
		Username:    cfg.Store.Username,
		Password:    cfg.Store.Password,
		MaxPoolSize: cfg.Store.MaxPoolSize,
	})
	if err != nil {
		logger.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	sources := make([]ingest.Source, 0, len(cfg.Ingest.Sources))
	for _, src := range cfg.Ingest.Sources {
		if src.Path != "" {
			sources = append(sources, ingest.NewFileSource(src.Name, src.Kind, src.Path))
		} else {
			sources = append(sources, ingest.NewHTTPSource(src.Name, src.Kind, src.URL))
		}
	}

	poolSize := cfg.Ingest.Workers
	if *workers > 0 {
		poolSize = *workers
	}
	pipeline := ingest.NewPipeline(repository.New(st), sources, logger,
		ingest.WithFetchTimeout(cfg.Ingest.FetchTimeout),
		ingest.WithWorkers(poolSize),
	)

	start := time.Now()
	summary, err := pipeline.Refresh(ctx)
	if err != nil {
		logger.Error("refresh aborted", "error", err)
		os.Exit(1)
	}

	for _, se := range summary.SourceErrors {
		logger.Warn("source failed", "source", se.Source, "error", se.Err)
	}
	logger.Info("refresh finished",
		"duration", time.Since(start).String(),
		"updated", summary.Updated,
		"sourceErrors", len(summary.SourceErrors),
		"recordErrors", len(summary.RecordErrors),
	)
	if summary.Updated == 0 && len(summary.SourceErrors) == len(sources) {
		os.Exit(1)
	}
}
