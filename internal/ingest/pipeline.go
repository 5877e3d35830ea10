package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/priyadarshini/finadvisor/internal/domain"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultWorkers      = 4
)

// CatalogWriter is the storage contract required by the pipeline.
type CatalogWriter interface {
	UpsertProduct(ctx context.Context, p domain.Product) error
}

// SourceError records one source that failed or timed out during a refresh.
type SourceError struct {
	Source string
	Err    error
}

// Summary reports the outcome of one catalog refresh. Per-source and
// per-record failures are collected here instead of aborting the batch.
type Summary struct {
	Updated      int
	SourceErrors []SourceError
	RecordErrors []error
}

// Pipeline keeps the catalog current from a fixed list of sources.
type Pipeline struct {
	catalog      CatalogWriter
	sources      []Source
	fetchTimeout time.Duration
	workers      int
	logger       *slog.Logger
}

// PipelineOption customizes pipeline construction.
type PipelineOption func(*Pipeline)

// WithFetchTimeout overrides the per-source fetch deadline.
func WithFetchTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

// WithWorkers overrides the upsert worker-pool size.
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewPipeline constructs an ingestion pipeline over the given sources.
func NewPipeline(catalog CatalogWriter, sources []Source, logger *slog.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		catalog:      catalog,
		sources:      sources,
		fetchTimeout: defaultFetchTimeout,
		workers:      defaultWorkers,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Refresh fans out one fetch per source in parallel, each with its own
// timeout. A failed or timed-out source contributes an empty set and one
// SourceError; it never cancels the sibling fetches. Upserting starts only
// after every source has settled, so the catalog is updated from one
// consistent batch. Refresh returns a non-nil error only when the parent
// context is cancelled.
func (p *Pipeline) Refresh(ctx context.Context) (Summary, error) {
	normalized := make([][]domain.Product, len(p.sources))
	fetchErrs := make([]error, len(p.sources))

	var wg sync.WaitGroup
	for i, src := range p.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
			defer cancel()

			payload, err := src.Fetch(fetchCtx)
			if err != nil {
				fetchErrs[i] = fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, src.Name(), err)
				return
			}
			products, err := Normalize(src.Kind(), payload)
			if err != nil {
				fetchErrs[i] = fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, src.Name(), err)
				return
			}
			normalized[i] = products
		}(i, src)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	summary := Summary{}
	var batch []domain.Product
	for i, src := range p.sources {
		if fetchErrs[i] != nil {
			p.logger.Warn("source degraded to empty set", "source", src.Name(), "error", fetchErrs[i])
			summary.SourceErrors = append(summary.SourceErrors, SourceError{Source: src.Name(), Err: fetchErrs[i]})
			continue
		}
		p.logger.Info("source fetched", "source", src.Name(), "products", len(normalized[i]))
		batch = append(batch, normalized[i]...)
	}

	updated, recordErrs, err := p.upsertBatch(ctx, batch)
	if err != nil {
		return Summary{}, err
	}
	summary.Updated = updated
	summary.RecordErrors = recordErrs

	p.logger.Info("catalog refresh complete",
		"updated", summary.Updated,
		"sourceErrors", len(summary.SourceErrors),
		"recordErrors", len(summary.RecordErrors),
	)
	return summary, nil
}

// upsertBatch writes the normalized products through a bounded worker pool.
// Each upsert is independent; a failure is collected and the rest proceed.
func (p *Pipeline) upsertBatch(ctx context.Context, batch []domain.Product) (int, []error, error) {
	if len(batch) == 0 {
		return 0, nil, nil
	}

	indexCh := make(chan int)
	errCh := make(chan error, len(batch))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := p.catalog.UpsertProduct(ctx, batch[idx]); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	workers := p.workers
	if workers > len(batch) {
		workers = len(batch)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := range batch {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var recordErrs []error
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, err
		}
		p.logger.Warn("product upsert failed", "error", err)
		recordErrs = append(recordErrs, err)
	}
	return len(batch) - len(recordErrs), recordErrs, nil
}
