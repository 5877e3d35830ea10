package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/priyadarshini/finadvisor/internal/domain"
	"github.com/priyadarshini/finadvisor/internal/repository"
)

// stubSource serves a fixed payload, a fixed error, or blocks until the
// fetch context expires.
type stubSource struct {
	name    string
	kind    string
	payload []byte
	err     error
	block   bool
}

func (s *stubSource) Name() string { return s.name }
func (s *stubSource) Kind() string { return s.kind }

func (s *stubSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func loanSource(name string, loans ...string) *stubSource {
	payload := "["
	for i, l := range loans {
		if i > 0 {
			payload += ","
		}
		payload += fmt.Sprintf(`{"name":%q,"lender":"Meridian Bank","interestRate":11,"minAmount":10000,"maxAmount":500000,"minTenure":12,"maxTenure":60}`, l)
	}
	payload += "]"
	return &stubSource{name: name, kind: KindLoans, payload: []byte(payload)}
}

func TestPipeline_RefreshSurvivesFailedSource(t *testing.T) {
	mem := repository.NewMemory()
	sources := []Source{
		loanSource("bank-a", "Loan A1", "Loan A2"),
		&stubSource{name: "bank-b", kind: KindLoans, err: errors.New("connection refused")},
		loanSource("bank-c", "Loan C1"),
	}
	pipeline := NewPipeline(mem, sources, discardLogger())

	summary, err := pipeline.Refresh(context.Background())
	if err != nil {
		t.Fatalf("a failed source must not abort the refresh, got %v", err)
	}
	if summary.Updated != 3 {
		t.Fatalf("expected products from the healthy sources, got %d updated", summary.Updated)
	}
	if len(summary.SourceErrors) != 1 {
		t.Fatalf("expected exactly one source error, got %d", len(summary.SourceErrors))
	}
	se := summary.SourceErrors[0]
	if se.Source != "bank-b" {
		t.Fatalf("unexpected failed source %q", se.Source)
	}
	if !errors.Is(se.Err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", se.Err)
	}
	if got := mem.ProductCount(); got != 3 {
		t.Fatalf("expected 3 catalog entries, got %d", got)
	}
}

func TestPipeline_RefreshTimesOutSlowSource(t *testing.T) {
	mem := repository.NewMemory()
	sources := []Source{
		loanSource("bank-a", "Loan A1"),
		&stubSource{name: "slow-bank", kind: KindLoans, block: true},
	}
	pipeline := NewPipeline(mem, sources, discardLogger(), WithFetchTimeout(20*time.Millisecond))

	start := time.Now()
	summary, err := pipeline.Refresh(context.Background())
	if err != nil {
		t.Fatalf("a slow source must not abort the refresh, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("refresh blocked far past the fetch timeout: %v", elapsed)
	}
	if summary.Updated != 1 {
		t.Fatalf("expected the healthy source to land, got %d updated", summary.Updated)
	}
	if len(summary.SourceErrors) != 1 || summary.SourceErrors[0].Source != "slow-bank" {
		t.Fatalf("expected slow-bank to be reported, got %+v", summary.SourceErrors)
	}
}

func TestPipeline_RefreshIdempotent(t *testing.T) {
	mem := repository.NewMemory()
	pipeline := NewPipeline(mem, []Source{loanSource("bank-a", "Loan A1", "Loan A2")}, discardLogger())

	for i := 0; i < 2; i++ {
		if _, err := pipeline.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh %d: %v", i+1, err)
		}
	}
	if got := mem.ProductCount(); got != 2 {
		t.Fatalf("repeated refreshes must not duplicate products, got %d", got)
	}
}

func TestPipeline_RefreshCollectsRecordErrors(t *testing.T) {
	mem := repository.NewMemory().WithUpsertError(errors.New("write conflict"))
	pipeline := NewPipeline(mem, []Source{loanSource("bank-a", "Loan A1", "Loan A2")}, discardLogger(), WithWorkers(1))

	summary, err := pipeline.Refresh(context.Background())
	if err != nil {
		t.Fatalf("record failures must not abort the refresh, got %v", err)
	}
	if summary.Updated != 0 {
		t.Fatalf("expected no successful upserts, got %d", summary.Updated)
	}
	if len(summary.RecordErrors) != 2 {
		t.Fatalf("expected both record failures collected, got %d", len(summary.RecordErrors))
	}
	for _, recErr := range summary.RecordErrors {
		if !errors.Is(recErr, domain.ErrUpsertFailed) {
			t.Fatalf("expected ErrUpsertFailed, got %v", recErr)
		}
	}
}

func TestPipeline_RefreshHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipeline := NewPipeline(repository.NewMemory(), []Source{loanSource("bank-a", "Loan A1")}, discardLogger())
	if _, err := pipeline.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPipeline_RefreshAllSourcesFailed(t *testing.T) {
	mem := repository.NewMemory()
	sources := []Source{
		&stubSource{name: "bank-a", kind: KindLoans, err: errors.New("down")},
		&stubSource{name: "bank-b", kind: KindLoans, payload: []byte(`not json`)},
	}
	pipeline := NewPipeline(mem, sources, discardLogger())

	summary, err := pipeline.Refresh(context.Background())
	if err != nil {
		t.Fatalf("expected a degraded summary, got %v", err)
	}
	if summary.Updated != 0 || len(summary.SourceErrors) != 2 {
		t.Fatalf("expected 0 updates and 2 source errors, got %+v", summary)
	}
	if got := mem.ProductCount(); got != 0 {
		t.Fatalf("expected an untouched catalog, got %d entries", got)
	}
}
