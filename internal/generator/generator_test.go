package generator

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/priyadarshini/finadvisor/internal/ingest"
)

func TestGeneratorCounts(t *testing.T) {
	gen := New(Config{NumCards: 5, NumPolicies: 3, NumLoans: 7, Seed: 1})

	dataset, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(dataset.Cards) != 5 || len(dataset.Policies) != 3 || len(dataset.Loans) != 7 {
		t.Fatalf("unexpected counts: %d cards, %d policies, %d loans",
			len(dataset.Cards), len(dataset.Policies), len(dataset.Loans))
	}
}

func TestGeneratorDeterministicForSeed(t *testing.T) {
	cfg := Config{NumCards: 10, NumPolicies: 10, NumLoans: 10, Seed: 42}

	first, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same seed must produce an identical dataset")
	}
}

func TestGeneratorHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(Config{Seed: 1}).Generate(ctx); err == nil {
		t.Fatal("expected a context error")
	}
}

func TestGeneratorOutputNormalizes(t *testing.T) {
	gen := New(Config{NumCards: 20, NumPolicies: 20, NumLoans: 20, Seed: 7})
	dataset, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	dir := t.TempDir()
	if err := WriteDataset(dataset, dir); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	for kind, filename := range map[string]string{
		ingest.KindCreditCards: "cards.json",
		ingest.KindInsurance:   "insurance.json",
		ingest.KindLoans:       "loans.json",
	} {
		payload, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			t.Fatalf("read %s: %v", filename, err)
		}
		products, err := ingest.Normalize(kind, payload)
		if err != nil {
			t.Fatalf("normalize %s: %v", kind, err)
		}
		if len(products) != 20 {
			t.Fatalf("normalize %s: expected 20 products, got %d", kind, len(products))
		}
		for _, p := range products {
			if err := p.Validate(); err != nil {
				t.Fatalf("generated %s product invalid: %v", kind, err)
			}
		}
	}
}

func TestGeneratorLoanBoundsOrdered(t *testing.T) {
	dataset, err := New(Config{NumLoans: 50, Seed: 3}).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, loan := range dataset.Loans {
		if loan.MinAmount > loan.MaxAmount {
			t.Fatalf("loan %q has inverted amount bounds", loan.Name)
		}
		if loan.MinTenure > loan.MaxTenure {
			t.Fatalf("loan %q has inverted tenure bounds", loan.Name)
		}
	}
}
