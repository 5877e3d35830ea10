package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/priyadarshini/finadvisor/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		cards       = flag.Int("cards", cfg.NumCards, "number of credit cards to generate")
		policies    = flag.Int("policies", cfg.NumPolicies, "number of insurance policies to generate")
		loans       = flag.Int("loans", cfg.NumLoans, "number of personal loans to generate")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir   = flag.String("output-dir", "seed-data", "directory to write cards.json, insurance.json and loans.json")
		writeStdout = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	gen := generator.New(generator.Config{
		NumCards:    *cards,
		NumPolicies: *policies,
		NumLoans:    *loans,
		Seed:        *seed,
	})
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d cards, %d policies and %d loans to %s\n",
		len(dataset.Cards), len(dataset.Policies), len(dataset.Loans), *outputDir)
}
