package generator

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// WriteDataset serializes the payloads into cards.json, insurance.json and
// loans.json under the provided directory, one file per source.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, "cards.json"), dataset.Cards); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "insurance.json"), dataset.Policies); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "loans.json"), dataset.Loans)
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
