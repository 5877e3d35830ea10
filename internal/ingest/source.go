package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Source kinds. Each kind has its own payload schema and normalizer.
const (
	KindCreditCards = "credit_cards"
	KindInsurance   = "insurance"
	KindLoans       = "loans"
)

// Source is one external catalog endpoint. Fetch returns the raw payload
// bytes; decoding and normalization happen per kind afterwards.
type Source interface {
	Name() string
	Kind() string
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPSource pulls a JSON payload from a remote endpoint.
type HTTPSource struct {
	name   string
	kind   string
	url    string
	client *http.Client
}

// NewHTTPSource builds an HTTP-backed source. The per-fetch deadline comes
// from the context supplied to Fetch, so the client carries no timeout of
// its own.
func NewHTTPSource(name, kind, url string) *HTTPSource {
	return &HTTPSource{
		name:   name,
		kind:   kind,
		url:    url,
		client: &http.Client{},
	}
}

func (s *HTTPSource) Name() string { return s.name }
func (s *HTTPSource) Kind() string { return s.kind }

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", s.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", s.name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", s.name, err)
	}
	return body, nil
}

// FileSource reads a payload from a local JSON file. Used for seed data
// produced by cmd/datagen and in tests.
type FileSource struct {
	name string
	kind string
	path string
}

// NewFileSource builds a file-backed source.
func NewFileSource(name, kind, path string) *FileSource {
	return &FileSource{name: name, kind: kind, path: path}
}

func (s *FileSource) Name() string { return s.name }
func (s *FileSource) Kind() string { return s.kind }

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.name, err)
	}
	return data, nil
}
