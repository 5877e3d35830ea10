package config

import (
	"strings"
	"testing"
)

func TestEnvTransform(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"FINADVISOR_HTTP__PORT", "http.port"},
		{"FINADVISOR_INGEST__FETCH_TIMEOUT", "ingest.fetch_timeout"},
		{"FINADVISOR_STORE__MAX_POOL_SIZE", "store.max_pool_size"},
		{"FINADVISOR_LOGGING__LEVEL", "logging.level"},
	}
	for _, tc := range cases {
		if got := envTransform(tc.in); got != tc.want {
			t.Errorf("envTransform(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("defaults must validate, got %v", err)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	t.Setenv("FINADVISOR_HTTP__PORT", "9090")
	t.Setenv("FINADVISOR_LOGGING__LEVEL", "debug")

	// CONFIG_PATH points at a missing file on purpose; findConfigFile only
	// returns it verbatim, so loading must fail loudly instead of silently
	// skipping user intent.
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unreadable CONFIG_PATH")
	}

	t.Setenv("CONFIG_PATH", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Fatalf("env port override not applied, got %d", cfg.HTTP.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("env level override not applied, got %q", cfg.Logging.Level)
	}
	if cfg.Store.Database != "finadvisor" {
		t.Fatalf("defaults lost under env layering, got %q", cfg.Store.Database)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := defaultConfig()
	cfg.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for port 0")
	}

	cfg = defaultConfig()
	cfg.Scoring.Weights.Cost = 0.9
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for weights not summing to one")
	}

	cfg = defaultConfig()
	cfg.Ingest.Sources = []SourceConfig{{Name: "both", Kind: "loans", URL: "http://x", Path: "/tmp/x"}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected an error for a source with both url and path")
	}
	if !strings.Contains(err.Error(), "both") {
		t.Fatalf("error should name the source, got %v", err)
	}

	cfg.Ingest.Sources = []SourceConfig{{Name: "neither", Kind: "loans"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a source with neither url nor path")
	}
}
